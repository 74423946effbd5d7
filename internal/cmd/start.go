package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoppxi/brux/internal/manager"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the brightness daemon and the schedule widget",
	Run: func(cmd *cobra.Command, args []string) {
		if conn, err := manager.Manage.ConnectIPC(); err == nil {
			defer conn.Close()
			fmt.Println("Daemon already running. Sending start command...")
			if _, err := manager.Manage.SendIPCCommand("START"); err != nil {
				fmt.Printf("Failed to send start command: %v\n", err)
			}
			return
		}

		debug, _ := cmd.Flags().GetBool("debug")
		logger, err := newLogger(debug)
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			return
		}
		manager.Manage.Logger = logger

		fmt.Println("Starting daemon...")

		if withEww, _ := cmd.Flags().GetBool("eww"); withEww {
			ewwCmd, ewwCancel := manager.NewCmd("eww", "daemon", "--no-daemonize")
			if manager.Manage.StartTrackedCmd(ewwCmd, ewwCancel) == nil {
				fmt.Println("Failed to start eww daemon")
				return
			}
		}

		go func() {
			if err := manager.Manage.StartIPCServer(); err != nil {
				logger.Fatal("ipc server failed", zap.Error(err))
			}
		}()

		time.Sleep(100 * time.Millisecond)

		response, err := manager.Manage.SendIPCCommand("START")
		if err != nil {
			fmt.Printf("Failed to initialize daemon: %v\n", err)
			manager.Manage.StopAll()
			return
		}
		fmt.Printf("Server response: %s\n", response)

		fmt.Println("Daemon started successfully. Press Ctrl+C to stop.")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\nReceived shutdown signal, stopping all processes and watchers...")
		manager.Manage.StopAll()
	},
}

func init() {
	startCmd.Flags().Bool("debug", false, "Verbose development logging")
	startCmd.Flags().Bool("eww", true, "Also run an eww daemon")
}
