package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoppxi/brux/internal/manager"
	"github.com/spf13/cobra"
)

var Version = "0.1.0"

// commands that work without a running daemon
var offline = []string{"setup", "generate-config", "start", "help", "display", "completion"}

var rootCmd = &cobra.Command{
	Use:     "brux",
	Version: Version,
	Short:   "brux drives your backlight from a 24-hour brightness curve",
	Long:    "brux keeps the display brightness on a user-drawn daily curve and serves the curve editor to an EWW widget",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configFile != "" {
			manager.Manage.ConfigFile = configFile
		}

		for _, name := range offline {
			if cmd.Name() == name {
				return
			}
		}

		conn, err := manager.Manage.ConnectIPC()
		if err != nil {
			fmt.Println("Error:", err)
			fmt.Println("Hint: run `brux start` first")
			os.Exit(1)
		}
		conn.Close()
	},
}

var configFile string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getBruxDir() string {
	if configFile != "" {
		return filepath.Dir(configFile)
	}
	return manager.ConfigDir()
}

// send forwards one IPC command and prints the reply, exiting non-zero on ERR.
func send(command string) string {
	response, err := manager.Manage.SendIPCCommand(command)
	if err != nil {
		fmt.Printf("Error: %v (Is the daemon running?)\n", err)
		os.Exit(1)
	}
	if strings.HasPrefix(response, "ERR:") {
		fmt.Println(response)
		os.Exit(1)
	}
	return strings.TrimSpace(strings.TrimPrefix(response, "OK:"))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/brux/brux.yaml)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(pointerCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(displayCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
}
