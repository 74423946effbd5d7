package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/hoppxi/brux/internal/manager"
	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Restart the daemon with a fresh config and schedule",
	Run: func(cmd *cobra.Command, args []string) {
		response, err := manager.Manage.SendIPCCommand("STOP")
		if err != nil {
			fmt.Printf("Error: %v (Is the daemon running?)\n", err)
			return
		}

		fmt.Printf("Server response: %s\n", response)
		if !strings.Contains(response, "OK") {
			return
		}

		// wait for the old daemon to let go of the socket
		for i := 0; i < 20; i++ {
			conn, err := manager.Manage.ConnectIPC()
			if err != nil {
				break
			}
			conn.Close()
			time.Sleep(100 * time.Millisecond)
		}

		startCmd.Run(cmd, args) // restart in-place
	},
}

func init() {
	reloadCmd.Flags().Bool("debug", false, "Verbose development logging")
	reloadCmd.Flags().Bool("eww", true, "Also run an eww daemon")
}
