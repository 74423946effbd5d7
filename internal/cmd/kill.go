package cmd

import (
	"fmt"
	"strings"

	"github.com/hoppxi/brux/internal/manager"
	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Kill daemon and stop watchers.",
	Run: func(cmd *cobra.Command, args []string) {
		response, err := manager.Manage.SendIPCCommand("STOP")
		if err != nil {
			fmt.Printf("Error: %v (Is the daemon running?)\n", err)
			return
		}

		fmt.Printf("Server response: %s\n", response)

		if strings.Contains(response, "OK") {
			fmt.Println("brux daemon successfully shut down.")
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is running",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(send("STATUS"))
	},
}
