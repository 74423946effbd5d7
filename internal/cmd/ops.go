package cmd

import (
	"os/exec"

	"github.com/spf13/cobra"
)

const editorWidget = "brux"

func widgetArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return editorWidget
}

var openCmd = &cobra.Command{
	Use:   "open [widget]",
	Short: "Open the schedule editor widget",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exec.Command("eww", "open", widgetArg(args)).Run()
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [widget]",
	Short: "Toggle the schedule editor widget",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exec.Command("eww", "open", "--toggle", widgetArg(args)).Run()
	},
}

var closeCmd = &cobra.Command{
	Use:   "close [widget]",
	Short: "Close the schedule editor widget",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exec.Command("eww", "close", widgetArg(args)).Run()
	},
}
