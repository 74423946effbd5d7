package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The widget forwards its onclick/onrightclick coordinates through these.
var pointerCmd = &cobra.Command{
	Use:       "pointer <primary|secondary> <x> <y>",
	Short:     "Send a click on the schedule image",
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"primary", "secondary"},
	Run: func(cmd *cobra.Command, args []string) {
		x, y := parseArgs(args[1:])
		fmt.Println(send(fmt.Sprintf("CLICK %s %s %s", args[0], x, y)))
	},
}

var resizeCmd = &cobra.Command{
	Use:   "resize <width> <height>",
	Short: "Tell the daemon the schedule image size in pixels",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		w, h := parseArgs(args)
		fmt.Println(send(fmt.Sprintf("RESIZE %s %s", w, h)))
	},
}
