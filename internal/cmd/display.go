package cmd

import (
	"fmt"

	"github.com/hoppxi/brux/internal/manager"
	"github.com/hoppxi/brux/pkg/displayinfo"
	"github.com/hoppxi/brux/pkg/operation"
	"github.com/spf13/cobra"
)

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show the backlight, or set it once by hand",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := manager.Config.Load(manager.Manage.ConfigFile); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		device := manager.Config.Settings().Device
		if d, _ := cmd.Flags().GetString("device"); d != "" {
			device = d
		}

		if brightness, _ := cmd.Flags().GetString("brightness"); brightness != "" {
			if err := operation.Display.SetBrightness(brightness); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
		}

		data, err := displayinfo.GetDisplayInfoJSON(device)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println(string(data))
	},
}

func init() {
	displayCmd.Flags().String("brightness", "", "Set brightness once (brightnessctl syntax, e.g. 40% or +5%)")
	displayCmd.Flags().String("device", "", "Backlight device name (default from config, else first found)")
}
