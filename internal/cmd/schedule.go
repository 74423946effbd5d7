package cmd

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/hoppxi/brux/internal/schedule"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect and edit the brightness schedule",
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List control points",
	Run: func(cmd *cobra.Command, args []string) {
		points, err := schedule.Decode([]byte(send("LIST")))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, _ := schedule.Encode(points)
			fmt.Println(string(data))
			return
		}
		if len(points) == 0 {
			fmt.Printf("No control points, brightness stays at %.0f%%\n", schedule.DefaultValue)
			return
		}
		for _, p := range points {
			fmt.Printf("%s  %5.1f%%\n", clock(p.Hour), p.Value)
		}
	},
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add <hour> <value>",
	Short: "Add a control point",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		h, v := parseArgs(args)
		fmt.Println(send(fmt.Sprintf("ADD %s %s", h, v)))
	},
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <hour> <value>",
	Short: "Remove control points near (hour, value)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		h, v := parseArgs(args)
		fmt.Println(send(fmt.Sprintf("REMOVE %s %s", h, v)))
	},
}

var scheduleAtCmd = &cobra.Command{
	Use:   "at <hour>",
	Short: "Show the scheduled brightness at an hour",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		h := mustFloat(args[0])
		fmt.Printf("%s  %s%%\n", clock(schedule.NormalizeHour(h)), send("AT "+args[0]))
	},
}

var scheduleClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every control point",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(send("CLEAR"))
	},
}

var scheduleImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the schedule with one read from a file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			var err error
			path, err = zenity.SelectFile(
				zenity.Title("Import brightness schedule"),
				zenity.FileFilters{
					{Name: "Schedules", Patterns: []string{"*.json", ".brux"}},
				},
			)
			if err != nil {
				fmt.Printf("No file selected: %v\n", err)
				return
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		points, err := schedule.Decode(data)
		if err != nil {
			fmt.Printf("Error: %s is not a schedule: %v\n", path, err)
			os.Exit(1)
		}
		compact, _ := schedule.Encode(points)
		fmt.Println(send("LOAD " + string(compact)))
	},
}

var scheduleExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the schedule to a file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			var err error
			path, err = zenity.SelectFileSave(
				zenity.Title("Export brightness schedule"),
				zenity.Filename("schedule.json"),
				zenity.ConfirmOverwrite(),
			)
			if err != nil {
				fmt.Printf("No file selected: %v\n", err)
				return
			}
		}

		points, err := schedule.Decode([]byte(send("LIST")))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := schedule.NewStore(path).Save(points); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d points to %s\n", len(points), path)
	},
}

func parseArgs(args []string) (string, string) {
	mustFloat(args[0])
	mustFloat(args[1])
	return args[0], args[1]
}

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		fmt.Printf("Error: %q is not a number\n", s)
		os.Exit(1)
	}
	return f
}

// clock formats a fractional hour as HH:MM.
func clock(hour float64) string {
	minutes := int(math.Round(hour * 60))
	return fmt.Sprintf("%02d:%02d", (minutes/60)%schedule.HoursPerDay, minutes%60)
}

func init() {
	scheduleListCmd.Flags().Bool("json", false, "Print the raw [[hour, value], ...] list")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleAtCmd)
	scheduleCmd.AddCommand(scheduleClearCmd)
	scheduleCmd.AddCommand(scheduleImportCmd)
	scheduleCmd.AddCommand(scheduleExportCmd)
}
