package cmd

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hoppxi/brux/config"
	"github.com/hoppxi/brux/internal/manager"
	"github.com/hoppxi/brux/pkg/displayinfo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config mirrors brux.yaml.
type Config struct {
	Schedule struct {
		File string `yaml:"file"`
	} `yaml:"schedule"`
	Display struct {
		Device   string `yaml:"device"`
		Method   string `yaml:"method"`
		Transfer string `yaml:"transfer"`
	} `yaml:"display"`
	Surface struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"surface"`
	Render struct {
		Output string `yaml:"output"`
		Eww    bool   `yaml:"eww"`
	} `yaml:"render"`
	Notify struct {
		Errors bool `yaml:"errors"`
	} `yaml:"notify"`
	Timezone string `yaml:"timezone"`
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Full initialization (Config + widget)",
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)
		bruxDir := getBruxDir()

		if _, err := os.Stat(bruxDir); !os.IsNotExist(err) {
			fmt.Printf("Warning: brux config already exists at %s\n", bruxDir)
			if !confirm(reader, "Continuing will overwrite your current configs Proceed?") {
				return
			}
		}

		os.MkdirAll(bruxDir, 0755)
		if err := generateBruxYaml(reader, bruxDir); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("\nExtracting widget...")
		if err := extractEmbed(filepath.Join(bruxDir, "eww")); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Println("\nFull setup complete!")
		fmt.Printf("Add (include \"%s\") to your eww.yuck to get the editor window.\n",
			filepath.Join(bruxDir, "eww", "brux.yuck"))
	},
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Only generate/update the brux.yaml file",
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)
		bruxDir := getBruxDir()

		yamlPath := filepath.Join(bruxDir, "brux.yaml")
		if _, err := os.Stat(yamlPath); !os.IsNotExist(err) {
			if !confirm(reader, "brux.yaml already exists. Overwrite with new settings?") {
				return
			}
		}

		os.MkdirAll(bruxDir, 0755)
		if err := generateBruxYaml(reader, bruxDir); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("Config file updated.")
	},
}

func defaultDevice() string {
	if b, err := displayinfo.Find(displayinfo.SysfsRoot, ""); err == nil {
		return b.Name
	}
	return ""
}

func generateBruxYaml(reader *bufio.Reader, targetDir string) error {
	home, _ := os.UserHomeDir()

	conf := Config{}
	conf.Schedule.File = prompt(reader, "Schedule file", filepath.Join(home, ".brux"))
	conf.Display.Device = prompt(reader, "Backlight device", defaultDevice())
	conf.Display.Method = prompt(reader, "Write method (auto, logind, brightnessctl, sysfs)", "auto")
	conf.Display.Transfer = prompt(reader, "Transfer expression over value, min, max (empty for linear)", "")
	conf.Surface.Width = promptInt(reader, "Editor width (px)", manager.DefaultWidth)
	conf.Surface.Height = promptInt(reader, "Editor height (px)", manager.DefaultHeight)
	conf.Render.Output = prompt(reader, "Schedule image path", filepath.Join(os.TempDir(), "brux-schedule.png"))
	conf.Render.Eww = promptBool(reader, "Drive the eww widget", true)
	conf.Notify.Errors = promptBool(reader, "Desktop notification on errors", false)
	conf.Timezone = prompt(reader, "Timezone", "Local")

	d, err := yaml.Marshal(&conf)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(targetDir, "brux.yaml"), d, 0644)
}

func prompt(r *bufio.Reader, label, defaultValue string) string {
	fmt.Printf("%s [%s]: ", label, defaultValue)
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

func promptInt(r *bufio.Reader, label string, defaultValue int) int {
	for {
		s := prompt(r, label, strconv.Itoa(defaultValue))
		n, err := strconv.Atoi(s)
		if err == nil && n > 0 {
			return n
		}
		fmt.Println("Please enter a positive whole number.")
	}
}

func promptBool(r *bufio.Reader, label string, defaultValue bool) bool {
	def := "y/N"
	if defaultValue {
		def = "Y/n"
	}
	s := strings.ToLower(prompt(r, label, def))
	switch s {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return defaultValue
}

func confirm(r *bufio.Reader, message string) bool {
	fmt.Printf("%s (y/N): ", message)
	input, _ := r.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

func extractEmbed(targetDir string) error {
	embeds := config.ConfigFS()
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return err
	}
	return fs.WalkDir(embeds, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == "." {
			return err
		}

		targetPath := filepath.Join(targetDir, path)
		if d.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}

		content, err := embeds.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(targetPath, content, 0644)
	})
}
