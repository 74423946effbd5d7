package watchers

import (
	"fmt"
	"os/exec"

	"github.com/goccy/go-json"
)

// ewwUpdate runs a command; tests replace it.
var ewwUpdate = func(args ...string) error {
	return exec.Command("eww", args...).Run()
}

func updateEww(module string, data any) {
	jsonData, _ := json.Marshal(data)
	_ = ewwUpdate("update", module+"="+string(jsonData))
}

func updateEwwNoJson(module string, data any) {
	_ = ewwUpdate("update", fmt.Sprintf("%s=%v", module, data))
}
