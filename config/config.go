package config

import (
	"embed"
)

//go:embed brux.yuck brux.scss
var embeddedFiles embed.FS

// ConfigFS holds the eww widget that shows the schedule editor.
func ConfigFS() embed.FS {
	return embeddedFiles
}
