package watchers

import (
	"time"

	"github.com/hoppxi/brux/internal/subscribe"
	"github.com/hoppxi/brux/pkg/displayinfo"
)

const displayInfoVar = "DISPLAY_INFO"

// publishDisplayInfo pushes the current backlight state. It reports false,
// leaving the widget untouched, when the device cannot be read.
func publishDisplayInfo(device string) bool {
	info, err := displayinfo.GetDisplayInfo(device)
	if err != nil {
		return false
	}
	updateEww(displayInfoVar, info)
	return true
}

// DisplayWatcher mirrors backlight changes (ours or anyone else's) into
// DISPLAY_INFO and flashes the OSD.
func DisplayWatcher(device string) func(stop <-chan struct{}) {
	return func(stop <-chan struct{}) {
		publishDisplayInfo(device)

		events := subscribe.DisplayEvents(device)

		for {
			select {
			case <-stop:
				return
			case <-events:
				if !publishDisplayInfo(device) {
					continue
				}

				go func() {
					updateEwwNoJson("OSD_DISPLAY", true)
					time.Sleep(5 * time.Second)
					updateEwwNoJson("OSD_DISPLAY", false)
				}()
			}
		}
	}
}
