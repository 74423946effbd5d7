package subscribe

import (
	"path"
)

// DisplayEvents emits the device name of every backlight change. An empty
// device matches all of them.
func DisplayEvents(device string) <-chan string {
	events := make(chan string, 1)
	raw := uevents("backlight")

	go func() {
		for fields := range raw {
			if fields["ACTION"] != "change" {
				continue
			}
			name := path.Base(fields["DEVPATH"])
			if device != "" && name != device {
				continue
			}
			select {
			case events <- name:
			default:
			}
		}
	}()

	return events
}
