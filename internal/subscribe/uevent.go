package subscribe

import (
	"log"
	"strings"
	"syscall"
)

// uevents streams kernel uevents whose SUBSYSTEM matches subsystem. Each
// message is split into its KEY=value fields.
func uevents(subsystem string) <-chan map[string]string {
	out := make(chan map[string]string, 8)

	go func() {
		fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_RAW, syscall.NETLINK_KOBJECT_UEVENT)
		if err != nil {
			log.Printf("subscribe: failed to open netlink socket: %v", err)
			return
		}
		defer syscall.Close(fd)

		addr := &syscall.SockaddrNetlink{
			Family: syscall.AF_NETLINK,
			Groups: 1, // listen to broadcast uevents
		}
		if err := syscall.Bind(fd, addr); err != nil {
			log.Printf("subscribe: failed to bind netlink socket: %v", err)
			return
		}

		buf := make([]byte, 4096)
		for {
			n, _, err := syscall.Recvfrom(fd, buf, 0)
			if err != nil {
				log.Printf("subscribe: netlink recv error: %v", err)
				continue
			}

			fields := parseUevent(string(buf[:n]))
			if fields["SUBSYSTEM"] != subsystem {
				continue
			}
			select {
			case out <- fields:
			default:
			}
		}
	}()

	return out
}

// parseUevent splits a null-separated uevent. The leading "action@devpath"
// header carries no '=' and is skipped.
func parseUevent(msg string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Split(msg, "\x00") {
		if key, value, ok := strings.Cut(part, "="); ok {
			fields[key] = value
		}
	}
	return fields
}
