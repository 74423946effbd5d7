package subscribe

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	login1Manager   = "org.freedesktop.login1.Manager"
	prepareForSleep = "PrepareForSleep"
)

// SleepEvents reports logind's PrepareForSleep signal: true just before
// suspend, false after resume.
func SleepEvents(stop <-chan struct{}) (<-chan bool, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface(login1Manager),
		dbus.WithMatchMember(prepareForSleep),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("match %s.%s: %w", login1Manager, prepareForSleep, err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	events := make(chan bool, 1)
	go func() {
		defer close(events)
		defer conn.Close()

		for {
			select {
			case <-stop:
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sleeping, ok := parseSleepSignal(sig); ok {
					select {
					case events <- sleeping:
					case <-stop:
						return
					}
				}
			}
		}
	}()

	return events, nil
}

func parseSleepSignal(sig *dbus.Signal) (bool, bool) {
	if sig == nil || sig.Name != login1Manager+"."+prepareForSleep || len(sig.Body) < 1 {
		return false, false
	}
	sleeping, ok := sig.Body[0].(bool)
	return sleeping, ok
}
