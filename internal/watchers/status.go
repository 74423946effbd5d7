package watchers

import (
	"github.com/ncruces/zenity"
	"go.uber.org/zap"
)

const statusVar = "BRUX_STATUS"

// StatusReporter surfaces daemon health: the BRUX_STATUS widget variable and,
// optionally, a desktop notification for each new failure.
type StatusReporter struct {
	Eww    bool
	Notify bool
	Logger *zap.Logger
}

type statusPayload struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

var notify = func(text string) error {
	return zenity.Notify(text, zenity.Title("brux"), zenity.WarningIcon)
}

func (s *StatusReporter) Report(err error) {
	payload := statusPayload{OK: err == nil}
	if err != nil {
		payload.Message = err.Error()
	}

	if s.Eww {
		updateEww(statusVar, payload)
	}

	if err != nil && s.Notify {
		if nerr := notify("brux: " + err.Error()); nerr != nil && s.Logger != nil {
			s.Logger.Debug("desktop notification failed", zap.Error(nerr))
		}
	}
}
