package session

import (
	"errors"
	"fmt"
	"time"

	"modelview/internal/common/fault"
)

func connectionDown() error { return fault.Connection("channel not connected", nil) }

func timeoutErr(id int64, after time.Duration) error { return fault.Timeout(id, after) }

func (s *Session) setStatus(msg string) {
	s.status = msg
}

// report records err as the last error and renders it on the status line.
func (s *Session) report(err error) {
	if err == nil {
		return
	}
	s.lastErr = err
	s.countError(err)
	kind, _ := fault.KindOf(err)
	s.log.Warn().Err(err).Str("kind", string(kind)).Msg("reported error")
	s.pub.Publish(Event{Name: EventError, ModelID: fault.ModelOf(err), Fields: map[string]any{"kind": string(kind)}})
	s.setStatus(statusText(err))
}

func (s *Session) countError(err error) {
	kind, ok := fault.KindOf(err)
	if !ok {
		kind = "other"
	}
	errorsTotal.WithLabelValues(string(kind)).Inc()
}

// statusText renders err for the status line.
func statusText(err error) string {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		return "Error: " + err.Error()
	}
	detail := fe.Msg
	if fe.Err != nil {
		if detail != "" {
			detail += ": "
		}
		detail += fe.Err.Error()
	}
	switch fe.Kind {
	case fault.KindConnection:
		return "Connection error: " + detail
	case fault.KindProtocol:
		return "Protocol error: " + detail
	case fault.KindServer:
		return "Server error: " + fe.Msg
	case fault.KindDecode:
		return fmt.Sprintf("Could not decode model %d", fe.ModelID)
	case fault.KindParse:
		return fmt.Sprintf("Could not parse model %d", fe.ModelID)
	case fault.KindTimeout:
		return fmt.Sprintf("Timed out waiting for model %d", fe.ModelID)
	}
	return fe.Error()
}
