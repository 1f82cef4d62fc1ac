package protocol

import (
	"github.com/goccy/go-json"
)

// Debug projects cmd into a JSON-friendly map for logs and tooling.
func Debug(cmd Command) map[string]any {
	out := map[string]any{
		"type":     cmd.Type().String(),
		"response": cmd.IsResponse(),
		"valid":    cmd.IsValid(),
	}
	switch c := cmd.(type) {
	case *InvalidCommand:
		out["rawType"] = uint8(c.RawType)
		return out
	case *InvalidResponse:
		out["rawType"] = uint8(c.RawType)
	}
	if resp, ok := cmd.(Response); ok && resp.IsError() {
		out["errorCode"] = resp.ErrorCode()
		out["errorMessage"] = resp.ErrorMessage()
	}
	if dn, ok := cmd.(*DebugNotification); ok {
		payload := map[string]any{
			"sessionId": dn.SessionID,
			"listeners": dn.Listeners,
			"timestamp": dn.Timestamp,
		}
		if dn.Notification != nil {
			payload["notification"] = Debug(dn.Notification)
		}
		out["payload"] = payload
		return out
	}
	if cmd.IsValid() {
		out["payload"] = cmd
	}
	return out
}

// DebugJSON renders Debug(cmd) as JSON.
func DebugJSON(cmd Command) ([]byte, error) {
	return json.Marshal(Debug(cmd))
}
