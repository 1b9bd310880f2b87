// Package logfields centralizes canonical slog attribute names used across
// trackmcp packages so field keys do not drift between call sites.
package logfields

import "log/slog"

const (
	KeyTool       = "tool"
	KeyProject    = "project"
	KeyRun        = "run"
	KeyComponent  = "component"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeySubject    = "subject"
	KeyClientID   = "client_id"
	KeyDurationMS = "duration_ms"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Tool(name string) slog.Attr       { return slog.String(KeyTool, name) }
func Project(p string) slog.Attr       { return slog.String(KeyProject, p) }
func Run(r string) slog.Attr           { return slog.String(KeyRun, r) }
func Component(c string) slog.Attr     { return slog.String(KeyComponent, c) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func ClientID(id string) slog.Attr     { return slog.String(KeyClientID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
