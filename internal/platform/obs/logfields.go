package obs

import (
	"io"
	"log/slog"
	"strings"
)

// Canonical log field names.
const (
	KeyRequestID  = "req_id"
	KeyOp         = "op"
	KeyDurationMS = "dur_ms"
	KeyError      = "error"
	KeyKey        = "key"
	KeyIntent     = "intent"
	KeyPackage    = "package"
	KeyZone       = "zone"
	KeyNotice     = "notice"
)

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

func Intent(name string) slog.Attr  { return slog.String(KeyIntent, name) }
func Package(n int) slog.Attr       { return slog.Int(KeyPackage, n) }
func Zone(z string) slog.Attr       { return slog.String(KeyZone, z) }
func StorageKey(k string) slog.Attr { return slog.String(KeyKey, k) }
func Notice(kind string) slog.Attr  { return slog.String(KeyNotice, kind) }

// NewLogger builds the process logger. format is "text" or "json"; level is a slog level name.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
