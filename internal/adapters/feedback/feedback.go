package feedback

import (
	"context"
	"log/slog"

	"package-organizer/internal/ports"
)

// LogFeedback writes cues to the structured log, standing in for sound and vibration.
type LogFeedback struct {
	Logger *slog.Logger
}

func NewLogFeedback(logger *slog.Logger) *LogFeedback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogFeedback{Logger: logger}
}

func (f *LogFeedback) Play(ctx context.Context, cue ports.Cue) error {
	f.Logger.DebugContext(ctx, "feedback", slog.String("cue", string(cue)))
	return nil
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(context.Context, ports.Cue) error { return nil }

// New picks a Feedback by name: "log" or "none".
func New(name string, logger *slog.Logger) ports.Feedback {
	if name == "none" {
		return Nop{}
	}
	return NewLogFeedback(logger)
}
