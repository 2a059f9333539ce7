package ports

import "context"

// Cue names a feedback signal (sound, vibration) emitted after an intent.
type Cue string

const (
	CueSelect   Cue = "select"
	CueAssign   Cue = "assign"
	CueRemove   Cue = "remove"
	CueDeliver  Cue = "deliver"
	CueUndo     Cue = "undo"
	CueReset    Cue = "reset"
	CueError    Cue = "error"
	CueComplete Cue = "complete"
)

// Port: fire-and-forget feedback for the driver. Failures never affect state.
type Feedback interface {
	Play(ctx context.Context, cue Cue) error
}
