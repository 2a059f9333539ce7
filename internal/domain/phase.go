package domain

// Phase is the top-level mode of the organizer.
type Phase string

const (
	PhaseAssigning  Phase = "assigning"
	PhaseDelivering Phase = "delivering"
)
