// Package history records reversible state changes so they can be undone in LIFO order.
package history

import "package-organizer/internal/domain"

// Entry is one reversible mutation. The set of implementations is closed:
// Assign, Remove, Deliver and Undeliver.
type Entry interface {
	isEntry()
	// Kind names the mutation for logs and metrics.
	Kind() string
}

// Prior is the state a package had before it was (re)assigned.
type Prior struct {
	Number    domain.PackageNumber
	Zone      domain.Zone // empty when the package was unassigned
	Delivered bool
}

// Assign records one batch assignment. Undo restores every package in Priors.
type Assign struct {
	Zone   domain.Zone
	Priors []Prior
}

// Remove records the deletion of one assignment.
type Remove struct {
	Number domain.PackageNumber
	Zone   domain.Zone
}

// Deliver records that a package was marked delivered.
type Deliver struct {
	Number domain.PackageNumber
}

// Undeliver records that a package was marked not delivered.
type Undeliver struct {
	Number domain.PackageNumber
}

func (Assign) isEntry()    {}
func (Remove) isEntry()    {}
func (Deliver) isEntry()   {}
func (Undeliver) isEntry() {}

func (Assign) Kind() string    { return "assign" }
func (Remove) Kind() string    { return "remove" }
func (Deliver) Kind() string   { return "deliver" }
func (Undeliver) Kind() string { return "undeliver" }

// Numbers returns the package numbers covered by the batch, in batch order.
func (a Assign) Numbers() []domain.PackageNumber {
	out := make([]domain.PackageNumber, 0, len(a.Priors))
	for _, p := range a.Priors {
		out = append(out, p.Number)
	}
	return out
}
