// Package state owns the organizer's mutable model. Every change goes through Store,
// which validates the intent, applies it and records an undoable history entry.
package state

import (
	"fmt"
	"maps"
	"slices"

	"package-organizer/internal/domain"
	"package-organizer/internal/history"
)

// Store is the single source of truth for packages, delivery status, selection and range.
// It is not safe for concurrent use; callers serialize intents.
type Store struct {
	layout       *domain.Layout
	packages     map[domain.PackageNumber]domain.Zone
	delivered    map[domain.PackageNumber]struct{}
	selection    []domain.PackageNumber
	packageRange int
	phase        domain.Phase
	darkMode     bool
	history      *history.Log
}

// NewStore returns an empty store in the assigning phase.
func NewStore(layout *domain.Layout) *Store {
	if layout == nil {
		layout = domain.DefaultLayout()
	}
	return &Store{
		layout:       layout,
		packages:     map[domain.PackageNumber]domain.Zone{},
		delivered:    map[domain.PackageNumber]struct{}{},
		packageRange: domain.DefaultRange,
		phase:        domain.PhaseAssigning,
		darkMode:     true,
		history:      history.NewLog(),
	}
}

func (s *Store) Layout() *domain.Layout { return s.layout }
func (s *Store) Phase() domain.Phase    { return s.phase }
func (s *Store) PackageRange() int      { return s.packageRange }
func (s *Store) DarkMode() bool         { return s.darkMode }
func (s *Store) CanUndo() bool          { return s.history.Len() > 0 }

// Zone returns the zone a package is assigned to.
func (s *Store) Zone(n domain.PackageNumber) (domain.Zone, bool) {
	z, ok := s.packages[n]
	return z, ok
}

// IsDelivered reports delivered set membership.
func (s *Store) IsDelivered(n domain.PackageNumber) bool {
	_, ok := s.delivered[n]
	return ok
}

// Selection returns a copy of the current selection in selection order.
func (s *Store) Selection() []domain.PackageNumber {
	return slices.Clone(s.selection)
}

// Manifest returns a deep copy of the persistable model.
func (s *Store) Manifest() domain.Manifest {
	m := domain.Manifest{
		Packages:     maps.Clone(s.packages),
		Delivered:    slices.Sorted(maps.Keys(s.delivered)),
		PackageRange: s.packageRange,
	}
	if m.Packages == nil {
		m.Packages = map[domain.PackageNumber]domain.Zone{}
	}
	if m.Delivered == nil {
		m.Delivered = []domain.PackageNumber{}
	}
	return m
}

// Hydrate replaces the whole model with freshly loaded data. History, selection and
// phase start over.
func (s *Store) Hydrate(m domain.Manifest, darkMode bool) {
	s.replaceManifest(m)
	s.darkMode = darkMode
	s.selection = nil
	s.phase = domain.PhaseAssigning
	s.history.Clear()
}

// ReplaceManifest swaps in imported data. Fields absent from an import are passed through
// unchanged by the caller; history is kept.
func (s *Store) ReplaceManifest(m domain.Manifest) {
	s.replaceManifest(m)
	s.pruneSelection()
	s.settlePhase()
}

func (s *Store) replaceManifest(m domain.Manifest) {
	s.packages = maps.Clone(m.Packages)
	if s.packages == nil {
		s.packages = map[domain.PackageNumber]domain.Zone{}
	}
	s.delivered = make(map[domain.PackageNumber]struct{}, len(m.Delivered))
	for _, n := range m.Delivered {
		s.delivered[n] = struct{}{}
	}
	if domain.ValidateRange(m.PackageRange) == nil {
		s.packageRange = m.PackageRange
	}
}

// Assign puts every number of the batch into zone. Reassigning a delivered package
// un-delivers it. One history entry covers the whole batch.
func (s *Store) Assign(numbers []domain.PackageNumber, zone domain.Zone) error {
	if s.phase != domain.PhaseAssigning {
		return &domain.ValidationError{Field: "phase", Value: string(s.phase), Err: domain.ErrWrongPhase}
	}
	if !s.layout.Has(zone) {
		return &domain.ValidationError{Field: "zone", Value: string(zone), Err: domain.ErrUnknownZone}
	}
	if err := domain.ValidateBatch(numbers, s.packageRange); err != nil {
		return err
	}

	entry := history.Assign{Zone: zone, Priors: make([]history.Prior, 0, len(numbers))}
	for _, n := range numbers {
		_, wasDelivered := s.delivered[n]
		entry.Priors = append(entry.Priors, history.Prior{
			Number:    n,
			Zone:      s.packages[n],
			Delivered: wasDelivered,
		})
	}

	for _, n := range numbers {
		s.packages[n] = zone
		delete(s.delivered, n)
	}
	s.history.Push(entry)
	return nil
}

// AssignSelection assigns the current selection to zone and clears the selection.
func (s *Store) AssignSelection(zone domain.Zone) ([]domain.PackageNumber, error) {
	batch := slices.Clone(s.selection)
	if err := s.Assign(batch, zone); err != nil {
		return nil, err
	}
	s.selection = nil
	return batch, nil
}

// Remove deletes one assignment. Delivered set membership is left as is.
func (s *Store) Remove(n domain.PackageNumber) error {
	zone, ok := s.packages[n]
	if !ok {
		return &domain.ValidationError{Field: "package", Value: n.String(), Err: domain.ErrNotAssigned}
	}
	delete(s.packages, n)
	s.history.Push(history.Remove{Number: n, Zone: zone})
	s.settlePhase()
	return nil
}

// SetDelivered marks a package delivered or not delivered. Setting the current value is a
// no-op and records nothing. Returns whether state changed.
func (s *Store) SetDelivered(n domain.PackageNumber, delivered bool) (bool, error) {
	if s.phase != domain.PhaseDelivering {
		return false, &domain.ValidationError{Field: "phase", Value: string(s.phase), Err: domain.ErrWrongPhase}
	}
	_, isDelivered := s.delivered[n]
	if isDelivered == delivered {
		return false, nil
	}

	if delivered {
		if _, ok := s.packages[n]; !ok {
			return false, &domain.ValidationError{Field: "package", Value: n.String(), Err: domain.ErrNotAssigned}
		}
		s.delivered[n] = struct{}{}
		s.history.Push(history.Deliver{Number: n})
		return true, nil
	}

	delete(s.delivered, n)
	s.history.Push(history.Undeliver{Number: n})
	return true, nil
}

// ToggleDelivered flips delivered status and returns the new value.
func (s *Store) ToggleDelivered(n domain.PackageNumber) (bool, error) {
	target := !s.IsDelivered(n)
	if _, err := s.SetDelivered(n, target); err != nil {
		return false, err
	}
	return target, nil
}

// Undo reverts the most recent history entry. It does not re-check phase or range.
func (s *Store) Undo() (history.Entry, bool) {
	e, ok := s.history.Pop()
	if !ok {
		return nil, false
	}

	switch e := e.(type) {
	case history.Assign:
		for i := len(e.Priors) - 1; i >= 0; i-- {
			p := e.Priors[i]
			if p.Zone == "" {
				delete(s.packages, p.Number)
			} else {
				s.packages[p.Number] = p.Zone
			}
			if p.Delivered {
				s.delivered[p.Number] = struct{}{}
			} else {
				delete(s.delivered, p.Number)
			}
		}
	case history.Remove:
		s.packages[e.Number] = e.Zone
	case history.Deliver:
		delete(s.delivered, e.Number)
	case history.Undeliver:
		s.delivered[e.Number] = struct{}{}
	default:
		panic(fmt.Sprintf("state: undo: unhandled history entry %T", e))
	}

	s.settlePhase()
	return e, true
}

// Reset empties packages, delivered set, selection and history in one step
// and returns to the assigning phase. Range and dark mode are kept.
func (s *Store) Reset() {
	s.packages = map[domain.PackageNumber]domain.Zone{}
	s.delivered = map[domain.PackageNumber]struct{}{}
	s.selection = nil
	s.history.Clear()
	s.phase = domain.PhaseAssigning
}

// SetRange changes the route size and drops selected numbers above it.
func (s *Store) SetRange(r int) error {
	if err := domain.ValidateRange(r); err != nil {
		return err
	}
	s.packageRange = r
	s.pruneSelection()
	return nil
}

func (s *Store) pruneSelection() {
	s.selection = slices.DeleteFunc(s.selection, func(n domain.PackageNumber) bool {
		return int(n) > s.packageRange
	})
}

// SetDarkMode sets the persisted theme preference.
func (s *Store) SetDarkMode(on bool) { s.darkMode = on }

// Select appends n to the selection.
func (s *Store) Select(n domain.PackageNumber) error {
	if s.phase != domain.PhaseAssigning {
		return &domain.ValidationError{Field: "phase", Value: string(s.phase), Err: domain.ErrWrongPhase}
	}
	if err := domain.ValidateNumber(n, s.packageRange); err != nil {
		return err
	}
	if slices.Contains(s.selection, n) {
		return &domain.ValidationError{Field: "package", Value: n.String(), Err: domain.ErrDuplicate}
	}
	s.selection = append(s.selection, n)
	return nil
}

// Deselect removes n from the selection. Returns whether it was selected.
func (s *Store) Deselect(n domain.PackageNumber) bool {
	i := slices.Index(s.selection, n)
	if i < 0 {
		return false
	}
	s.selection = slices.Delete(s.selection, i, i+1)
	return true
}

// ToggleSelection selects n, or deselects it when already selected.
// Returns whether n is selected afterwards.
func (s *Store) ToggleSelection(n domain.PackageNumber) (bool, error) {
	if s.Deselect(n) {
		return false, nil
	}
	if err := s.Select(n); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ClearSelection() { s.selection = nil }

// StartDelivery switches to the delivering phase. At least one package must be assigned.
func (s *Store) StartDelivery() error {
	if len(s.packages) == 0 {
		return &domain.ValidationError{Field: "phase", Value: string(domain.PhaseDelivering), Err: domain.ErrNothingLoaded}
	}
	s.phase = domain.PhaseDelivering
	s.selection = nil
	return nil
}

// settlePhase leaves the delivering phase once nothing is assigned.
func (s *Store) settlePhase() {
	if s.phase == domain.PhaseDelivering && len(s.packages) == 0 {
		s.phase = domain.PhaseAssigning
	}
}

// StartAssigning switches back to the assigning phase.
func (s *Store) StartAssigning() {
	s.phase = domain.PhaseAssigning
	s.selection = nil
}
