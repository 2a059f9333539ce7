package state

import (
	"errors"
	"reflect"
	"testing"

	"package-organizer/internal/domain"
	"package-organizer/internal/history"
)

func nums(ns ...int) []domain.PackageNumber {
	out := make([]domain.PackageNumber, 0, len(ns))
	for _, n := range ns {
		out = append(out, domain.PackageNumber(n))
	}
	return out
}

func newStore(t *testing.T, packageRange int) *Store {
	t.Helper()
	s := NewStore(domain.DefaultLayout())
	if err := s.SetRange(packageRange); err != nil {
		t.Fatalf("set range: %v", err)
	}
	return s
}

func assertManifest(t *testing.T, got, want domain.Manifest) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("manifest = %+v, want %+v", got, want)
	}
}

func TestBatchAssignThenUndoRestoresEmptyState(t *testing.T) {
	s := newStore(t, 20)
	empty := s.Manifest()

	if err := s.Assign(nums(1, 2, 3), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign batch: %v", err)
	}
	if err := s.Assign(nums(2), domain.ZonePassenger); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	if z, _ := s.Zone(2); z != domain.ZonePassenger {
		t.Fatalf("zone of 2 = %q, want %q", z, domain.ZonePassenger)
	}

	if _, ok := s.Undo(); !ok {
		t.Fatalf("first undo: history empty")
	}
	if z, _ := s.Zone(2); z != domain.ZoneTrunk {
		t.Fatalf("zone of 2 after first undo = %q, want %q", z, domain.ZoneTrunk)
	}
	if _, ok := s.Undo(); !ok {
		t.Fatalf("second undo: history empty")
	}

	assertManifest(t, s.Manifest(), empty)
	if s.CanUndo() {
		t.Fatalf("history should be empty")
	}
}

func TestAssignLastWriteWins(t *testing.T) {
	s := newStore(t, 50)
	zones := []domain.Zone{domain.ZoneTrunk, domain.ZoneBackLeft, domain.ZonePassenger, domain.ZoneBackRight}
	for _, z := range zones {
		if err := s.Assign(nums(7, 8), z); err != nil {
			t.Fatalf("assign to %q: %v", z, err)
		}
	}

	m := s.Manifest()
	if len(m.Packages) != 2 {
		t.Fatalf("packages = %v, want exactly 2 entries", m.Packages)
	}
	if m.Packages[7] != domain.ZoneBackRight || m.Packages[8] != domain.ZoneBackRight {
		t.Fatalf("packages = %v, want both in %q", m.Packages, domain.ZoneBackRight)
	}
}

func TestReassignmentUndelivers(t *testing.T) {
	s := newStore(t, 20)
	if err := s.Assign(nums(4), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}
	if _, err := s.SetDelivered(4, true); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	s.StartAssigning()

	before := s.Manifest()
	if err := s.Assign(nums(4), domain.ZoneTrunk); err != nil {
		t.Fatalf("reassign to same zone: %v", err)
	}
	if s.IsDelivered(4) {
		t.Fatalf("package 4 still delivered after reassignment")
	}

	s.Undo()
	assertManifest(t, s.Manifest(), before)
	if !s.IsDelivered(4) {
		t.Fatalf("undo did not restore delivered flag")
	}
}

func TestUndoIsExactInverseForEachOperation(t *testing.T) {
	seed := func() *Store {
		s := NewStore(domain.DefaultLayout())
		s.Hydrate(domain.Manifest{
			Packages: map[domain.PackageNumber]domain.Zone{
				1: domain.ZoneBackLeft,
				2: domain.ZoneBackLeft,
				3: domain.ZoneTrunk,
			},
			Delivered:    nums(2),
			PackageRange: 35,
		}, true)
		return s
	}

	cases := []struct {
		name string
		op   func(t *testing.T, s *Store)
	}{
		{"assign", func(t *testing.T, s *Store) {
			if err := s.Assign(nums(2, 3, 9), domain.ZonePassenger); err != nil {
				t.Fatalf("assign: %v", err)
			}
		}},
		{"remove", func(t *testing.T, s *Store) {
			if err := s.Remove(1); err != nil {
				t.Fatalf("remove: %v", err)
			}
		}},
		{"deliver", func(t *testing.T, s *Store) {
			if err := s.StartDelivery(); err != nil {
				t.Fatalf("start delivery: %v", err)
			}
			if _, err := s.SetDelivered(3, true); err != nil {
				t.Fatalf("deliver: %v", err)
			}
		}},
		{"undeliver", func(t *testing.T, s *Store) {
			if err := s.StartDelivery(); err != nil {
				t.Fatalf("start delivery: %v", err)
			}
			if _, err := s.SetDelivered(2, false); err != nil {
				t.Fatalf("undeliver: %v", err)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seed()
			before := s.Manifest()
			selection := s.Selection()

			tc.op(t, s)
			if _, ok := s.Undo(); !ok {
				t.Fatalf("undo: history empty")
			}

			assertManifest(t, s.Manifest(), before)
			if !reflect.DeepEqual(s.Selection(), selection) {
				t.Fatalf("selection = %v, want %v", s.Selection(), selection)
			}
			if s.CanUndo() {
				t.Fatalf("history not empty after undoing the only operation")
			}
		})
	}
}

func TestUndoOnEmptyHistoryIsNoop(t *testing.T) {
	s := newStore(t, 20)
	before := s.Manifest()
	if e, ok := s.Undo(); ok {
		t.Fatalf("undo returned %v on empty history", e)
	}
	assertManifest(t, s.Manifest(), before)
}

func TestUndoIgnoresPhase(t *testing.T) {
	s := newStore(t, 20)
	if err := s.Assign(nums(5), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}

	e, ok := s.Undo()
	if !ok {
		t.Fatalf("undo: history empty")
	}
	if _, isAssign := e.(history.Assign); !isAssign {
		t.Fatalf("undone entry = %T, want history.Assign", e)
	}
	if _, assigned := s.Zone(5); assigned {
		t.Fatalf("package 5 still assigned after undo")
	}
}

func TestDeliveryEndsWhenNothingIsAssigned(t *testing.T) {
	startDelivering := func(t *testing.T) *Store {
		t.Helper()
		s := newStore(t, 20)
		if err := s.Assign(nums(1), domain.ZoneTrunk); err != nil {
			t.Fatalf("assign: %v", err)
		}
		if err := s.StartDelivery(); err != nil {
			t.Fatalf("start delivery: %v", err)
		}
		return s
	}

	t.Run("remove last package", func(t *testing.T) {
		s := startDelivering(t)
		if err := s.Remove(1); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if s.Phase() != domain.PhaseAssigning {
			t.Fatalf("phase = %q, want %q", s.Phase(), domain.PhaseAssigning)
		}
		if _, ok := s.Undo(); !ok {
			t.Fatalf("undo: history empty")
		}
		if _, assigned := s.Zone(1); !assigned {
			t.Fatalf("undo of remove did not restore package 1")
		}
	})

	t.Run("import without packages", func(t *testing.T) {
		s := startDelivering(t)
		m := s.Manifest()
		m.Packages = map[domain.PackageNumber]domain.Zone{}
		s.ReplaceManifest(m)
		if s.Phase() != domain.PhaseAssigning {
			t.Fatalf("phase = %q, want %q", s.Phase(), domain.PhaseAssigning)
		}
	})

	t.Run("undo of the only assignment", func(t *testing.T) {
		s := startDelivering(t)
		s.Undo()
		if s.Phase() != domain.PhaseAssigning {
			t.Fatalf("phase = %q, want %q", s.Phase(), domain.PhaseAssigning)
		}
	})

	t.Run("remove with packages left", func(t *testing.T) {
		s := startDelivering(t)
		s.StartAssigning()
		if err := s.Assign(nums(2), domain.ZoneTrunk); err != nil {
			t.Fatalf("assign: %v", err)
		}
		if err := s.StartDelivery(); err != nil {
			t.Fatalf("start delivery: %v", err)
		}
		if err := s.Remove(1); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if s.Phase() != domain.PhaseDelivering {
			t.Fatalf("phase = %q, want %q", s.Phase(), domain.PhaseDelivering)
		}
	})
}

func TestSetRangeRejectsOutOfBounds(t *testing.T) {
	s := newStore(t, 35)
	for _, r := range []int{0, -1, 101, 1000} {
		err := s.SetRange(r)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("SetRange(%d) err = %v, want ValidationError", r, err)
		}
		if !errors.Is(err, domain.ErrOutOfRange) {
			t.Fatalf("SetRange(%d) err = %v, want ErrOutOfRange", r, err)
		}
		if s.PackageRange() != 35 {
			t.Fatalf("range = %d after SetRange(%d), want 35", s.PackageRange(), r)
		}
	}

	for _, r := range []int{1, 100} {
		if err := s.SetRange(r); err != nil {
			t.Fatalf("SetRange(%d): %v", r, err)
		}
	}
}

func TestSetRangePrunesSelection(t *testing.T) {
	s := newStore(t, 50)
	for _, n := range nums(5, 40, 20, 21) {
		if err := s.Select(n); err != nil {
			t.Fatalf("select %d: %v", n, err)
		}
	}
	if err := s.SetRange(20); err != nil {
		t.Fatalf("set range: %v", err)
	}
	if got, want := s.Selection(), nums(5, 20); !reflect.DeepEqual(got, want) {
		t.Fatalf("selection = %v, want %v", got, want)
	}
}

func TestSetRangeKeepsAssignmentsAboveRange(t *testing.T) {
	s := newStore(t, 50)
	if err := s.Assign(nums(45), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.SetRange(20); err != nil {
		t.Fatalf("set range: %v", err)
	}
	if _, ok := s.Zone(45); !ok {
		t.Fatalf("assignment above the new range was dropped")
	}
}

func TestAssignValidation(t *testing.T) {
	cases := []struct {
		name    string
		numbers []domain.PackageNumber
		zone    domain.Zone
		want    error
	}{
		{"empty batch", nil, domain.ZoneTrunk, domain.ErrEmptySelection},
		{"out of range", nums(1, 21), domain.ZoneTrunk, domain.ErrOutOfRange},
		{"zero", nums(0), domain.ZoneTrunk, domain.ErrOutOfRange},
		{"duplicate in batch", nums(3, 3), domain.ZoneTrunk, domain.ErrDuplicate},
		{"unknown zone", nums(1), domain.Zone("roof"), domain.ErrUnknownZone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t, 20)
			before := s.Manifest()
			err := s.Assign(tc.numbers, tc.zone)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			assertManifest(t, s.Manifest(), before)
			if s.CanUndo() {
				t.Fatalf("rejected assign recorded history")
			}
		})
	}
}

func TestAssignRequiresAssigningPhase(t *testing.T) {
	s := newStore(t, 20)
	if err := s.Assign(nums(1), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}
	if err := s.Assign(nums(2), domain.ZoneTrunk); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase", err)
	}
}

func TestRemoveKeepsDeliveredMembership(t *testing.T) {
	s := newStore(t, 20)
	if err := s.Assign(nums(6), domain.ZoneBackMiddle); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}
	if _, err := s.SetDelivered(6, true); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := s.Remove(6); err != nil {
		t.Fatalf("remove: %v", err)
	}

	m := s.Manifest()
	if _, ok := m.Packages[6]; ok {
		t.Fatalf("package 6 still assigned")
	}
	if !reflect.DeepEqual(m.Delivered, nums(6)) {
		t.Fatalf("delivered = %v, want [6]", m.Delivered)
	}

	if err := s.Remove(6); !errors.Is(err, domain.ErrNotAssigned) {
		t.Fatalf("second remove err = %v, want ErrNotAssigned", err)
	}
}

func TestSetDelivered(t *testing.T) {
	s := newStore(t, 20)
	if _, err := s.SetDelivered(1, true); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("deliver in assigning phase err = %v, want ErrWrongPhase", err)
	}

	if err := s.Assign(nums(1), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}

	if _, err := s.SetDelivered(2, true); !errors.Is(err, domain.ErrNotAssigned) {
		t.Fatalf("deliver unassigned err = %v, want ErrNotAssigned", err)
	}

	changed, err := s.SetDelivered(1, true)
	if err != nil || !changed {
		t.Fatalf("deliver = (%v, %v), want (true, nil)", changed, err)
	}
	changed, err = s.SetDelivered(1, true)
	if err != nil || changed {
		t.Fatalf("repeat deliver = (%v, %v), want (false, nil)", changed, err)
	}

	on, err := s.ToggleDelivered(1)
	if err != nil || on {
		t.Fatalf("toggle = (%v, %v), want (false, nil)", on, err)
	}
	e, _ := s.Undo()
	if _, ok := e.(history.Undeliver); !ok {
		t.Fatalf("undone entry = %T, want history.Undeliver", e)
	}
	if !s.IsDelivered(1) {
		t.Fatalf("undo of undeliver did not restore delivered flag")
	}
}

func TestResetClearsEverythingTogether(t *testing.T) {
	s := newStore(t, 35)
	if err := s.Assign(nums(1, 2), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.Select(3); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}
	if _, err := s.SetDelivered(1, true); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	s.Reset()

	snap := s.Snapshot()
	if len(snap.Manifest.Packages) != 0 || len(snap.Manifest.Delivered) != 0 {
		t.Fatalf("reset left data: %+v", snap.Manifest)
	}
	if len(snap.Selection) != 0 || snap.CanUndo {
		t.Fatalf("reset left selection=%v canUndo=%v", snap.Selection, snap.CanUndo)
	}
	if snap.Phase != domain.PhaseAssigning {
		t.Fatalf("phase = %q, want %q", snap.Phase, domain.PhaseAssigning)
	}
	if snap.PackageRange != 35 {
		t.Fatalf("range = %d, want 35", snap.PackageRange)
	}
}

func TestSelection(t *testing.T) {
	s := newStore(t, 20)

	if err := s.Select(21); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("select 21 err = %v, want ErrOutOfRange", err)
	}
	if err := s.Select(4); err != nil {
		t.Fatalf("select 4: %v", err)
	}
	if err := s.Select(4); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("select 4 twice err = %v, want ErrDuplicate", err)
	}

	on, err := s.ToggleSelection(9)
	if err != nil || !on {
		t.Fatalf("toggle 9 = (%v, %v), want (true, nil)", on, err)
	}
	on, err = s.ToggleSelection(4)
	if err != nil || on {
		t.Fatalf("toggle 4 = (%v, %v), want (false, nil)", on, err)
	}

	batch, err := s.AssignSelection(domain.ZoneBackRight)
	if err != nil {
		t.Fatalf("assign selection: %v", err)
	}
	if !reflect.DeepEqual(batch, nums(9)) {
		t.Fatalf("batch = %v, want [9]", batch)
	}
	if len(s.Selection()) != 0 {
		t.Fatalf("selection not cleared after assign: %v", s.Selection())
	}

	if _, err := s.AssignSelection(domain.ZoneTrunk); !errors.Is(err, domain.ErrEmptySelection) {
		t.Fatalf("assign empty selection err = %v, want ErrEmptySelection", err)
	}
}

func TestPhaseTransitions(t *testing.T) {
	s := newStore(t, 20)
	if err := s.StartDelivery(); !errors.Is(err, domain.ErrNothingLoaded) {
		t.Fatalf("start delivery with nothing loaded err = %v, want ErrNothingLoaded", err)
	}

	if err := s.Assign(nums(1), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.Select(2); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.StartDelivery(); err != nil {
		t.Fatalf("start delivery: %v", err)
	}
	if len(s.Selection()) != 0 {
		t.Fatalf("selection survived phase change: %v", s.Selection())
	}
	if err := s.Select(3); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("select while delivering err = %v, want ErrWrongPhase", err)
	}

	s.StartAssigning()
	if s.Phase() != domain.PhaseAssigning {
		t.Fatalf("phase = %q, want %q", s.Phase(), domain.PhaseAssigning)
	}
}

func TestHydrateStartsOver(t *testing.T) {
	s := newStore(t, 20)
	if err := s.Assign(nums(1), domain.ZoneTrunk); err != nil {
		t.Fatalf("assign: %v", err)
	}

	m := domain.Manifest{
		Packages:     map[domain.PackageNumber]domain.Zone{10: domain.ZonePassenger},
		Delivered:    nums(10),
		PackageRange: 35,
	}
	s.Hydrate(m, false)

	assertManifest(t, s.Manifest(), m)
	if s.CanUndo() {
		t.Fatalf("history survived hydrate")
	}
	if s.DarkMode() {
		t.Fatalf("dark mode = true, want false")
	}
}
