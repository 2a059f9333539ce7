package state

import "package-organizer/internal/domain"

// ZoneView lists the packages loaded into one zone, ascending.
type ZoneView struct {
	Spec      domain.ZoneSpec
	Packages  []domain.PackageNumber
	Delivered []domain.PackageNumber
}

// Counts summarizes progress on the route.
type Counts struct {
	Assigned  int
	Delivered int
	Remaining int
}

// Snapshot is a read-only copy of the store for rendering. Mutating it does not affect the store.
type Snapshot struct {
	Phase        domain.Phase
	PackageRange int
	RangePresets []int
	DarkMode     bool
	Selection    []domain.PackageNumber
	Manifest     domain.Manifest
	Zones        []ZoneView
	Unassigned   []domain.PackageNumber
	Counts       Counts
	CanUndo      bool
	CanDeliver   bool
}

// Snapshot returns a fresh copy of the current state with derived views.
func (s *Store) Snapshot() Snapshot {
	m := s.Manifest()

	byZone := make(map[domain.Zone]*ZoneView)
	specs := s.layout.Zones()
	zones := make([]ZoneView, len(specs))
	for i, spec := range specs {
		zones[i] = ZoneView{
			Spec:      spec,
			Packages:  []domain.PackageNumber{},
			Delivered: []domain.PackageNumber{},
		}
		byZone[spec.ID] = &zones[i]
	}

	counts := Counts{Assigned: len(m.Packages)}
	for n, z := range m.Packages {
		zv, ok := byZone[z]
		if !ok {
			continue
		}
		zv.Packages = append(zv.Packages, n)
		if s.IsDelivered(n) {
			zv.Delivered = append(zv.Delivered, n)
			counts.Delivered++
		}
	}
	for i := range zones {
		domain.SortNumbers(zones[i].Packages)
		domain.SortNumbers(zones[i].Delivered)
	}
	counts.Remaining = counts.Assigned - counts.Delivered

	unassigned := make([]domain.PackageNumber, 0, s.packageRange)
	for n := domain.PackageNumber(1); int(n) <= s.packageRange; n++ {
		if _, ok := m.Packages[n]; !ok {
			unassigned = append(unassigned, n)
		}
	}

	return Snapshot{
		Phase:        s.phase,
		PackageRange: s.packageRange,
		RangePresets: s.layout.RangePresets(),
		DarkMode:     s.darkMode,
		Selection:    s.Selection(),
		Manifest:     m,
		Zones:        zones,
		Unassigned:   unassigned,
		Counts:       counts,
		CanUndo:      s.CanUndo(),
		CanDeliver:   len(m.Packages) > 0,
	}
}
