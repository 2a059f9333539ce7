package domain

import "maps"

// Manifest is the persistable part of the organizer: assignments, delivered set and route size.
type Manifest struct {
	Packages     map[PackageNumber]Zone
	Delivered    []PackageNumber // ascending, no duplicates
	PackageRange int
}

// EmptyManifest returns a manifest with no packages and the default range.
func EmptyManifest() Manifest {
	return Manifest{
		Packages:     map[PackageNumber]Zone{},
		Delivered:    []PackageNumber{},
		PackageRange: DefaultRange,
	}
}

// Clone returns a deep copy.
func (m Manifest) Clone() Manifest {
	out := Manifest{
		Packages:     make(map[PackageNumber]Zone, len(m.Packages)),
		Delivered:    make([]PackageNumber, len(m.Delivered)),
		PackageRange: m.PackageRange,
	}
	maps.Copy(out.Packages, m.Packages)
	copy(out.Delivered, m.Delivered)
	return out
}
