package domain

import (
	"fmt"
	"strings"
)

// Zone identifies a physical location inside the vehicle a package is loaded into.
type Zone string

const (
	ZonePassenger  Zone = "passenger"
	ZoneBackLeft   Zone = "backLeft"
	ZoneBackMiddle Zone = "backMiddle"
	ZoneBackRight  Zone = "backRight"
	ZoneTrunk      Zone = "trunk"
)

const (
	MinRange     = 1
	MaxRange     = 100
	DefaultRange = 50
)

// ZoneSpec describes how a zone is presented to the driver.
type ZoneSpec struct {
	ID           Zone
	Name         string
	DisplayClass string
}

// Layout is the immutable vehicle configuration built at startup.
// Zones are kept in display order.
type Layout struct {
	zones        []ZoneSpec
	index        map[Zone]int
	rangePresets []int
}

// DefaultZones returns the five standard vehicle zones.
func DefaultZones() []ZoneSpec {
	return []ZoneSpec{
		{ID: ZonePassenger, Name: "Passenger Seat", DisplayClass: "zone-passenger"},
		{ID: ZoneBackLeft, Name: "Back Left", DisplayClass: "zone-back-left"},
		{ID: ZoneBackMiddle, Name: "Back Middle", DisplayClass: "zone-back-middle"},
		{ID: ZoneBackRight, Name: "Back Right", DisplayClass: "zone-back-right"},
		{ID: ZoneTrunk, Name: "Trunk", DisplayClass: "zone-trunk"},
	}
}

// DefaultRangePresets are the route sizes offered by the range picker.
func DefaultRangePresets() []int { return []int{20, 35, 50} }

// NewLayout validates zone specs and range presets and returns an immutable Layout.
func NewLayout(zones []ZoneSpec, presets []int) (*Layout, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("new layout: at least one zone is required")
	}

	l := &Layout{
		zones: make([]ZoneSpec, 0, len(zones)),
		index: make(map[Zone]int, len(zones)),
	}
	for i, z := range zones {
		id := Zone(strings.TrimSpace(string(z.ID)))
		if id == "" {
			return nil, fmt.Errorf("new layout: zone at index %d: id cannot be empty", i+1)
		}
		if _, dup := l.index[id]; dup {
			return nil, fmt.Errorf("new layout: zone %q declared twice", id)
		}
		name := strings.TrimSpace(z.Name)
		if name == "" {
			name = string(id)
		}
		l.index[id] = len(l.zones)
		l.zones = append(l.zones, ZoneSpec{ID: id, Name: name, DisplayClass: strings.TrimSpace(z.DisplayClass)})
	}

	if len(presets) == 0 {
		presets = DefaultRangePresets()
	}
	for _, p := range presets {
		if err := ValidateRange(p); err != nil {
			return nil, fmt.Errorf("new layout: range preset: %w", err)
		}
	}
	l.rangePresets = append([]int(nil), presets...)

	return l, nil
}

// DefaultLayout returns the standard five-zone layout.
func DefaultLayout() *Layout {
	l, err := NewLayout(DefaultZones(), DefaultRangePresets())
	if err != nil {
		panic(err)
	}
	return l
}

// Zones returns a copy of the zone specs in display order.
func (l *Layout) Zones() []ZoneSpec { return append([]ZoneSpec(nil), l.zones...) }

// RangePresets returns a copy of the configured range presets.
func (l *Layout) RangePresets() []int { return append([]int(nil), l.rangePresets...) }

// Has reports whether z is a zone of this layout.
func (l *Layout) Has(z Zone) bool {
	_, ok := l.index[z]
	return ok
}

// Spec returns the display spec of z.
func (l *Layout) Spec(z Zone) (ZoneSpec, bool) {
	i, ok := l.index[z]
	if !ok {
		return ZoneSpec{}, false
	}
	return l.zones[i], true
}

// ParseZone resolves a zone id against the layout.
func (l *Layout) ParseZone(s string) (Zone, error) {
	z := Zone(strings.TrimSpace(s))
	if !l.Has(z) {
		return "", &ValidationError{Field: "zone", Value: s, Err: ErrUnknownZone}
	}
	return z, nil
}
