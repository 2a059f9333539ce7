package config

import (
	"fmt"
	"os"

	"package-organizer/internal/domain"

	"gopkg.in/yaml.v3"
)

// LayoutFile is the YAML shape of a vehicle layout:
//
//	zones:
//	  - id: passenger
//	    name: Passenger Seat
//	    class: zone-passenger
//	range_presets: [20, 35, 50]
type LayoutFile struct {
	Zones []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Class string `yaml:"class"`
	} `yaml:"zones"`
	RangePresets []int `yaml:"range_presets"`
}

// LoadLayout reads a layout file. An empty path yields the default five-zone layout.
func LoadLayout(path string) (*domain.Layout, error) {
	if path == "" {
		return domain.DefaultLayout(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load layout: read %q: %w", path, err)
	}

	return ParseLayout(b)
}

// ParseLayout decodes a YAML layout document. Omitted zones fall back to the defaults.
func ParseLayout(b []byte) (*domain.Layout, error) {
	var f LayoutFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("load layout: parse yaml: %w", err)
	}

	zones := domain.DefaultZones()
	if len(f.Zones) > 0 {
		zones = make([]domain.ZoneSpec, 0, len(f.Zones))
		for _, z := range f.Zones {
			zones = append(zones, domain.ZoneSpec{ID: domain.Zone(z.ID), Name: z.Name, DisplayClass: z.Class})
		}
	}

	l, err := domain.NewLayout(zones, f.RangePresets)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return l, nil
}
