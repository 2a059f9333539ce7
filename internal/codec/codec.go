// Package codec converts organizer data to and from the portable JSON backup document.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"package-organizer/internal/domain"
)

// Version tags exported documents. Import does not check it.
const Version = "v10"

// isoMillis matches the ISO-8601 form browsers produce (UTC, millisecond precision).
const isoMillis = "2006-01-02T15:04:05.000Z"

// Document is the exported JSON envelope.
type Document struct {
	Packages     map[string]string `json:"packages"`
	Delivered    []string          `json:"delivered"`
	PackageRange int               `json:"packageRange"`
	ExportDate   string            `json:"exportDate"`
	Version      string            `json:"version"`
}

// Export renders m as an indented JSON document stamped with now.
func Export(m domain.Manifest, now time.Time) ([]byte, error) {
	doc := Document{
		Packages:     domain.EncodePackages(m.Packages),
		Delivered:    domain.EncodeDelivered(m.Delivered),
		PackageRange: m.PackageRange,
		ExportDate:   now.UTC().Format(isoMillis),
		Version:      Version,
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal document: %w", err)
	}
	return b, nil
}

// ExportFilename names a backup file after its export day.
func ExportFilename(now time.Time) string {
	return "package-organizer-" + now.UTC().Format("2006-01-02") + ".json"
}

// Patch holds the fields an import document supplied in a usable shape.
// Fields that were absent or wrong-shaped are marked as not present.
type Patch struct {
	Packages     map[domain.PackageNumber]domain.Zone
	HasPackages  bool
	Delivered    []domain.PackageNumber
	HasDelivered bool
	PackageRange int
	HasRange     bool
	Version      string
}

// Empty reports whether the document carried nothing usable.
func (p Patch) Empty() bool { return !p.HasPackages && !p.HasDelivered && !p.HasRange }

// Apply returns a copy of m with every present field replaced.
func (p Patch) Apply(m domain.Manifest) domain.Manifest {
	out := m.Clone()
	if p.HasPackages {
		out.Packages = make(map[domain.PackageNumber]domain.Zone, len(p.Packages))
		for n, z := range p.Packages {
			out.Packages[n] = z
		}
	}
	if p.HasDelivered {
		out.Delivered = append([]domain.PackageNumber{}, p.Delivered...)
	}
	if p.HasRange {
		out.PackageRange = p.PackageRange
	}
	return out
}

// Import parses an exported document. Invalid JSON yields ImportParseFailure and a
// top level that is not an object yields ImportMalformedDocument. Each data field is
// taken only if present and well-shaped; others are skipped.
func Import(doc []byte, layout *domain.Layout) (Patch, error) {
	if layout == nil {
		layout = domain.DefaultLayout()
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return Patch{}, &domain.ImportError{Kind: domain.ImportParseFailure, Err: err}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Patch{}, &domain.ImportError{
			Kind: domain.ImportMalformedDocument,
			Err:  fmt.Errorf("top level is %s, want object", jsonKind(v)),
		}
	}

	var p Patch
	if raw, ok := obj["packages"]; ok {
		p.Packages, p.HasPackages = domain.PackagesFromPayload(raw, layout)
	}
	if raw, ok := obj["delivered"]; ok {
		p.Delivered, p.HasDelivered = domain.DeliveredFromPayload(raw)
	}
	if raw, ok := obj["packageRange"]; ok {
		p.PackageRange, p.HasRange = domain.RangeFromPayload(raw)
	}
	if s, ok := obj["version"].(string); ok {
		p.Version = s
	}

	return p, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
