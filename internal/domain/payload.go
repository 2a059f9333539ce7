package domain

import (
	"maps"
	"math"
	"slices"
	"strconv"
)

// Shape checks for loosely typed JSON payloads (the result of decoding into any).
// Each function reports ok=false when the payload has the wrong top-level shape;
// individual malformed entries inside a well-shaped payload are dropped.

// PackagesFromPayload converts a JSON object of number -> zone id into an assignment map.
// When several keys spell the same number ("1", "01", " 1") the canonical spelling wins,
// otherwise the first valid key in byte order.
func PackagesFromPayload(v any, layout *Layout) (map[PackageNumber]Zone, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}

	out := make(map[PackageNumber]Zone, len(obj))
	canonical := make(map[PackageNumber]bool, len(obj))
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		n, err := ParsePackageNumber(k)
		if err != nil {
			continue
		}
		id, isString := obj[k].(string)
		if !isString || !layout.Has(Zone(id)) {
			continue
		}
		isCanonical := k == n.String()
		if _, dup := out[n]; dup && (canonical[n] || !isCanonical) {
			continue
		}
		out[n] = Zone(id)
		canonical[n] = isCanonical
	}
	return out, true
}

// DeliveredFromPayload converts a JSON array of package numbers (strings or integers)
// into an ascending, duplicate-free list.
func DeliveredFromPayload(v any) ([]PackageNumber, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}

	seen := make(map[PackageNumber]struct{}, len(arr))
	for _, raw := range arr {
		var n PackageNumber
		switch x := raw.(type) {
		case string:
			parsed, err := ParsePackageNumber(x)
			if err != nil {
				continue
			}
			n = parsed
		case float64:
			if x < 1 || x != math.Trunc(x) || x > math.MaxInt32 {
				continue
			}
			n = PackageNumber(x)
		default:
			continue
		}
		seen[n] = struct{}{}
	}

	out := slices.Sorted(maps.Keys(seen))
	if out == nil {
		out = []PackageNumber{}
	}
	return out, true
}

// RangeFromPayload accepts a JSON number that is an integer in [MinRange, MaxRange].
func RangeFromPayload(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	r := int(f)
	if ValidateRange(r) != nil {
		return 0, false
	}
	return r, true
}

// ParseStoredRange parses the integer-as-string form of the route size.
// Anything unparsable or out of bounds yields DefaultRange.
func ParseStoredRange(s string) int {
	r, err := strconv.Atoi(s)
	if err != nil || ValidateRange(r) != nil {
		return DefaultRange
	}
	return r
}

// EncodePackages converts an assignment map into its JSON object form.
func EncodePackages(m map[PackageNumber]Zone) map[string]string {
	out := make(map[string]string, len(m))
	for n, z := range m {
		out[n.String()] = string(z)
	}
	return out
}

// EncodeDelivered converts delivered numbers into their JSON array form, ascending.
func EncodeDelivered(ns []PackageNumber) []string {
	sorted := slices.Sorted(slices.Values(ns))
	out := make([]string, 0, len(sorted))
	for _, n := range sorted {
		out = append(out, n.String())
	}
	return out
}
