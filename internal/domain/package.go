package domain

import (
	"slices"
	"strconv"
	"strings"
)

// PackageNumber is the label a driver writes on a package.
// Valid numbers lie in [1, packageRange] of the current route.
type PackageNumber int

func (n PackageNumber) String() string { return strconv.Itoa(int(n)) }

// ParsePackageNumber parses the string form of a package number.
// It only checks that the value is a positive integer; range checks are done by ValidateNumber.
func ParsePackageNumber(s string) (PackageNumber, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Field: "package", Value: s, Err: ErrNotANumber}
	}
	if v < 1 {
		return 0, &ValidationError{Field: "package", Value: s, Err: ErrOutOfRange}
	}
	return PackageNumber(v), nil
}

// ValidateNumber checks that n lies in [1, packageRange].
func ValidateNumber(n PackageNumber, packageRange int) error {
	if n < 1 || int(n) > packageRange {
		return &ValidationError{Field: "package", Value: n.String(), Err: ErrOutOfRange}
	}
	return nil
}

// ValidateRange checks that r lies in [MinRange, MaxRange].
func ValidateRange(r int) error {
	if r < MinRange || r > MaxRange {
		return &ValidationError{Field: "packageRange", Value: strconv.Itoa(r), Err: ErrOutOfRange}
	}
	return nil
}

// ValidateBatch checks a batch of numbers destined for one assignment:
// non-empty, every number in range, no number listed twice.
func ValidateBatch(numbers []PackageNumber, packageRange int) error {
	if len(numbers) == 0 {
		return &ValidationError{Field: "selection", Err: ErrEmptySelection}
	}
	seen := make(map[PackageNumber]struct{}, len(numbers))
	for _, n := range numbers {
		if err := ValidateNumber(n, packageRange); err != nil {
			return err
		}
		if _, dup := seen[n]; dup {
			return &ValidationError{Field: "package", Value: n.String(), Err: ErrDuplicate}
		}
		seen[n] = struct{}{}
	}
	return nil
}

// SortNumbers sorts package numbers in ascending numeric order.
func SortNumbers(numbers []PackageNumber) { slices.Sort(numbers) }
