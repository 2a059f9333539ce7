// Package persistence maps organizer state onto versioned keys of a KeyValueStore.
//
// The format version is part of every key name. Keys written by older versions are
// left alone and never migrated.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"package-organizer/internal/domain"
	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"
)

const Version = "v10"

var (
	KeyPackages     = "packages_" + Version
	KeyDelivered    = "delivered_" + Version
	KeyDarkMode     = "darkMode_" + Version
	KeyPackageRange = "packageRange_" + Version
	KeyHasVisited   = "hasVisited_" + Version
)

// Record is everything the organizer persists.
type Record struct {
	Manifest domain.Manifest
	DarkMode bool
}

// DefaultRecord is used for absent keys and after a failed load.
func DefaultRecord() Record {
	return Record{Manifest: domain.EmptyManifest(), DarkMode: true}
}

// Loaded is the outcome of Load.
type Loaded struct {
	Record
	// FirstRun is true only on the very first load against a store.
	FirstRun bool
}

type Gateway struct {
	store  ports.KeyValueStore
	layout *domain.Layout
}

func NewGateway(store ports.KeyValueStore, layout *domain.Layout) *Gateway {
	if layout == nil {
		layout = domain.DefaultLayout()
	}
	return &Gateway{store: store, layout: layout}
}

// Load reads the persisted record. It always returns a usable record: wrong-shaped
// fields fall back to their defaults silently, while unreadable storage or malformed
// JSON returns the defaults together with a *domain.LoadError.
func (g *Gateway) Load(ctx context.Context) (_ Loaded, err error) {
	defer obs.Time(ctx, "persistence.Load")(&err)

	out := Loaded{Record: DefaultRecord()}
	if g.store == nil {
		return out, &domain.LoadError{Err: errors.New("no storage configured")}
	}

	rec, readErr := g.read(ctx)

	// The first-visit flag is independent of the data fields and is recorded
	// even when they could not be read.
	first, err := g.markVisited(ctx)
	if err != nil {
		slog.WarnContext(ctx, "could not record first visit", obs.StorageKey(KeyHasVisited), obs.Error(err))
	}
	out.FirstRun = first

	if readErr != nil {
		return out, readErr
	}
	out.Record = rec
	return out, nil
}

func (g *Gateway) read(ctx context.Context) (Record, error) {
	rec := DefaultRecord()

	rawPackages, ok, err := g.store.Get(ctx, KeyPackages)
	if err != nil {
		return DefaultRecord(), &domain.LoadError{Key: KeyPackages, Err: err}
	}
	if ok {
		v, err := decodeJSON(rawPackages)
		if err != nil {
			return DefaultRecord(), &domain.LoadError{Key: KeyPackages, Err: err}
		}
		if pkgs, ok := domain.PackagesFromPayload(v, g.layout); ok {
			rec.Manifest.Packages = pkgs
		} else {
			slog.WarnContext(ctx, "stored packages are not a mapping, using empty", obs.StorageKey(KeyPackages))
		}
	}

	rawDelivered, ok, err := g.store.Get(ctx, KeyDelivered)
	if err != nil {
		return DefaultRecord(), &domain.LoadError{Key: KeyDelivered, Err: err}
	}
	if ok {
		v, err := decodeJSON(rawDelivered)
		if err != nil {
			return DefaultRecord(), &domain.LoadError{Key: KeyDelivered, Err: err}
		}
		if delivered, ok := domain.DeliveredFromPayload(v); ok {
			rec.Manifest.Delivered = delivered
		} else {
			slog.WarnContext(ctx, "stored delivered set is not a sequence, using empty", obs.StorageKey(KeyDelivered))
		}
	}

	rawDark, ok, err := g.store.Get(ctx, KeyDarkMode)
	if err != nil {
		return DefaultRecord(), &domain.LoadError{Key: KeyDarkMode, Err: err}
	}
	if ok {
		if on, err := strconv.ParseBool(rawDark); err == nil {
			rec.DarkMode = on
		}
	}

	rawRange, ok, err := g.store.Get(ctx, KeyPackageRange)
	if err != nil {
		return DefaultRecord(), &domain.LoadError{Key: KeyPackageRange, Err: err}
	}
	if ok {
		rec.Manifest.PackageRange = domain.ParseStoredRange(rawRange)
	}

	return rec, nil
}

// markVisited sets the write-once first-visit flag. Returns true if it was unset.
func (g *Gateway) markVisited(ctx context.Context) (bool, error) {
	_, ok, err := g.store.Get(ctx, KeyHasVisited)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := g.store.Set(ctx, KeyHasVisited, "true"); err != nil {
		return true, err
	}
	return true, nil
}

// Save writes all four fields. Failures come back as *domain.SaveError with the
// quota case distinguished. Fields are not written transactionally.
func (g *Gateway) Save(ctx context.Context, rec Record) (err error) {
	defer obs.Time(ctx, "persistence.Save")(&err)

	if g.store == nil {
		return &domain.SaveError{Kind: domain.SaveOther, Err: errors.New("no storage configured")}
	}

	packages, err := json.Marshal(domain.EncodePackages(rec.Manifest.Packages))
	if err != nil {
		return &domain.SaveError{Kind: domain.SaveOther, Key: KeyPackages, Err: err}
	}
	delivered, err := json.Marshal(domain.EncodeDelivered(rec.Manifest.Delivered))
	if err != nil {
		return &domain.SaveError{Kind: domain.SaveOther, Key: KeyDelivered, Err: err}
	}

	fields := []struct {
		key   string
		value string
	}{
		{KeyPackages, string(packages)},
		{KeyDelivered, string(delivered)},
		{KeyDarkMode, strconv.FormatBool(rec.DarkMode)},
		{KeyPackageRange, strconv.Itoa(rec.Manifest.PackageRange)},
	}

	for _, f := range fields {
		if err := g.store.Set(ctx, f.key, f.value); err != nil {
			return classifySaveError(f.key, err)
		}
	}

	return nil
}

func classifySaveError(key string, err error) *domain.SaveError {
	kind := domain.SaveOther
	if errors.Is(err, ports.ErrQuotaExceeded) {
		kind = domain.SaveQuotaExceeded
	}
	return &domain.SaveError{Kind: kind, Key: key, Err: err}
}

func decodeJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return v, nil
}
