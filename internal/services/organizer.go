package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"package-organizer/internal/codec"
	"package-organizer/internal/domain"
	"package-organizer/internal/history"
	"package-organizer/internal/persistence"
	"package-organizer/internal/platform/metrics"
	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"
	"package-organizer/internal/state"
)

type Options struct {
	Layout   *domain.Layout
	Feedback ports.Feedback
	Metrics  *metrics.Metrics
	Clock    func() time.Time
}

// Organizer is the application root. It owns the state store and handles one intent at a
// time: validate and mutate, flush to storage, fire feedback, return a fresh snapshot.
// Boundary failures (load, save, import, feedback) become notices, never panics.
type Organizer struct {
	mu       sync.Mutex
	store    *state.Store
	gateway  *persistence.Gateway
	feedback ports.Feedback
	metrics  *metrics.Metrics
	now      func() time.Time
	firstRun bool
	wg       sync.WaitGroup
}

func NewOrganizer(gateway *persistence.Gateway, opts Options) *Organizer {
	if opts.Layout == nil {
		opts.Layout = domain.DefaultLayout()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Organizer{
		store:    state.NewStore(opts.Layout),
		gateway:  gateway,
		feedback: opts.Feedback,
		metrics:  opts.Metrics,
		now:      opts.Clock,
	}
}

// Load replaces in-memory state with what storage holds.
func (o *Organizer) Load(ctx context.Context) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	loaded, err := o.gateway.Load(ctx)
	o.store.Hydrate(loaded.Manifest, loaded.DarkMode)
	o.firstRun = loaded.FirstRun

	var notices []Notice
	if err != nil {
		slog.WarnContext(ctx, "load fell back to defaults", obs.Error(err))
		o.metrics.LoadWarnings.Inc()
		notices = append(notices, noticeFor(err))
	}
	return o.result(notices, false)
}

// View returns the current snapshot without changing anything.
func (o *Organizer) View() Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result(nil, false)
}

func (o *Organizer) Select(ctx context.Context, n domain.PackageNumber) Result {
	return o.apply(ctx, "select", ports.CueSelect, false, func() error {
		return o.store.Select(n)
	}, obs.Package(int(n)))
}

func (o *Organizer) Deselect(ctx context.Context, n domain.PackageNumber) Result {
	return o.apply(ctx, "deselect", ports.CueSelect, false, func() error {
		o.store.Deselect(n)
		return nil
	}, obs.Package(int(n)))
}

func (o *Organizer) ToggleSelection(ctx context.Context, n domain.PackageNumber) Result {
	return o.apply(ctx, "toggle_selection", ports.CueSelect, false, func() error {
		_, err := o.store.ToggleSelection(n)
		return err
	}, obs.Package(int(n)))
}

func (o *Organizer) ClearSelection(ctx context.Context) Result {
	return o.apply(ctx, "clear_selection", "", false, func() error {
		o.store.ClearSelection()
		return nil
	})
}

// AssignSelection assigns every selected package to zone.
func (o *Organizer) AssignSelection(ctx context.Context, zone string) Result {
	return o.apply(ctx, "assign", ports.CueAssign, true, func() error {
		z, err := o.store.Layout().ParseZone(zone)
		if err != nil {
			return err
		}
		_, err = o.store.AssignSelection(z)
		return err
	}, obs.Zone(zone))
}

// Assign assigns an explicit batch, bypassing the selection.
func (o *Organizer) Assign(ctx context.Context, numbers []domain.PackageNumber, zone string) Result {
	return o.apply(ctx, "assign", ports.CueAssign, true, func() error {
		z, err := o.store.Layout().ParseZone(zone)
		if err != nil {
			return err
		}
		return o.store.Assign(numbers, z)
	}, obs.Zone(zone))
}

func (o *Organizer) Remove(ctx context.Context, n domain.PackageNumber) Result {
	return o.apply(ctx, "remove", ports.CueRemove, true, func() error {
		return o.store.Remove(n)
	}, obs.Package(int(n)))
}

func (o *Organizer) SetDelivered(ctx context.Context, n domain.PackageNumber, delivered bool) Result {
	return o.apply(ctx, "set_delivered", ports.CueDeliver, true, func() error {
		_, err := o.store.SetDelivered(n, delivered)
		return err
	}, obs.Package(int(n)))
}

func (o *Organizer) ToggleDelivered(ctx context.Context, n domain.PackageNumber) Result {
	return o.apply(ctx, "toggle_delivered", ports.CueDeliver, true, func() error {
		_, err := o.store.ToggleDelivered(n)
		return err
	}, obs.Package(int(n)))
}

// Undo reverts the latest change. An empty history yields an info notice.
func (o *Organizer) Undo(ctx context.Context) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.store.Undo()
	if !ok {
		o.metrics.Intents.WithLabelValues("undo", metrics.OutcomeRejected).Inc()
		return o.result([]Notice{{Level: LevelInfo, Kind: KindNothingToUndo, Message: "Nothing to undo"}}, false)
	}

	slog.DebugContext(ctx, "undo", obs.Intent(entry.Kind()))
	saveNotices := o.flush(ctx)
	o.metrics.Intents.WithLabelValues("undo", outcome(saveNotices)).Inc()
	notices := append([]Notice{{Level: LevelInfo, Kind: KindUndone, Message: undoMessage(entry)}}, saveNotices...)
	o.play(ctx, ports.CueUndo)
	return o.result(notices, false)
}

func (o *Organizer) Reset(ctx context.Context) Result {
	return o.apply(ctx, "reset", ports.CueReset, true, func() error {
		o.store.Reset()
		return nil
	})
}

func (o *Organizer) SetRange(ctx context.Context, r int) Result {
	return o.apply(ctx, "set_range", "", true, func() error {
		return o.store.SetRange(r)
	})
}

func (o *Organizer) SetDarkMode(ctx context.Context, on bool) Result {
	return o.apply(ctx, "set_dark_mode", "", true, func() error {
		o.store.SetDarkMode(on)
		return nil
	})
}

func (o *Organizer) StartDelivery(ctx context.Context) Result {
	return o.apply(ctx, "start_delivery", "", false, func() error {
		return o.store.StartDelivery()
	})
}

func (o *Organizer) StartAssigning(ctx context.Context) Result {
	return o.apply(ctx, "start_assigning", "", false, func() error {
		o.store.StartAssigning()
		return nil
	})
}

// Export renders the current data as a backup document and suggests a file name.
func (o *Organizer) Export(ctx context.Context) (doc []byte, filename string, err error) {
	defer obs.Time(ctx, "organizer.Export")(&err)

	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	doc, err = codec.Export(o.store.Manifest(), now)
	if err != nil {
		return nil, "", err
	}
	return doc, codec.ExportFilename(now), nil
}

// Import applies a backup document. A rejected document leaves state untouched;
// an accepted one is persisted immediately.
func (o *Organizer) Import(ctx context.Context, doc []byte) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	patch, err := codec.Import(doc, o.store.Layout())
	if err != nil {
		slog.WarnContext(ctx, "import rejected", obs.Error(err))
		o.metrics.Imports.WithLabelValues(metrics.OutcomeRejected).Inc()
		o.play(ctx, ports.CueError)
		return o.result([]Notice{noticeFor(err)}, true)
	}

	o.store.ReplaceManifest(patch.Apply(o.store.Manifest()))
	saveNotices := o.flush(ctx)
	o.metrics.Imports.WithLabelValues(outcome(saveNotices)).Inc()

	msg := "Backup imported"
	if patch.Empty() {
		msg = "Backup contained no usable data"
	}
	notices := append([]Notice{{Level: LevelInfo, Kind: KindImported, Message: msg}}, saveNotices...)
	return o.result(notices, false)
}

// Wait blocks until in-flight feedback has finished. Used on shutdown and in tests.
func (o *Organizer) Wait() { o.wg.Wait() }

// apply runs one intent under the lock. persist controls whether the change is flushed;
// selection and phase are not persisted.
// attrs describe the intent's arguments in logs.
func (o *Organizer) apply(ctx context.Context, intent string, cue ports.Cue, persist bool, fn func() error, attrs ...slog.Attr) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	logAttrs := append([]slog.Attr{obs.Intent(intent)}, attrs...)
	if err := fn(); err != nil {
		slog.LogAttrs(ctx, slog.LevelDebug, "intent rejected", append(logAttrs, obs.Error(err))...)
		o.metrics.Intents.WithLabelValues(intent, metrics.OutcomeRejected).Inc()
		o.play(ctx, ports.CueError)
		return o.result([]Notice{noticeFor(err)}, true)
	}
	slog.LogAttrs(ctx, slog.LevelDebug, "intent applied", logAttrs...)

	var notices []Notice
	if persist {
		notices = o.flush(ctx)
	}
	o.metrics.Intents.WithLabelValues(intent, outcome(notices)).Inc()

	res := o.result(notices, false)
	if intent == "set_delivered" || intent == "toggle_delivered" {
		if c := res.Snapshot.Counts; c.Assigned > 0 && c.Remaining == 0 {
			res.Notices = append(res.Notices, Notice{Level: LevelInfo, Kind: KindRouteComplete, Message: "All packages delivered"})
			cue = ports.CueComplete
		}
	}
	if cue != "" {
		o.play(ctx, cue)
	}
	return res
}

func (o *Organizer) flush(ctx context.Context) []Notice {
	err := o.gateway.Save(ctx, persistence.Record{
		Manifest: o.store.Manifest(),
		DarkMode: o.store.DarkMode(),
	})
	if err == nil {
		return nil
	}

	n := noticeFor(err)
	slog.WarnContext(ctx, "save failed", obs.Error(err), obs.Notice(n.Kind))
	o.metrics.SaveFailures.WithLabelValues(n.Kind).Inc()
	return []Notice{n}
}

// play fires feedback without waiting for it. Errors and panics are discarded.
func (o *Organizer) play(ctx context.Context, cue ports.Cue) {
	fb := o.feedback
	if fb == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() { _ = recover() }()
		_ = fb.Play(ctx, cue)
	}()
}

// outcome labels an accepted intent: failed when its changes could not be saved.
func outcome(saveNotices []Notice) string {
	if len(saveNotices) > 0 {
		return metrics.OutcomeFailed
	}
	return metrics.OutcomeOK
}

func undoMessage(e history.Entry) string {
	switch e := e.(type) {
	case history.Assign:
		parts := make([]string, 0, len(e.Priors))
		for _, n := range e.Numbers() {
			parts = append(parts, n.String())
		}
		return fmt.Sprintf("Undid assign of %s to %s", strings.Join(parts, ", "), e.Zone)
	case history.Remove:
		return fmt.Sprintf("Undid remove of %s from %s", e.Number, e.Zone)
	case history.Deliver:
		return fmt.Sprintf("Undid deliver of %s", e.Number)
	case history.Undeliver:
		return fmt.Sprintf("Undid undeliver of %s", e.Number)
	default:
		return "Undid " + e.Kind()
	}
}

func (o *Organizer) result(notices []Notice, rejected bool) Result {
	snap := o.store.Snapshot()
	o.metrics.Assigned.Set(float64(snap.Counts.Assigned))
	o.metrics.Delivered.Set(float64(snap.Counts.Delivered))
	return Result{
		Snapshot: snap,
		FirstRun: o.firstRun,
		Notices:  notices,
		Rejected: rejected,
	}
}
