// Package engine coordinates the planner's derived views and mutations.
// It owns no durable activity state: the remote provider is the system of
// record, local drafts bridge the optimistic-write gap, and everything else
// (merged collection, totals, grid) is recomputed wholesale whenever an
// input changes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"weekplan/internal/aggregate"
	"weekplan/internal/applog"
	"weekplan/internal/drafts"
	"weekplan/internal/layout"
	"weekplan/internal/merge"
	"weekplan/internal/model"
	"weekplan/internal/normalize"
	"weekplan/internal/observability"
	"weekplan/internal/remote"
	"weekplan/internal/timewin"
)

// ErrWriteFailed marks a create or delete whose remote write did not
// complete. It is the only error class surfaced to callers: the UI needs to
// offer retry-or-abandon. The optimistic local state is left intact.
var ErrWriteFailed = errors.New("remote write failed")

// Config holds the engine's fixed conventions.
type Config struct {
	FirstDay          timewin.FirstDay
	Location          *time.Location
	WeeklyBudgetHours float64
	StartHour         int
	EndHour           int
	Now               func() time.Time // injectable for tests
}

func (c *Config) normalize() {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.WeeklyBudgetHours <= 0 {
		c.WeeklyBudgetHours = aggregate.DefaultWeeklyBudgetHours
	}
	if c.EndHour <= c.StartHour {
		c.StartHour, c.EndHour = layout.DefaultStartHour, layout.DefaultEndHour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Snapshot is one completed derivation: the merged collection and the views
// computed from it, all against the same window. Readers only ever observe
// complete snapshots, never a torn intermediate state.
type Snapshot struct {
	Window     timewin.Window
	Activities []model.Activity
	Totals     aggregate.Totals
	Grid       layout.Grid
	RemoteOK   bool
	ComputedAt time.Time
}

// Engine is the mutation coordinator and snapshot holder.
//
// A nil provider means no remote source is configured; the engine then runs
// purely on local drafts and treats every create/delete as locally complete.
type Engine struct {
	cfg      Config
	provider remote.Provider
	store    *drafts.Store

	mu   sync.RWMutex
	gen  uint64
	ref  time.Time
	snap Snapshot
}

// New builds an Engine anchored to the current week.
func New(cfg Config, provider remote.Provider) *Engine {
	cfg.normalize()
	e := &Engine{
		cfg:      cfg,
		provider: provider,
		store:    drafts.NewStore(),
	}
	e.ref = cfg.Now().In(cfg.Location)
	return e
}

// Snapshot returns the latest completed derivation.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// ReferenceDate returns the date the displayed window is anchored to.
func (e *Engine) ReferenceDate() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ref
}

// SetReferenceDate moves the displayed window to the week containing t and
// re-derives all views. If a remote fetch for a previous window is still in
// flight, its late result is discarded: only the newest requested window
// may install a snapshot (last-request-wins).
func (e *Engine) SetReferenceDate(ctx context.Context, t time.Time) Snapshot {
	e.mu.Lock()
	e.ref = t.In(e.cfg.Location)
	e.gen++
	gen, ref := e.gen, e.ref
	e.mu.Unlock()

	e.derive(ctx, gen, ref)
	return e.Snapshot()
}

// ShiftWeeks moves the window by whole weeks relative to the current
// reference date.
func (e *Engine) ShiftWeeks(ctx context.Context, weeks int) Snapshot {
	e.mu.RLock()
	ref := e.ref
	e.mu.RUnlock()
	return e.SetReferenceDate(ctx, ref.AddDate(0, 0, 7*weeks))
}

// Refresh re-fetches and re-derives the current window.
func (e *Engine) Refresh(ctx context.Context) Snapshot {
	e.mu.Lock()
	e.gen++
	gen, ref := e.gen, e.ref
	e.mu.Unlock()

	e.derive(ctx, gen, ref)
	return e.Snapshot()
}

// derive runs the fixed pipeline for one window generation: re-fetch and
// re-merge, then aggregation, then layout. The result installs only if gen
// is still the latest, so a snapshot can never regress to a superseded
// window.
func (e *Engine) derive(ctx context.Context, gen uint64, ref time.Time) {
	began := e.cfg.Now()
	w := timewin.FromReference(ref, e.cfg.FirstDay)

	var remoteActs []model.Activity
	remoteOK := e.provider == nil
	if e.provider != nil {
		raws, err := e.provider.Fetch(ctx, w)
		observability.RecordRemoteFetch(err == nil)
		if err != nil {
			// Degrade to the local-only view; the next window change or
			// mutation re-attempts the fetch.
			applog.Warn("remote fetch failed, degrading to local drafts",
				"reason", err.Error(), "window_start", w.Start.Format(time.RFC3339))
		} else {
			pass := normalize.NewPass(model.ProvenanceRemote, e.cfg.Location)
			remoteActs = pass.Records(raws)
			remoteOK = true
		}
	}

	if remoteOK && e.provider != nil {
		ids := make(map[string]struct{}, len(remoteActs))
		for _, act := range remoteActs {
			ids[act.ID] = struct{}{}
		}
		e.store.PruneConfirmed(ids)
	}

	merged := merge.Merged(w, e.store.Activities(), remoteActs)
	totals := aggregate.Compute(w, merged, e.cfg.WeeklyBudgetHours)
	grid := layout.Build(w, e.cfg.StartHour, e.cfg.EndHour, merged, e.cfg.Now().In(e.cfg.Location))

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		applog.Debug("discarding superseded derivation", "gen", gen, "latest", e.gen)
		return
	}
	e.snap = Snapshot{
		Window:     w,
		Activities: merged,
		Totals:     totals,
		Grid:       grid,
		RemoteOK:   remoteOK,
		ComputedAt: e.cfg.Now(),
	}
	observability.RecordDerivation(e.cfg.Now().Sub(began), e.snap.ComputedAt)
}

// DraftInput mirrors the task creation form. Either Start/End carry
// combined RFC3339 timestamps, or Date + StartTime + DurationHours describe
// the slot.
type DraftInput struct {
	Title         string
	Category      string
	Description   string
	Start         string // RFC3339
	End           string // RFC3339
	Date          string // 2006-01-02
	StartTime     string // 15:04
	DurationHours float64
}

// Create normalizes the draft, makes it immediately visible as an
// optimistic local entry, then writes it through to the remote provider.
//
// On a confirmed write the views are re-derived so the remote copy
// supersedes the draft. On failure the draft stays visible in state Failed
// and the error (wrapping ErrWriteFailed) is surfaced for the UI to act on.
func (e *Engine) Create(ctx context.Context, in DraftInput) (model.Activity, error) {
	raw := model.RawRecord{
		Title:    in.Title,
		Category: in.Category,
	}
	if in.Start != "" || in.End != "" {
		raw.Start, raw.End = in.Start, in.End
	} else {
		start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.StartTime, e.cfg.Location)
		if err != nil {
			return model.Activity{}, fmt.Errorf("%w: bad date/time %q %q",
				normalize.ErrMalformedActivity, in.Date, in.StartTime)
		}
		end := start.Add(time.Duration(in.DurationHours * float64(time.Hour)))
		raw.Start = start.Format(time.RFC3339)
		raw.End = end.Format(time.RFC3339)
	}

	pass := normalize.NewPass(model.ProvenanceLocalDraft, e.cfg.Location)
	act, err := pass.Record(raw)
	if err != nil {
		return model.Activity{}, err
	}
	act.ID = "local-" + uuid.NewString()
	act.Description = draftDescription(in.Description, act)

	// Optimistic: the draft is visible before the remote write settles.
	e.store.Add(act)
	e.Refresh(ctx)

	if e.provider == nil {
		e.store.MarkConfirmed(act.ID)
		observability.RecordMutation("create", true)
		return act, nil
	}

	wire := model.RawRecord{
		ID:          act.ID,
		Title:       act.Title,
		Start:       act.Start.Format(time.RFC3339),
		End:         act.End.Format(time.RFC3339),
		Category:    string(act.Category),
		Description: act.Description,
	}
	if _, err := e.provider.Create(ctx, wire); err != nil {
		e.store.MarkFailed(act.ID)
		observability.RecordMutation("create", false)
		applog.Error("remote create failed, draft kept visible", err, "id", act.ID)
		return act, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	e.store.MarkConfirmed(act.ID)
	observability.RecordMutation("create", true)
	// Re-merge so the confirmed remote copy supersedes the draft.
	e.Refresh(ctx)
	return act, nil
}

// Delete removes an activity by id. A remote "not found" maps to the same
// outcome as a successful delete: the activity is already gone, so a second
// Delete with the same id is a no-op, not an error.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if e.provider != nil {
		if err := e.provider.Delete(ctx, id); err != nil && !errors.Is(err, remote.ErrNotFound) {
			observability.RecordMutation("delete", false)
			applog.Error("remote delete failed, activity kept visible", err, "id", id)
			return fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
	}
	e.store.Remove(id)
	observability.RecordMutation("delete", true)
	e.Refresh(ctx)
	return nil
}

// DraftState exposes the lifecycle state of a local draft.
func (e *Engine) DraftState(id string) (model.DraftState, bool) {
	return e.store.State(id)
}

// SeedSampleWeek adds three illustrative activities to the current week.
// Intended for first runs without a configured remote source.
func (e *Engine) SeedSampleWeek(ctx context.Context) {
	w := timewin.FromReference(e.cfg.Now().In(e.cfg.Location), e.cfg.FirstDay)
	samples := []model.Activity{
		sample("sample-1", "Morning Focus", model.CategoryFocus, w.Start, 0, 9, 0, 2*time.Hour),
		sample("sample-2", "Task Review", model.CategoryTasks, w.Start, 1, 14, 0, 90*time.Minute),
		sample("sample-3", "Target Work", model.CategoryTarget, w.Start, 2, 10, 0, 2*time.Hour),
	}
	for _, act := range samples {
		e.store.Add(act)
	}
	e.Refresh(ctx)
}

func sample(id, title string, cat model.Category, weekStart time.Time, day, hour, min int, d time.Duration) model.Activity {
	start := weekStart.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	return model.Activity{
		ID:         id,
		Title:      title,
		Start:      start,
		End:        start.Add(d),
		Category:   cat,
		Provenance: model.ProvenanceLocalDraft,
	}
}

// draftDescription appends the producer convention so round-tripped events
// re-classify on the way back in.
func draftDescription(userText string, act model.Activity) string {
	system := fmt.Sprintf("Duration: %gh\nType: %s", act.Hours(), act.Category)
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return system
	}
	return userText + "\n\n" + system
}
