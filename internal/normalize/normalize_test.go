package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weekplan/internal/model"
)

func validRaw() model.RawRecord {
	return model.RawRecord{
		ID:       "r1",
		Title:    "Morning Focus",
		Start:    "2026-01-05T09:00:00Z",
		End:      "2026-01-05T11:00:00Z",
		Category: "focus",
	}
}

func TestCategoryRepairIsTotal(t *testing.T) {
	cases := map[string]model.Category{
		"focus":      model.CategoryFocus,
		"Tasks":      model.CategoryTasks,
		" TARGET ":   model.CategoryTarget,
		"other":      model.CategoryOther,
		"":           model.CategoryOther,
		"deep-work":  model.CategoryOther,
		"focus-time": model.CategoryOther,
	}
	for in, want := range cases {
		p := NewPass(model.ProvenanceRemote, time.UTC)
		raw := validRaw()
		raw.Category = in
		act, err := p.Record(raw)
		require.NoError(t, err, "category %q", in)
		require.Equal(t, want, act.Category, "category %q", in)
	}
}

func TestNonPositiveDurationDiscarded(t *testing.T) {
	p := NewPass(model.ProvenanceRemote, time.UTC)

	zero := validRaw()
	zero.End = zero.Start
	_, err := p.Record(zero)
	require.ErrorIs(t, err, ErrMalformedActivity)

	negative := validRaw()
	negative.End = "2026-01-05T08:00:00Z"
	_, err = p.Record(negative)
	require.ErrorIs(t, err, ErrMalformedActivity)
}

func TestRecordsDropsMalformedAndKeepsRest(t *testing.T) {
	p := NewPass(model.ProvenanceRemote, time.UTC)
	bad := validRaw()
	bad.ID = "bad"
	bad.End = bad.Start

	acts := p.Records([]model.RawRecord{validRaw(), bad})
	require.Len(t, acts, 1)
	require.Equal(t, "r1", acts[0].ID)
}

func TestDateTimePairParsing(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	p := NewPass(model.ProvenanceLocalDraft, loc)

	act, err := p.Record(model.RawRecord{
		Title:     "Task Review",
		Date:      "2026-01-06",
		StartTime: "14:00",
		EndTime:   "15:30",
		Category:  "tasks",
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.January, 6, 14, 0, 0, 0, loc), act.Start)
	require.Equal(t, time.Date(2026, time.January, 6, 15, 30, 0, 0, loc), act.End)
	require.Equal(t, 1.5, act.Hours())
}

func TestMissingTemporalFieldsRejected(t *testing.T) {
	p := NewPass(model.ProvenanceRemote, time.UTC)
	_, err := p.Record(model.RawRecord{Title: "no times", Date: "2026-01-06"})
	require.ErrorIs(t, err, ErrMalformedActivity)
}

func TestSynthesizedIDsUniqueWithinPass(t *testing.T) {
	p := NewPass(model.ProvenanceRemote, time.UTC)

	a := validRaw()
	a.ID = ""
	b := validRaw()
	b.ID = ""

	actA, err := p.Record(a)
	require.NoError(t, err)
	actB, err := p.Record(b)
	require.NoError(t, err)

	require.NotEmpty(t, actA.ID)
	require.NotEqual(t, actA.ID, actB.ID)

	// Deterministic: a fresh pass over the same input synthesizes the same ids.
	p2 := NewPass(model.ProvenanceRemote, time.UTC)
	again, err := p2.Record(a)
	require.NoError(t, err)
	require.Equal(t, actA.ID, again.ID)
}

func TestEmptyTitleGetsPlaceholder(t *testing.T) {
	p := NewPass(model.ProvenanceRemote, time.UTC)
	raw := validRaw()
	raw.Title = "   "
	act, err := p.Record(raw)
	require.NoError(t, err)
	require.Equal(t, "Untitled", act.Title)
}

func TestProvenanceTagged(t *testing.T) {
	p := NewPass(model.ProvenanceLocalDraft, time.UTC)
	act, err := p.Record(validRaw())
	require.NoError(t, err)
	require.Equal(t, model.ProvenanceLocalDraft, act.Provenance)
}
