package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weekplan/internal/model"
	"weekplan/internal/timewin"
)

func testWindow() timewin.Window {
	// Week of Mon 2026-01-05 .. Sun 2026-01-11.
	return timewin.FromReference(time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC), timewin.FirstDayMonday)
}

func act(id string, prov model.Provenance, start time.Time, d time.Duration) model.Activity {
	return model.Activity{
		ID:         id,
		Title:      id,
		Start:      start,
		End:        start.Add(d),
		Category:   model.CategoryTasks,
		Provenance: prov,
	}
}

func TestWindowFilterByStartDay(t *testing.T) {
	w := testWindow()

	inside := act("in", model.ProvenanceRemote, w.Start.Add(9*time.Hour), time.Hour)
	before := act("before", model.ProvenanceRemote, w.Start.AddDate(0, 0, -2), time.Hour)
	after := act("after", model.ProvenanceRemote, w.End.AddDate(0, 0, 1), time.Hour)

	got := Merged(w, nil, []model.Activity{before, inside, after})
	require.Len(t, got, 1)
	require.Equal(t, "in", got[0].ID)
}

func TestStartsBeforeEndsInsideIsExcluded(t *testing.T) {
	w := testWindow()

	// Starts Sunday 23:00 before the window, ends Monday 01:00 inside it.
	straddler := act("straddle", model.ProvenanceRemote, w.Start.Add(-time.Hour), 2*time.Hour)
	got := Merged(w, nil, []model.Activity{straddler})
	require.Empty(t, got)
}

func TestStartExactlyAtWindowStartIncluded(t *testing.T) {
	w := testWindow()
	boundary := act("boundary", model.ProvenanceRemote, w.Start, time.Hour)
	got := Merged(w, nil, []model.Activity{boundary})
	require.Len(t, got, 1)
}

func TestRemoteSupersedesLocalDraftOnMatchingID(t *testing.T) {
	w := testWindow()
	start := w.Start.Add(10 * time.Hour)

	draft := act("shared", model.ProvenanceLocalDraft, start, time.Hour)
	confirmed := act("shared", model.ProvenanceRemote, start, time.Hour)
	confirmed.Title = "confirmed copy"

	got := Merged(w, []model.Activity{draft}, []model.Activity{confirmed})
	require.Len(t, got, 1)
	require.Equal(t, model.ProvenanceRemote, got[0].Provenance)
	require.Equal(t, "confirmed copy", got[0].Title)
}

func TestLocalOnlyWhenRemoteEmpty(t *testing.T) {
	w := testWindow()
	d1 := act("d1", model.ProvenanceLocalDraft, w.Start.Add(9*time.Hour), time.Hour)
	d2 := act("d2", model.ProvenanceLocalDraft, w.Start.Add(11*time.Hour), time.Hour)

	got := Merged(w, []model.Activity{d1, d2}, nil)
	require.Len(t, got, 2)
}

func TestOrderingByStartThenID(t *testing.T) {
	w := testWindow()
	ts := w.Start.Add(9 * time.Hour)

	b := act("b", model.ProvenanceRemote, ts, time.Hour)
	a := act("a", model.ProvenanceRemote, ts, time.Hour)
	later := act("later", model.ProvenanceLocalDraft, ts.Add(time.Hour), time.Hour)

	got := Merged(w, []model.Activity{later}, []model.Activity{b, a})
	require.Equal(t, []string{"a", "b", "later"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
