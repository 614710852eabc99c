// Package normalize converts raw source records into canonical activities.
// A raw record either becomes exactly one Activity or is discarded; nothing
// here ever aborts a merge.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"weekplan/internal/applog"
	"weekplan/internal/model"
)

// ErrMalformedActivity marks a record whose end is not strictly after its
// start (or whose temporal fields cannot be parsed at all). Such records are
// discarded rather than repaired: duration is divided into downstream, and a
// non-positive duration would corrupt aggregation.
var ErrMalformedActivity = errors.New("malformed activity")

const defaultTitle = "Untitled"

// Pass normalizes the records of one source within a single merge. It owns
// the id-synthesis counter, so synthesized ids never collide within a pass.
type Pass struct {
	prov model.Provenance
	loc  *time.Location
	seq  int
}

// NewPass creates a normalization pass for one source. loc is the display
// location; nil means time.Local.
func NewPass(prov model.Provenance, loc *time.Location) *Pass {
	if loc == nil {
		loc = time.Local
	}
	return &Pass{prov: prov, loc: loc}
}

// Record converts one raw record into a canonical Activity.
//
//   - Category repair is total: anything outside the closed set, including
//     absent, becomes CategoryOther.
//   - A record whose end is not strictly after its start yields
//     ErrMalformedActivity.
//   - A record without an id gets one synthesized from the provenance tag
//     and a monotonic counter, deterministic within this pass.
func (p *Pass) Record(raw model.RawRecord) (model.Activity, error) {
	start, err := p.parseWhen(raw.Start, raw.Date, raw.StartTime)
	if err != nil {
		return model.Activity{}, fmt.Errorf("%w: start: %v", ErrMalformedActivity, err)
	}
	end, err := p.parseWhen(raw.End, raw.Date, raw.EndTime)
	if err != nil {
		return model.Activity{}, fmt.Errorf("%w: end: %v", ErrMalformedActivity, err)
	}
	if !end.After(start) {
		return model.Activity{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrMalformedActivity, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	id := raw.ID
	if id == "" {
		p.seq++
		id = fmt.Sprintf("%s-%d", p.prov, p.seq)
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = defaultTitle
	}

	return model.Activity{
		ID:          id,
		Title:       title,
		Start:       start,
		End:         end,
		Category:    model.ParseCategory(raw.Category),
		Description: raw.Description,
		Provenance:  p.prov,
	}, nil
}

// Records normalizes a batch, dropping malformed records with a log line.
func (p *Pass) Records(raws []model.RawRecord) []model.Activity {
	out := make([]model.Activity, 0, len(raws))
	for _, raw := range raws {
		act, err := p.Record(raw)
		if err != nil {
			applog.Warn("dropping malformed record",
				"source", string(p.prov), "id", raw.ID, "title", raw.Title, "reason", err.Error())
			continue
		}
		out = append(out, act)
	}
	return out
}

// parseWhen resolves a "start-like"/"end-like" value: either a combined
// timestamp or a separate date + time-of-day pair.
func (p *Pass) parseWhen(combined, date, clock string) (time.Time, error) {
	if combined != "" {
		if t, err := time.Parse(time.RFC3339, combined); err == nil {
			return t.In(p.loc), nil
		}
		// Timestamps without an offset are interpreted in the display location.
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", combined, p.loc); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04", combined, p.loc); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("unparsable timestamp %q", combined)
	}

	if date == "" || clock == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable date/time pair %q %q", date, clock)
	}
	return t, nil
}
