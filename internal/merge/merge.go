// Package merge combines the local-draft and remote collections into the one
// ordered collection the derived views are computed from.
package merge

import (
	"sort"

	"weekplan/internal/model"
	"weekplan/internal/timewin"
)

// Merged returns the ordered union of local and remote activities whose
// start falls on a calendar day inside the window.
//
// Policy notes, each mirrored by a test:
//
//   - An activity that starts before the window but ends inside it is
//     excluded. The grid renders only same-day-start activities; this is a
//     deliberate, documented choice, not an oversight.
//   - When a remote activity and a local draft share an id, the remote copy
//     wins: once a write-back is confirmed the remote source is
//     authoritative. No other cross-source de-duplication is attempted.
//
// Degradation when the remote source is unreachable is the caller's concern:
// it simply passes an empty remote collection.
func Merged(w timewin.Window, local, remote []model.Activity) []model.Activity {
	out := make([]model.Activity, 0, len(local)+len(remote))

	remoteIDs := make(map[string]struct{}, len(remote))
	for _, act := range remote {
		remoteIDs[act.ID] = struct{}{}
		if w.ContainsDay(act.Start) {
			out = append(out, act)
		}
	}

	for _, act := range local {
		if _, superseded := remoteIDs[act.ID]; superseded {
			continue
		}
		if w.ContainsDay(act.Start) {
			out = append(out, act)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
