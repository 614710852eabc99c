package model

import (
	"strings"
	"time"
)

// Category classifies an activity for time-budget aggregation. The set is
// closed: everything outside it collapses to CategoryOther at normalization.
type Category string

const (
	CategoryFocus  Category = "focus"
	CategoryTasks  Category = "tasks"
	CategoryTarget Category = "target"
	CategoryOther  Category = "other"
)

// Categories lists the closed category set in display order.
var Categories = []Category{CategoryFocus, CategoryTasks, CategoryTarget, CategoryOther}

// ParseCategory coerces an arbitrary tag into the closed category set.
// Unknown, mis-cased or empty values map to CategoryOther. This is a total
// repair, never an error: upstream producers (including records derived from
// free text) are expected to occasionally omit or mis-tag the field.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryFocus:
		return CategoryFocus
	case CategoryTasks:
		return CategoryTasks
	case CategoryTarget:
		return CategoryTarget
	default:
		return CategoryOther
	}
}

// Provenance records which source produced an activity. It only decides
// write-back targets; aggregation and layout never branch on it.
type Provenance string

const (
	ProvenanceLocalDraft Provenance = "local-draft"
	ProvenanceRemote     Provenance = "remote"
)

// DraftState tracks the optimistic-write lifecycle of a local draft.
// Transitions are driven only by the mutation coordinator:
// Draft -> Confirmed on a successful remote write, Draft -> Failed otherwise.
type DraftState string

const (
	DraftStatePending   DraftState = "draft"
	DraftStateConfirmed DraftState = "confirmed"
	DraftStateFailed    DraftState = "failed"
)

// Activity is the canonical unit handled by the engine. The engine owns no
// durable state for it; the remote source is the system of record.
type Activity struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Category    Category   `json:"category"`
	Description string     `json:"description,omitempty"`
	Provenance  Provenance `json:"provenance"`
}

// Duration returns End - Start. Normalization guarantees it is positive for
// every activity that reaches the merged collection.
func (a Activity) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Hours returns the activity duration in hours as a real number.
func (a Activity) Hours() float64 {
	return a.End.Sub(a.Start).Hours()
}

// RawRecord is the record shape produced by any source before normalization.
// Start/End carry a combined RFC3339 timestamp; alternatively a source may
// supply Date plus StartTime/EndTime as separate fields. The normalizer
// accepts either form.
type RawRecord struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Start       string `json:"start,omitempty"`      // RFC3339
	End         string `json:"end,omitempty"`        // RFC3339
	Date        string `json:"date,omitempty"`       // 2006-01-02
	StartTime   string `json:"start_time,omitempty"` // 15:04
	EndTime     string `json:"end_time,omitempty"`   // 15:04
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}
