package remote

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"weekplan/internal/applog"
	"weekplan/internal/model"
)

// categoryPattern matches the producer convention of tagging events through
// free text, e.g. "Type: focus" inside the description. Extracting it here,
// at the producer boundary, keeps the normalizer consuming a plain typed
// category field.
var categoryPattern = regexp.MustCompile(`(?i)Type:\s*(focus|tasks|target|other)`)

// ParseCalendar parses an ICS payload into raw records. Individual VEVENTs
// that cannot be mapped are logged and skipped; only an unreadable calendar
// is an error.
func ParseCalendar(body []byte, loc *time.Location) ([]model.RawRecord, error) {
	if len(body) == 0 {
		return nil, errors.New("empty calendar body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	records := make([]model.RawRecord, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		rec, perr := recordFromVEvent(ve, loc)
		if perr != nil {
			applog.Warn("skipping unmappable vevent", "reason", perr.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromVEvent(ve *ical.VEvent, loc *time.Location) (model.RawRecord, error) {
	var rec model.RawRecord

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return rec, errors.New("missing UID")
	}
	rec.ID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		rec.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		rec.Description = p.Value
	}

	// The library resolves VTIMEZONE/TZID handling for us.
	start, err := ve.GetStartAt()
	if err != nil {
		return rec, fmt.Errorf("uid %s: %w", rec.ID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return rec, fmt.Errorf("uid %s: %w", rec.ID, err)
	}
	rec.Start = start.In(loc).Format(time.RFC3339)
	rec.End = end.In(loc).Format(time.RFC3339)

	rec.Category = extractCategory(ve, rec.Description)
	return rec, nil
}

// extractCategory prefers an explicit CATEGORIES property and falls back to
// the "Type: <category>" convention embedded in descriptions. The returned
// tag is raw; the normalizer still owns the total repair to the closed set.
func extractCategory(ve *ical.VEvent, description string) string {
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil && p.Value != "" {
		return strings.TrimSpace(strings.Split(p.Value, ",")[0])
	}
	if m := categoryPattern.FindStringSubmatch(description); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// SerializeRecord renders a raw record as a single-VEVENT calendar for the
// write path. Start/End must be combined RFC3339 timestamps.
func SerializeRecord(rec model.RawRecord, loc *time.Location) ([]byte, error) {
	start, err := time.Parse(time.RFC3339, rec.Start)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: bad start: %v", rec.ID, err)
	}
	end, err := time.Parse(time.RFC3339, rec.End)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: bad end: %v", rec.ID, err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodRequest)
	cal.SetProductId("-//weekplan//EN")

	ve := cal.AddEvent(rec.ID)
	ve.SetDtStampTime(time.Now().UTC())
	ve.SetStartAt(start.In(loc))
	ve.SetEndAt(end.In(loc))
	ve.SetSummary(rec.Title)
	if rec.Description != "" {
		ve.SetDescription(rec.Description)
	}
	if rec.Category != "" {
		ve.SetProperty(ical.ComponentPropertyCategories, rec.Category)
	}

	return []byte(cal.Serialize()), nil
}
