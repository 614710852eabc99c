package remote

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weekplan/internal/model"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:ev-1
SUMMARY:Morning Focus
DESCRIPTION:Duration: 2h\nType: focus
DTSTART:20260105T090000Z
DTEND:20260105T110000Z
END:VEVENT
BEGIN:VEVENT
UID:ev-2
SUMMARY:Team Sync
CATEGORIES:tasks
DTSTART:20260106T140000Z
DTEND:20260106T153000Z
END:VEVENT
BEGIN:VEVENT
SUMMARY:No UID, gets skipped
DTSTART:20260107T100000Z
DTEND:20260107T110000Z
END:VEVENT
END:VCALENDAR
`

func TestParseCalendar(t *testing.T) {
	recs, err := ParseCalendar([]byte(sampleICS), time.UTC)
	require.NoError(t, err)
	require.Len(t, recs, 2) // the UID-less event is skipped, not fatal

	require.Equal(t, "ev-1", recs[0].ID)
	require.Equal(t, "Morning Focus", recs[0].Title)
	// Category comes from the "Type: focus" description convention.
	require.Equal(t, "focus", recs[0].Category)
	require.Equal(t, "2026-01-05T09:00:00Z", recs[0].Start)
	require.Equal(t, "2026-01-05T11:00:00Z", recs[0].End)

	// Explicit CATEGORIES wins over description parsing.
	require.Equal(t, "ev-2", recs[1].ID)
	require.Equal(t, "tasks", recs[1].Category)
}

func TestParseCalendarEmptyBody(t *testing.T) {
	_, err := ParseCalendar(nil, time.UTC)
	require.Error(t, err)
}

func TestSerializeRecordRoundTrips(t *testing.T) {
	rec := validRecord()
	body, err := SerializeRecord(rec, time.UTC)
	require.NoError(t, err)

	s := string(body)
	require.True(t, strings.Contains(s, "UID:local-1"))
	require.True(t, strings.Contains(s, "SUMMARY:Deep Work"))

	parsed, err := ParseCalendar(body, time.UTC)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	require.Equal(t, "local-1", parsed[0].ID)
	require.Equal(t, "target", parsed[0].Category)
	require.Equal(t, rec.Start, parsed[0].Start)
	require.Equal(t, rec.End, parsed[0].End)
}

func TestSerializeRecordRejectsBadTimestamps(t *testing.T) {
	rec := validRecord()
	rec.Start = "yesterday-ish"
	_, err := SerializeRecord(rec, time.UTC)
	require.Error(t, err)
}

func validRecord() model.RawRecord {
	return model.RawRecord{
		ID:          "local-1",
		Title:       "Deep Work",
		Start:       "2026-01-05T09:00:00Z",
		End:         "2026-01-05T11:00:00Z",
		Category:    "target",
		Description: "Duration: 2h\nType: target",
	}
}
