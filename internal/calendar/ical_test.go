package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ics joins lines with CRLF as the iCalendar wire format requires.
func icsDoc(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func airbnbFeed() string {
	return icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN",
		"BEGIN:VEVENT",
		"UID:evt-1@airbnb.com",
		"SUMMARY:Jane Smith (HMABCDE)",
		"DTSTART:20260401T150000Z",
		"DTEND:20260405T110000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:evt-2@airbnb.com",
		"SUMMARY:Not available",
		"DTSTART;VALUE=DATE:20260410",
		"DTEND;VALUE=DATE:20260412",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

func TestParse_CanonicalEvents(t *testing.T) {
	fetcher := NewFetcher(0)

	events, err := fetcher.Parse(strings.NewReader(airbnbFeed()))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "evt-1@airbnb.com", events[0].UID)
	assert.Equal(t, "Jane Smith (HMABCDE)", events[0].Summary)
	assert.True(t, events[0].Start.Equal(time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)))
	assert.True(t, events[0].End.Equal(time.Date(2026, 4, 5, 11, 0, 0, 0, time.UTC)))
	assert.False(t, events[0].SyntheticUID)

	// All-day entries resolve through the DATE value form.
	assert.Equal(t, "evt-2@airbnb.com", events[1].UID)
	assert.Equal(t, 10, events[1].Start.Day())
	assert.Equal(t, 12, events[1].End.Day())
}

func TestParse_SkipsEventWithoutEnd(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//Test//EN",
		"BEGIN:VEVENT",
		"UID:broken@vrbo.com",
		"SUMMARY:Malformed entry",
		"DTSTART:20260401T150000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:good@vrbo.com",
		"SUMMARY:Valid entry",
		"DTSTART:20260420T150000Z",
		"DTEND:20260422T110000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	fetcher := NewFetcher(0)
	events, err := fetcher.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "good@vrbo.com", events[0].UID)
}

func TestParse_MissingUIDGetsSyntheticOne(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//Test//EN",
		"BEGIN:VEVENT",
		"SUMMARY:No UID here",
		"DTSTART:20260401T150000Z",
		"DTEND:20260403T110000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	fetcher := NewFetcher(0)
	events, err := fetcher.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].UID)
	assert.True(t, events[0].SyntheticUID)
}

func TestParse_UnparsableDocumentFails(t *testing.T) {
	fetcher := NewFetcher(0)

	_, err := fetcher.Parse(strings.NewReader("<html>this is not a calendar</html>"))
	assert.Error(t, err)
}

func TestFetchAndParse_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	fetcher := NewFetcher(2 * time.Second)
	_, err := fetcher.FetchAndParse(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "410")
}

func TestFetchAndParse_HappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(airbnbFeed()))
	}))
	defer server.Close()

	fetcher := NewFetcher(2 * time.Second)
	events, err := fetcher.FetchAndParse(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFetchAndParse_UnreachableHost(t *testing.T) {
	fetcher := NewFetcher(500 * time.Millisecond)

	_, err := fetcher.FetchAndParse(context.Background(), "http://127.0.0.1:1/calendar.ics")
	assert.Error(t, err)
}
