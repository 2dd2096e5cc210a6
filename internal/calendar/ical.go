// Package calendar provides iCal feed fetching, reservation reconciliation,
// and the periodic sync scheduler.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// CanonicalEvent is the normalized representation of one VEVENT pulled from
// a channel feed. It lives only for the duration of a reconciliation pass.
type CanonicalEvent struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time

	// SyntheticUID marks events whose source VEVENT carried no UID. The
	// generated UID keeps the event deduplicable within this run, but it is
	// not stable across fetches: the same feed entry gets a fresh UID next
	// time. That is an accepted gap in the source data, not something to
	// paper over with a content hash the provider does not guarantee.
	SyntheticUID bool
}

// Fetcher downloads and parses iCal feeds into canonical events.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a feed fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAndParse downloads an iCal feed from a URL and parses it.
// A non-2xx response or an unparsable document is returned as an error;
// individual malformed VEVENTs are skipped, not fatal.
func (f *Fetcher) FetchAndParse(ctx context.Context, url string) ([]CanonicalEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return f.Parse(resp.Body)
}

// Parse reads an iCalendar document and extracts canonical events.
// Only UID, SUMMARY, DTSTART and DTEND are consumed.
func (f *Fetcher) Parse(r io.Reader) ([]CanonicalEvent, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	var events []CanonicalEvent
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve)
		if !ok {
			// Channels occasionally emit entries without resolvable dates
			// (malformed all-day or floating-time entries). Skip the entry,
			// keep the rest of the feed.
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

// parseVEvent extracts a canonical event from one VEVENT. It returns
// ok=false when the event has no resolvable start or end instant.
func parseVEvent(ve *ics.VEvent) (CanonicalEvent, bool) {
	var ev CanonicalEvent

	start, err := ve.GetStartAt()
	if err != nil {
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return ev, false
		}
	}

	end, err := ve.GetEndAt()
	if err != nil {
		end, err = ve.GetAllDayEndAt()
		if err != nil {
			return ev, false
		}
	}

	ev.Start = start
	ev.End = end

	if p := ve.GetProperty(ics.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		ev.UID = p.Value
	} else {
		ev.UID = uuid.NewString()
		ev.SyntheticUID = true
	}

	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}

	return ev, true
}
