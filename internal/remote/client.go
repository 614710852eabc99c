package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weekplan/internal/applog"
	"weekplan/internal/model"
	"weekplan/internal/timewin"
)

// Client is the HTTP implementation of Provider for an ICS-speaking
// calendar endpoint:
//
//	GET    {base}/events?start=...&end=...  -> text/calendar
//	PUT    {base}/events/{id}               <- text/calendar (single VEVENT)
//	DELETE {base}/events/{id}
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	loc     *time.Location
}

// NewClient builds a Client for the given endpoint. token, if non-empty, is
// sent as a bearer token. loc is the display location used when rendering
// fetched timestamps; nil means time.Local.
func NewClient(baseURL, token string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		loc: loc,
	}
}

// Fetch retrieves and parses the provider's events for the window.
func (c *Client) Fetch(ctx context.Context, w timewin.Window) ([]model.RawRecord, error) {
	q := url.Values{}
	q.Set("start", w.Start.Format(time.RFC3339))
	// Window end is the first instant of the last day; the provider query is
	// exclusive, so ask up to the following midnight.
	q.Set("end", w.End.AddDate(0, 0, 1).Format(time.RFC3339))

	endpoint := c.baseURL + "/events?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "text/calendar")

	applog.Info("remote fetch start", "url", redactURL(endpoint),
		"window_start", w.Start.Format(time.RFC3339))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrSourceUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	records, err := ParseCalendar(body, c.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	applog.Info("remote fetch success", "url", redactURL(endpoint), "record_count", len(records))
	return records, nil
}

// Create writes a record through as a single-VEVENT calendar.
func (c *Client) Create(ctx context.Context, rec model.RawRecord) (model.RawRecord, error) {
	if rec.ID == "" {
		return model.RawRecord{}, fmt.Errorf("create: record id is empty")
	}

	body, err := SerializeRecord(rec, c.loc)
	if err != nil {
		return model.RawRecord{}, err
	}

	endpoint := c.baseURL + "/events/" + url.PathEscape(rec.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return model.RawRecord{}, err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.RawRecord{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		applog.Info("remote create success", "id", rec.ID)
		return rec, nil
	default:
		return model.RawRecord{}, fmt.Errorf("create %s: unexpected status %s", rec.ID, resp.Status)
	}
}

// Delete removes a record by id. 404/410 map to ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/events/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		applog.Info("remote delete success", "id", id)
		return nil
	case http.StatusNotFound, http.StatusGone:
		return ErrNotFound
	default:
		return fmt.Errorf("delete %s: unexpected status %s", id, resp.Status)
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// redactURL hides query strings and paths of provider URLs in logs.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "remote://...(redacted)"
	}
	rest := u[i+3:]
	j := strings.IndexByte(rest, '/')
	if j == -1 {
		return u
	}
	return u[:i+3+j] + redactedSuffix
}
