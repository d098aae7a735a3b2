package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// ViewCounter is the boundary to the sibling hit/view-counting service.
// The request core never touches it; only the public event endpoints do.
type ViewCounter interface {
	// RecordHit registers one endpoint hit.
	RecordHit(ctx context.Context, app, uri, clientIP string, ts time.Time) error
	// GetViews returns aggregated view counts per uri for [start, end].
	// unique toggles distinct-IP counting.
	GetViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error)
}

type hitBody struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Client talks to the stats service over HTTP.
type Client struct {
	baseURL string
	app     string
	http    *http.Client
}

func NewClient(baseURL, app string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		app:     app,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) RecordHit(ctx context.Context, app, uri, clientIP string, ts time.Time) error {
	if app == "" {
		app = c.app
	}
	body, err := json.Marshal(hitBody{
		App:       app,
		URI:       uri,
		IP:        clientIP,
		Timestamp: ts.Format(timeLayout),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("stats service: hit returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) GetViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	q := url.Values{}
	q.Set("start", start.Format(timeLayout))
	q.Set("end", end.Format(timeLayout))
	q.Set("unique", fmt.Sprintf("%t", unique))
	if len(uris) > 0 {
		q.Set("uris", strings.Join(uris, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service: stats returned %d", resp.StatusCode)
	}

	var items []viewStats
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(items))
	for _, it := range items {
		out[it.URI] = it.Hits
	}
	return out, nil
}

// Nop is used when no stats service is configured; hits are dropped and
// every view count reads as zero.
type Nop struct{}

func (Nop) RecordHit(context.Context, string, string, string, time.Time) error {
	return nil
}

func (Nop) GetViews(context.Context, time.Time, time.Time, []string, bool) (map[string]int64, error) {
	return map[string]int64{}, nil
}
