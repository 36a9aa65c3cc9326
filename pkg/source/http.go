package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/version"
)

func init() {
	Register(config.SourceHTTP, func(cfg *config.Config) (Source, error) {
		return NewHTTPSource(cfg.Source.URL, cfg.Source.Timeout.Duration)
	})
}

// Ensure HTTPSource implements Source at compile time.
var _ Source = (*HTTPSource)(nil)

// HTTPSource reads the journal from a remote backend exposing /content,
// /tracks and /assets/json/{day}.json.
type HTTPSource struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewHTTPSource builds a source for the backend at base. A zero timeout
// leaves requests bounded only by their context.
func NewHTTPSource(base string, timeout time.Duration) (*HTTPSource, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &HTTPSource{
		baseURL:   u,
		http:      &http.Client{Timeout: timeout},
		userAgent: "triplog/" + version.Version,
	}, nil
}

func (s *HTTPSource) Content(ctx context.Context) (*journal.AllContent, error) {
	body, err := s.get(ctx, &url.URL{Path: "content"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	return journal.DecodeAllContent(data)
}

func (s *HTTPSource) Tracks(ctx context.Context) ([]string, error) {
	var tracks []string
	if err := s.getJSON(ctx, &url.URL{Path: "tracks"}, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// DayContent fetches the per-day fallback record.
func (s *HTTPSource) DayContent(ctx context.Context, day journal.Day) (journal.ContentItem, error) {
	var payload struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	rel := &url.URL{Path: "assets/json/" + day.String() + ".json"}
	if err := s.getJSON(ctx, rel, &payload); err != nil {
		return journal.ContentItem{}, err
	}
	return journal.ContentItem{
		Title:   payload.Title,
		Content: payload.Content,
		Fields:  journal.Fields{DayNumber: day},
	}, nil
}

// OpenTrack fetches a track resource. Relative identifiers resolve against
// the base URL.
func (s *HTTPSource) OpenTrack(ctx context.Context, resource string) (io.ReadCloser, error) {
	rel, err := url.Parse(resource)
	if err != nil {
		return nil, fmt.Errorf("parse track %q: %w", resource, err)
	}
	return s.get(ctx, rel)
}

func (s *HTTPSource) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

func (s *HTTPSource) getJSON(ctx context.Context, rel *url.URL, dest any) error {
	body, err := s.get(ctx, rel)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", rel, err)
	}
	return nil
}

func (s *HTTPSource) get(ctx context.Context, rel *url.URL) (io.ReadCloser, error) {
	reqURL := s.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d", reqURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// parseBaseURL accepts host:port or a full URL. The path is kept, with a
// trailing slash, so the source can live under a prefix.
func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("source url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse source url %q: %w", base, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
