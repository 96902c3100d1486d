package browser

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

const (
	requestTimeout   = 15 * time.Second
	maxHTTPRedirects = 10
	bodyLimit        = 10 << 20
	defaultUserAgent = "petsurf/0.1 (terminal browser; +https://github.com/vidyasagar/petsurf)"
)

// transport is shared by every Fetcher so tabs reuse connections to the
// petition site.
var transport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConnsPerHost:   8,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: requestTimeout,
}

// Response is a fetched document before extraction.
type Response struct {
	RequestURL  string
	URL         string // after HTTP redirects
	Status      int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
}

// Fetcher performs page GETs.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher. An empty userAgent selects the default.
func NewFetcher(userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return fmt.Errorf("stopped after %d redirects", maxHTTPRedirects)
			}
			return nil
		},
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Get fetches target. Error statuses are not errors; the petition site
// renders its own 404 page.
func (f *Fetcher) Get(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "uk-UA,uk;q=0.9,en;q=0.7")

	began := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return &Response{
		RequestURL:  target,
		URL:         resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Elapsed:     time.Since(began),
	}, nil
}

// NormalizeURL turns what was typed into a URL: a bare number is a petition,
// a dotted word is a host and anything else is a petition search.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		return raw
	case strings.Trim(raw, "0123456789") == "":
		return "https://" + lastvisit.SiteHost + "/petition/" + raw
	case strings.Contains(raw, ".") && !strings.ContainsAny(raw, " \t"):
		return "https://" + raw
	default:
		return SearchURL(raw)
	}
}

// IsHTML reports whether contentType is an HTML media type.
func IsHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
