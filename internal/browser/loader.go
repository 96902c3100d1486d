package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// MaxScriptRedirects bounds how many times scripts may send one load elsewhere.
const MaxScriptRedirects = 5

var (
	// ErrRedirectLoop is returned when scripts keep redirecting a load.
	ErrRedirectLoop = errors.New("too many script redirects")
	// ErrEmptyURL is returned when there is nothing to load.
	ErrEmptyURL = errors.New("empty url")
)

// LoadMode says how a load changes the tab's history.
type LoadMode int

const (
	PushEntry    LoadMode = iota // typed URL or followed link
	ReplaceEntry                 // overwrite the current entry
	KeepEntry                    // back, forward, reload
)

// ScriptResult is what a Script decided for one document.
type ScriptResult struct {
	Redirect string // URL to load instead, relative URLs allowed
	Outcome  string
	Status   string // short note for the status bar
}

// Script runs at document start, before the page is fetched.
type Script interface {
	Matches(u *url.URL) bool
	Run(u *url.URL, h *History) (ScriptResult, error)
}

// Navigation is the resolved form of one load request.
type Navigation struct {
	URL       string   // URL that will actually be fetched
	Redirects []string // URLs replaced by script redirects, in order
	Outcome   string   // outcome reported for URL
	Status    string   // last non-empty script status
}

// Page is a fetched and rendered document.
type Page struct {
	*RenderedPage
	URL        string // after HTTP redirects
	Navigation Navigation
	Cached     bool
}

// Loader drives page loads: document-start scripts, fetch, extraction and
// rendering, with an LRU cache of rendered pages.
type Loader struct {
	fetcher *Fetcher
	scripts []Script
	cache   *lru.Cache[string, *RenderedPage]
	logger  *zap.Logger
}

// NewLoader creates a Loader. A cacheSize of zero disables the page cache.
func NewLoader(fetcher *Fetcher, cacheSize int, logger *zap.Logger, scripts ...Script) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		fetcher: fetcher,
		scripts: scripts,
		logger:  logger,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, *RenderedPage](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating page cache: %w", err)
		}
		l.cache = cache
	}
	return l, nil
}

// Load resolves rawURL against h and fetches the result.
func (l *Loader) Load(ctx context.Context, h *History, rawURL string, mode LoadMode, width int) (*Page, error) {
	nav, err := l.Resolve(h, rawURL, mode)
	if err != nil {
		return nil, err
	}
	return l.Fetch(ctx, nav, width)
}

// Resolve updates h for rawURL and runs the matching scripts. A script
// redirect replaces the current history entry and the scripts run again for
// the new URL. Resolve does no network I/O, so it is safe to call from the
// goroutine that owns h.
func (l *Loader) Resolve(h *History, rawURL string, mode LoadMode) (Navigation, error) {
	target := NormalizeURL(rawURL)
	if target == "" {
		return Navigation{}, ErrEmptyURL
	}

	switch mode {
	case PushEntry:
		h.Push(target)
	case ReplaceEntry:
		h.Replace(target)
	}

	nav := Navigation{URL: target}
	for {
		u, err := url.Parse(target)
		if err != nil {
			return nav, fmt.Errorf("parsing %s: %w", target, err)
		}

		res := l.runScripts(u, h)
		nav.Outcome = res.Outcome
		if res.Status != "" {
			nav.Status = res.Status
		}
		if res.Redirect == "" {
			return nav, nil
		}

		if len(nav.Redirects) >= MaxScriptRedirects {
			return nav, fmt.Errorf("%w: stopped at %s", ErrRedirectLoop, res.Redirect)
		}
		next, err := u.Parse(res.Redirect)
		if err != nil {
			return nav, fmt.Errorf("parsing redirect %s: %w", res.Redirect, err)
		}

		l.logger.Debug("script redirect",
			zap.String("from", target),
			zap.String("to", next.String()))

		nav.Redirects = append(nav.Redirects, target)
		target = next.String()
		nav.URL = target
		h.Replace(target)
	}
}

// runScripts runs every matching script until one redirects. Script errors
// are logged and the page loads as if the script had done nothing.
func (l *Loader) runScripts(u *url.URL, h *History) ScriptResult {
	var out ScriptResult
	for _, s := range l.scripts {
		if !s.Matches(u) {
			continue
		}
		res, err := s.Run(u, h)
		if err != nil {
			l.logger.Warn("script failed", zap.String("url", u.String()), zap.Error(err))
			continue
		}
		if res.Outcome != "" {
			out.Outcome = res.Outcome
		}
		if res.Status != "" {
			out.Status = res.Status
		}
		if res.Redirect != "" {
			out.Redirect = res.Redirect
			return out
		}
	}
	return out
}

// Fetch returns the rendered page for nav, from the cache when possible.
func (l *Loader) Fetch(ctx context.Context, nav Navigation, width int) (*Page, error) {
	if l.cache != nil {
		if rp, ok := l.cache.Get(nav.URL); ok {
			return &Page{RenderedPage: rp, URL: nav.URL, Navigation: nav, Cached: true}, nil
		}
	}

	result, err := l.fetcher.Get(ctx, nav.URL)
	if err != nil {
		return nil, err
	}

	var rp *RenderedPage
	if isSearchURL(nav.URL) {
		results, err := ParseSearchResults(result.Body)
		if err != nil {
			return nil, err
		}
		rp = RenderSearchResults(results, searchQuery(nav.URL), width)
	} else {
		article, err := Extract(result)
		if err != nil {
			return nil, err
		}
		rp = Render(article, width)
	}
	if l.cache != nil {
		l.cache.Add(nav.URL, rp)
		if result.URL != nav.URL {
			l.cache.Add(result.URL, rp)
		}
	}

	l.logger.Debug("page loaded",
		zap.String("url", result.URL),
		zap.Int("status", result.Status),
		zap.Duration("took", result.Elapsed))

	return &Page{RenderedPage: rp, URL: result.URL, Navigation: nav}, nil
}

// Evict drops rawURL from the page cache.
func (l *Loader) Evict(rawURL string) {
	if l.cache != nil {
		l.cache.Remove(rawURL)
	}
}

// CacheLen returns the number of cached pages.
func (l *Loader) CacheLen() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.Len()
}
