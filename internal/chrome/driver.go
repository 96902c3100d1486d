// Package chrome runs the last-visited-petition initializer inside a real
// Chrome, against the page's own localStorage and session history.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// Options configures a Driver.
type Options struct {
	Bin        string   // Chrome binary, empty to let the launcher find one
	Headless   bool
	ControlURL string   // attach to a running browser instead of launching
	StartURL   string   // defaults to the petition site home page
	Sites      []string // hosts the initializer runs on
}

// Event reports one initializer run.
type Event struct {
	URL    string
	Result lastvisit.Result
	Err    error
}

// Driver owns a Chrome page and runs the initializer on every main-frame
// navigation, one at a time.
type Driver struct {
	opts   Options
	logger *zap.Logger
	sites  map[string]bool
}

// New creates a Driver.
func New(opts Options, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StartURL == "" {
		opts.StartURL = "https://" + lastvisit.SiteHost + "/"
	}
	if len(opts.Sites) == 0 {
		opts.Sites = []string{lastvisit.SiteHost}
	}
	sites := make(map[string]bool, len(opts.Sites))
	for _, s := range opts.Sites {
		sites[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return &Driver{opts: opts, logger: logger, sites: sites}
}

// Run launches or attaches to Chrome, opens StartURL and processes
// navigations until ctx is done. Events are sent to events when it is
// non-nil; a slow reader blocks the next run. Every main-frame navigation
// is processed in order, none are skipped.
func (d *Driver) Run(ctx context.Context, events chan<- Event) error {
	controlURL := d.opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(d.opts.Headless)
		if d.opts.Bin != "" {
			l = l.Bin(d.opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		defer func() {
			l.Kill()
			l.Cleanup()
		}()
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}

	navs := make(chan string, 16)
	wait := page.Context(ctx).EachEvent(func(ev *proto.PageFrameNavigated) {
		if ev.Frame == nil || ev.Frame.ParentID != "" {
			return
		}
		enqueue(ctx, navs, ev.Frame.URL)
	})
	go wait()

	if err := page.Context(ctx).Navigate(d.opts.StartURL); err != nil {
		return fmt.Errorf("navigate to %s: %w", d.opts.StartURL, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw := <-navs:
			ev, ok := d.handle(ctx, page, raw)
			if !ok {
				continue
			}
			if events != nil {
				select {
				case events <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// enqueue hands a committed URL to the run loop. It waits for room rather
// than dropping the navigation, and gives up only when ctx is done.
func enqueue(ctx context.Context, navs chan<- string, raw string) bool {
	select {
	case navs <- raw:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Driver) handle(ctx context.Context, page *rod.Page, raw string) (Event, bool) {
	u, err := url.Parse(raw)
	if err != nil || !d.Matches(u) {
		return Event{}, false
	}

	p := page.Context(ctx)
	in := &lastvisit.Initializer{
		Location: lastvisit.FromURL(u),
		History:  pageHistory{page: p, logger: d.logger},
		Store:    pageStorage{page: p},
		Navigator: lastvisit.NavigatorFunc(func(target string) error {
			return p.Navigate(target)
		}),
	}

	res, err := in.Run()
	if err != nil {
		d.logger.Warn("last visited petition", zap.String("url", raw), zap.Error(err))
	} else {
		d.logger.Info("last visited petition",
			zap.String("url", raw),
			zap.Stringer("outcome", res.Outcome),
			zap.String("petition", res.PetitionID))
	}
	return Event{URL: raw, Result: res, Err: err}, true
}

// Matches reports whether the initializer runs on u.
func (d *Driver) Matches(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return d.sites[strings.ToLower(u.Hostname())]
}

// ErrNoChrome is returned by Available when no browser binary is found.
var ErrNoChrome = errors.New("chrome not found")

// Available returns the Chrome binary the launcher would use.
func Available(bin string) (string, error) {
	if bin != "" {
		return bin, nil
	}
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}
	return "", ErrNoChrome
}
