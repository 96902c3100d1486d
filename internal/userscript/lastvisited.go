// Package userscript holds the document-start scripts the terminal browser
// runs on matching sites.
package userscript

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/browser"
	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// Stores hands out origin-scoped stores. storage.Backend satisfies it.
type Stores interface {
	Origin(origin string) lastvisit.Store
}

// LastVisited runs the last-visited-petition initializer on each page load of
// the configured sites.
type LastVisited struct {
	sites  map[string]bool
	stores Stores
	logger *zap.Logger
}

var _ browser.Script = (*LastVisited)(nil)

// NewLastVisited creates the script for the given hosts. With no hosts it
// runs on the petition site only.
func NewLastVisited(stores Stores, sites []string, logger *zap.Logger) *LastVisited {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sites) == 0 {
		sites = []string{lastvisit.SiteHost}
	}
	m := make(map[string]bool, len(sites))
	for _, s := range sites {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			m[s] = true
		}
	}
	return &LastVisited{sites: m, stores: stores, logger: logger}
}

// Matches reports whether u is on one of the configured hosts.
func (lv *LastVisited) Matches(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return lv.sites[strings.ToLower(u.Hostname())]
}

// Run executes the initializer for u with h as the tab's session history.
// A navigation request from the initializer becomes the script redirect.
func (lv *LastVisited) Run(u *url.URL, h *browser.History) (browser.ScriptResult, error) {
	var redirect string
	in := &lastvisit.Initializer{
		Location: lastvisit.FromURL(u),
		Store:    lv.stores.Origin(Origin(u)),
		Navigator: lastvisit.NavigatorFunc(func(target string) error {
			redirect = target
			return nil
		}),
	}
	if h != nil {
		in.History = h
	}

	res, err := in.Run()
	if err != nil {
		lv.logger.Warn("last visited petition",
			zap.String("url", u.String()),
			zap.Error(err))
		return browser.ScriptResult{}, err
	}

	lv.logger.Debug("last visited petition",
		zap.String("url", u.String()),
		zap.Stringer("outcome", res.Outcome),
		zap.String("petition", res.PetitionID))

	return browser.ScriptResult{
		Redirect: redirect,
		Outcome:  res.Outcome.String(),
		Status:   Describe(res),
	}, nil
}

// Describe returns a status line for res, or "" when nothing worth showing
// happened.
func Describe(res lastvisit.Result) string {
	switch res.Outcome {
	case lastvisit.OutcomeRedirected:
		return fmt.Sprintf("returned to petition %s", res.PetitionID)
	case lastvisit.OutcomeRecorded:
		return fmt.Sprintf("remembered petition %s", res.PetitionID)
	default:
		return ""
	}
}

// Origin returns the scheme://host[:port] origin of u.
func Origin(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}
