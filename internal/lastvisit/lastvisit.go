// Package lastvisit remembers the last petition a visitor opened on the
// petition site and sends them back to it when they land on the home page.
//
// The Initializer runs once per page load. It reads the page location, the
// optional session history position and an origin-scoped key-value store,
// then does at most one of: clear the stored id, redirect to the stored
// petition, or record the current petition id.
package lastvisit

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// QueryParamKey marks a page that was reached through our own redirect.
	QueryParamKey = "lvp"

	// StorageKey is the store key holding the last visited petition id.
	StorageKey = "pra-last-visited-petition"

	// SiteHost is the host of the petition site.
	SiteHost = "petition.president.gov.ua"
)

// Location exposes the current page address.
type Location interface {
	// Pathname returns the path as the browser reports it, still escaped.
	Pathname() string
	// Search returns the raw query string, with or without the leading "?".
	Search() string
}

// Entry describes the current session history entry.
type Entry struct {
	Index int
	URL   string
}

// HistoryReader reports the current session history entry, if any.
type HistoryReader interface {
	CurrentEntry() (Entry, bool)
}

// Store is a synchronous string store scoped to one origin.
type Store interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Navigator performs a full page navigation.
type Navigator interface {
	Navigate(rawURL string) error
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(rawURL string) error

// Navigate calls f(rawURL).
func (f NavigatorFunc) Navigate(rawURL string) error {
	return f(rawURL)
}

// Outcome is the single action taken by one Run.
type Outcome int

const (
	OutcomeNone       Outcome = iota // nothing matched
	OutcomeSkipped                   // not the first history entry
	OutcomeCleared                   // marker present, stored id removed
	OutcomeRedirected                // home page, sent to the stored petition
	OutcomeRecorded                  // petition page, id stored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCleared:
		return "cleared"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeRecorded:
		return "recorded"
	default:
		return "none"
	}
}

// Result reports what Run did.
type Result struct {
	Outcome     Outcome
	PetitionID  string // id read or written, if any
	RedirectURL string // set when Outcome is OutcomeRedirected
}

// Initializer holds the collaborators for one page load.
type Initializer struct {
	Location  Location
	History   HistoryReader // optional
	Store     Store
	Navigator Navigator
}

// Run inspects the page and performs at most one store mutation or one
// navigation. Errors from collaborators are returned wrapped; the page should
// then be left as it is.
func (in *Initializer) Run() (Result, error) {
	if in.History != nil {
		if entry, ok := in.History.CurrentEntry(); ok && entry.Index != 0 {
			return Result{Outcome: OutcomeSkipped}, nil
		}
	}

	if hasMarker(in.Location.Search()) {
		if err := in.Store.RemoveItem(StorageKey); err != nil {
			return Result{}, fmt.Errorf("removing last visited petition: %w", err)
		}
		return Result{Outcome: OutcomeCleared}, nil
	}

	pathname := in.Location.Pathname()
	if pathname == "/" {
		id, ok, err := in.Store.GetItem(StorageKey)
		if err != nil {
			return Result{}, fmt.Errorf("reading last visited petition: %w", err)
		}
		if !ok {
			return Result{Outcome: OutcomeNone}, nil
		}
		target := RedirectURL(id)
		if err := in.Navigator.Navigate(target); err != nil {
			return Result{}, fmt.Errorf("redirecting to petition %s: %w", id, err)
		}
		return Result{Outcome: OutcomeRedirected, PetitionID: id, RedirectURL: target}, nil
	}

	id, ok := PetitionID(pathname)
	if !ok {
		return Result{Outcome: OutcomeNone}, nil
	}
	if err := in.Store.SetItem(StorageKey, id); err != nil {
		return Result{}, fmt.Errorf("storing petition %s: %w", id, err)
	}
	return Result{Outcome: OutcomeRecorded, PetitionID: id}, nil
}

// hasMarker reports whether the query string carries QueryParamKey.
// Only presence matters; an empty or malformed value still counts. Pairs are
// split on "&" alone and names decoded the way browsers decode form data.
func hasMarker(search string) bool {
	search = strings.TrimPrefix(search, "?")
	for _, pair := range strings.Split(search, "&") {
		name, _, _ := strings.Cut(pair, "=")
		if decodeFormName(name) == QueryParamKey {
			return true
		}
	}
	return false
}

// decodeFormName turns "+" into a space and percent-decodes s, leaving
// escapes that are not two hex digits as they are.
func decodeFormName(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

type urlLocation struct {
	u *url.URL
}

// FromURL returns a Location for u.
func FromURL(u *url.URL) Location {
	return urlLocation{u: u}
}

func (l urlLocation) Pathname() string {
	p := l.u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

func (l urlLocation) Search() string {
	return l.u.RawQuery
}
