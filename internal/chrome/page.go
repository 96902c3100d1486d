package chrome

import (
	"fmt"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// entryIndexJS yields the current session history index, or -1 when the
// Navigation API is missing.
const entryIndexJS = `() => {
	try {
		if (typeof navigation === "undefined" || !navigation.currentEntry) return -1;
		return navigation.currentEntry.index;
	} catch (e) {
		return -1;
	}
}`

// pageHistory reads the session history position of a live page.
type pageHistory struct {
	page   *rod.Page
	logger *zap.Logger
}

func (h pageHistory) CurrentEntry() (lastvisit.Entry, bool) {
	res, err := h.page.Evaluate(&rod.EvalOptions{
		JS:      entryIndexJS,
		ByValue: true,
	})
	if err != nil || res == nil {
		// Treated like a missing Navigation API.
		h.logger.Debug("reading history index", zap.Error(err))
		return lastvisit.Entry{}, false
	}
	index := res.Value.Int()
	if index < 0 {
		return lastvisit.Entry{}, false
	}
	return lastvisit.Entry{Index: index}, true
}

// pageStorage is the page's own localStorage.
type pageStorage struct {
	page *rod.Page
}

func (s pageStorage) GetItem(key string) (string, bool, error) {
	res, err := s.page.Evaluate(&rod.EvalOptions{
		JS:      `(k) => localStorage.getItem(k)`,
		JSArgs:  []interface{}{key},
		ByValue: true,
	})
	if err != nil {
		return "", false, fmt.Errorf("localStorage.getItem(%q): %w", key, err)
	}
	if res == nil || res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

func (s pageStorage) SetItem(key, value string) error {
	_, err := s.page.Evaluate(&rod.EvalOptions{
		JS:     `(k, v) => { localStorage.setItem(k, v) }`,
		JSArgs: []interface{}{key, value},
	})
	if err != nil {
		return fmt.Errorf("localStorage.setItem(%q): %w", key, err)
	}
	return nil
}

func (s pageStorage) RemoveItem(key string) error {
	_, err := s.page.Evaluate(&rod.EvalOptions{
		JS:     `(k) => { localStorage.removeItem(k) }`,
		JSArgs: []interface{}{key},
	})
	if err != nil {
		return fmt.Errorf("localStorage.removeItem(%q): %w", key, err)
	}
	return nil
}
