package browser

import (
	"slices"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// History is one tab's session history. The cursor is the index scripts see
// as the history position; -1 means nothing has been loaded yet.
type History struct {
	urls   []string
	cursor int
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{cursor: -1}
}

func (h *History) valid() bool {
	return h.cursor >= 0 && h.cursor < len(h.urls)
}

// Push appends url after the cursor, dropping any forward entries.
func (h *History) Push(url string) {
	h.urls = append(h.urls[:h.cursor+1], url)
	h.cursor++
}

// Replace overwrites the entry under the cursor. Forward entries survive.
// An empty History gets its first entry.
func (h *History) Replace(url string) {
	if !h.valid() {
		h.Push(url)
		return
	}
	h.urls[h.cursor] = url
}

// Back steps the cursor back and returns the URL there.
func (h *History) Back() (string, bool) {
	return h.step(-1)
}

// Forward steps the cursor forward and returns the URL there.
func (h *History) Forward() (string, bool) {
	return h.step(1)
}

func (h *History) step(delta int) (string, bool) {
	next := h.cursor + delta
	if next < 0 || next >= len(h.urls) {
		return "", false
	}
	h.cursor = next
	return h.urls[next], true
}

// Current returns the URL under the cursor, or "".
func (h *History) Current() string {
	if !h.valid() {
		return ""
	}
	return h.urls[h.cursor]
}

// CurrentEntry implements lastvisit.HistoryReader.
func (h *History) CurrentEntry() (lastvisit.Entry, bool) {
	if !h.valid() {
		return lastvisit.Entry{}, false
	}
	return lastvisit.Entry{Index: h.cursor, URL: h.urls[h.cursor]}, true
}

// Entries returns a copy of every URL in order.
func (h *History) Entries() []string { return slices.Clone(h.urls) }

// CanGoBack reports whether Back would move.
func (h *History) CanGoBack() bool { return h.cursor > 0 }

// CanGoForward reports whether Forward would move.
func (h *History) CanGoForward() bool { return h.cursor < len(h.urls)-1 }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.urls) }

// Clear empties the history.
func (h *History) Clear() {
	h.urls = nil
	h.cursor = -1
}
