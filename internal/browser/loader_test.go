package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// funcScript adapts a function to Script for every URL.
type funcScript func(u *url.URL, h *History) (ScriptResult, error)

func (f funcScript) Matches(*url.URL) bool { return true }

func (f funcScript) Run(u *url.URL, h *History) (ScriptResult, error) { return f(u, h) }

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>Page %s</title></head><body><article>
<h1>Page %s</h1>
<p>Some text that is long enough to be kept by readability, about a petition
and the number of signatures it has collected so far this month.</p>
<p><a href="/petition/7">Another petition</a></p>
</article></body></html>`, r.URL.Path, r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestLoader(t *testing.T, scripts ...Script) *Loader {
	t.Helper()
	l, err := NewLoader(NewFetcher(""), 10, zaptest.NewLogger(t), scripts...)
	require.NoError(t, err)
	return l
}

func TestLoaderFetchesAndCaches(t *testing.T) {
	srv, hits := newTestServer(t)
	l := newTestLoader(t)
	h := NewHistory()

	page, err := l.Load(context.Background(), h, srv.URL+"/petition/1", PushEntry, 80)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/petition/1", page.URL)
	assert.NotEmpty(t, page.Content)
	assert.False(t, page.Cached)
	require.NotEmpty(t, page.Links)
	assert.Equal(t, srv.URL+"/petition/7", page.Links[0].URL)

	again, err := l.Load(context.Background(), h, srv.URL+"/petition/1", KeepEntry, 80)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, h.Len())

	l.Evict(srv.URL + "/petition/1")
	_, err = l.Load(context.Background(), h, srv.URL+"/petition/1", KeepEntry, 80)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestLoaderScriptRedirectReplacesEntry(t *testing.T) {
	srv, _ := newTestServer(t)

	var seen []int
	script := funcScript(func(u *url.URL, h *History) (ScriptResult, error) {
		entry, _ := h.CurrentEntry()
		seen = append(seen, entry.Index)
		if u.Path == "/" {
			return ScriptResult{Redirect: "/petition/42?lvp=true", Outcome: "redirected", Status: "returned to petition 42"}, nil
		}
		return ScriptResult{Outcome: "cleared"}, nil
	})
	l := newTestLoader(t, script)
	h := NewHistory()

	page, err := l.Load(context.Background(), h, srv.URL+"/", PushEntry, 80)
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/petition/42?lvp=true", page.Navigation.URL)
	assert.Equal(t, []string{srv.URL + "/"}, page.Navigation.Redirects)
	assert.Equal(t, "cleared", page.Navigation.Outcome)
	assert.Equal(t, "returned to petition 42", page.Navigation.Status)

	// The redirect target took over the first entry.
	assert.Equal(t, []int{0, 0}, seen)
	assert.Equal(t, []string{srv.URL + "/petition/42?lvp=true"}, h.Entries())
	assert.False(t, h.CanGoBack())
}

func TestLoaderStopsRedirectLoops(t *testing.T) {
	var runs int
	script := funcScript(func(u *url.URL, h *History) (ScriptResult, error) {
		runs++
		return ScriptResult{Redirect: fmt.Sprintf("/loop/%d", runs)}, nil
	})
	l := newTestLoader(t, script)
	h := NewHistory()

	_, err := l.Resolve(h, "http://127.0.0.1/", PushEntry)
	require.ErrorIs(t, err, ErrRedirectLoop)
	assert.Equal(t, MaxScriptRedirects+1, runs)
	assert.Equal(t, 1, h.Len())
}

func TestLoaderIgnoresFailingScripts(t *testing.T) {
	failing := funcScript(func(*url.URL, *History) (ScriptResult, error) {
		return ScriptResult{Redirect: "/never"}, errors.New("store unavailable")
	})
	l := newTestLoader(t, failing)

	nav, err := l.Resolve(NewHistory(), "http://127.0.0.1/petition/3", PushEntry)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1/petition/3", nav.URL)
	assert.Empty(t, nav.Redirects)
}

func TestLoaderResolveModes(t *testing.T) {
	l := newTestLoader(t)
	h := NewHistory()

	_, err := l.Resolve(h, "http://a.example/", PushEntry)
	require.NoError(t, err)
	_, err = l.Resolve(h, "http://b.example/", PushEntry)
	require.NoError(t, err)
	_, err = l.Resolve(h, "http://c.example/", ReplaceEntry)
	require.NoError(t, err)
	_, err = l.Resolve(h, "http://a.example/", KeepEntry)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.example/", "http://c.example/"}, h.Entries())

	_, err = l.Resolve(h, "   ", PushEntry)
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestLoaderWithoutCache(t *testing.T) {
	srv, hits := newTestServer(t)
	l, err := NewLoader(NewFetcher(""), 0, nil)
	require.NoError(t, err)

	for range 2 {
		_, err := l.Load(context.Background(), NewHistory(), srv.URL+"/petition/5", PushEntry, 80)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
	assert.Zero(t, l.CacheLen())
}
