package chrome

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

func TestMatches(t *testing.T) {
	d := New(Options{}, nil)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://petition.president.gov.ua/", true},
		{"https://petition.president.gov.ua/petition/1?lvp=true", true},
		{"https://president.gov.ua/", false},
		{"about:blank", false},
		{"chrome://newtab/", false},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.url)
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Matches(u), tt.url)
	}
	assert.Equal(t, "https://petition.president.gov.ua/", d.opts.StartURL)
}

func TestEnqueueWaitsInsteadOfDropping(t *testing.T) {
	navs := make(chan string, 1)
	require.True(t, enqueue(context.Background(), navs, "https://petition.president.gov.ua/"))

	done := make(chan bool)
	go func() {
		done <- enqueue(context.Background(), navs, "https://petition.president.gov.ua/petition/5")
	}()

	select {
	case <-done:
		t.Fatal("enqueue returned while the buffer was full")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, "https://petition.president.gov.ua/", <-navs)
	assert.True(t, <-done)
	assert.Equal(t, "https://petition.president.gov.ua/petition/5", <-navs)
}

func TestEnqueueStopsWithContext(t *testing.T) {
	navs := make(chan string, 1)
	navs <- "https://petition.president.gov.ua/"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, enqueue(ctx, navs, "https://petition.president.gov.ua/petition/5"))
	assert.Len(t, navs, 1)
}

func TestAvailablePrefersConfiguredBinary(t *testing.T) {
	bin, err := Available("/opt/chrome/chrome")
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome/chrome", bin)
}

func TestDriverRecordsAndRedirects(t *testing.T) {
	bin, err := Available("")
	if err != nil {
		t.Skip("chrome not installed")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body>%s</body></html>", r.URL.Path)
	}))
	defer srv.Close()
	srvURL, err := url.Parse(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d := New(Options{
		Bin:      bin,
		Headless: true,
		StartURL: srv.URL + "/petition/314",
		Sites:    []string{srvURL.Hostname()},
	}, zaptest.NewLogger(t))

	events := make(chan Event)
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx, events) }()

	select {
	case ev := <-events:
		require.NoError(t, ev.Err)
		assert.Equal(t, lastvisit.OutcomeRecorded, ev.Result.Outcome)
		assert.Equal(t, "314", ev.Result.PetitionID)
	case err := <-errc:
		t.Fatalf("Run() returned early: %v", err)
	case <-ctx.Done():
		t.Fatal("no navigation event")
	}

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}
