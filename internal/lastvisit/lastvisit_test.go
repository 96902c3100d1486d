package lastvisit

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	urls []string
	err  error
}

func (n *recordingNavigator) Navigate(rawURL string) error {
	if n.err != nil {
		return n.err
	}
	n.urls = append(n.urls, rawURL)
	return nil
}

type fixedHistory struct {
	entry Entry
	ok    bool
}

func (h fixedHistory) CurrentEntry() (Entry, bool) {
	return h.entry, h.ok
}

type failingStore struct {
	err error
}

func (s failingStore) GetItem(string) (string, bool, error) { return "", false, s.err }
func (s failingStore) SetItem(string, string) error         { return s.err }
func (s failingStore) RemoveItem(string) error              { return s.err }

func newInitializer(t *testing.T, rawURL string, store Store, history HistoryReader) (*Initializer, *recordingNavigator) {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	nav := &recordingNavigator{}
	return &Initializer{
		Location:  FromURL(u),
		History:   history,
		Store:     store,
		Navigator: nav,
	}, nav
}

func storedID(t *testing.T, store Store) (string, bool) {
	t.Helper()
	v, ok, err := store.GetItem(StorageKey)
	require.NoError(t, err)
	return v, ok
}

func TestMarkerClearsStoredPetition(t *testing.T) {
	for _, rawURL := range []string{
		"https://petition.president.gov.ua/petition/42?lvp=true",
		"https://petition.president.gov.ua/petition/42?lvp",
		"https://petition.president.gov.ua/petition/42?lvp=",
		"https://petition.president.gov.ua/?foo=bar&lvp=0",
		"https://petition.president.gov.ua/petitions?lvp=anything",
		"https://petition.president.gov.ua/petition/9?lvp=%",
		"https://petition.president.gov.ua/petition/9?lvp=100%",
		"https://petition.president.gov.ua/petition/9?lvp=1;x=2",
		"https://petition.president.gov.ua/petition/9?x=%zz&lvp",
		"https://petition.president.gov.ua/?%6Cvp=1",
		"https://petition.president.gov.ua/?lvp=%E0%A4%A",
	} {
		t.Run(rawURL, func(t *testing.T) {
			store := NewMemoryStore(map[string]string{StorageKey: "42"})
			in, nav := newInitializer(t, rawURL, store, nil)

			res, err := in.Run()
			require.NoError(t, err)
			assert.Equal(t, OutcomeCleared, res.Outcome)

			_, ok := storedID(t, store)
			assert.False(t, ok)
			assert.Empty(t, nav.urls)
		})
	}
}

func TestMarkerNameMustMatchExactly(t *testing.T) {
	for _, rawURL := range []string{
		"https://petition.president.gov.ua/petition/9?lvpx=1",
		"https://petition.president.gov.ua/petition/9?x=1;lvp=2",
		"https://petition.president.gov.ua/petition/9?l%vp=1",
		"https://petition.president.gov.ua/petition/9?lvp+=1",
		"https://petition.president.gov.ua/petition/9?x=lvp",
	} {
		t.Run(rawURL, func(t *testing.T) {
			store := NewMemoryStore(map[string]string{StorageKey: "42"})
			in, _ := newInitializer(t, rawURL, store, nil)

			res, err := in.Run()
			require.NoError(t, err)
			assert.Equal(t, OutcomeRecorded, res.Outcome)

			v, _ := storedID(t, store)
			assert.Equal(t, "9", v)
		})
	}
}

func TestMarkerWithoutStoredPetition(t *testing.T) {
	store := NewMemoryStore(nil)
	in, nav := newInitializer(t, "https://petition.president.gov.ua/petition/9?lvp=true", store, nil)

	res, err := in.Run()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, res.Outcome)
	assert.Zero(t, store.Len())
	assert.Empty(t, nav.urls)
}

func TestHomeRedirectsToStoredPetition(t *testing.T) {
	store := NewMemoryStore(map[string]string{StorageKey: "42"})
	in, nav := newInitializer(t, "https://petition.president.gov.ua/", store, nil)

	res, err := in.Run()
	require.NoError(t, err)

	want := "https://petition.president.gov.ua/petition/42?lvp=true"
	assert.Equal(t, Result{Outcome: OutcomeRedirected, PetitionID: "42", RedirectURL: want}, res)
	assert.Equal(t, []string{want}, nav.urls)

	// The redirect does not touch the store.
	v, ok := storedID(t, store)
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestHomeWithoutHostPathIsHome(t *testing.T) {
	store := NewMemoryStore(map[string]string{StorageKey: "7"})
	in, nav := newInitializer(t, "https://petition.president.gov.ua", store, nil)

	res, err := in.Run()
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedirected, res.Outcome)
	assert.Len(t, nav.urls, 1)
}

func TestHomeWithoutStoredPetitionIsNoop(t *testing.T) {
	store := NewMemoryStore(nil)
	in, nav := newInitializer(t, "https://petition.president.gov.ua/", store, nil)

	res, err := in.Run()
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, res.Outcome)
	assert.Zero(t, store.Len())
	assert.Empty(t, nav.urls)
}

func TestPetitionPageRecordsID(t *testing.T) {
	for _, tc := range []struct {
		rawURL string
		want   string
	}{
		{"https://petition.president.gov.ua/petition/777", "777"},
		{"https://petition.president.gov.ua/petition/777/", "777"},
		{"https://petition.president.gov.ua/petition/777/votes/2", "777"},
		{"https://petition.president.gov.ua/x/12.5", "12.5"},
		{"https://petition.president.gov.ua/petition/-3", "-3"},
	} {
		t.Run(tc.rawURL, func(t *testing.T) {
			store := NewMemoryStore(map[string]string{StorageKey: "1"})
			in, nav := newInitializer(t, tc.rawURL, store, nil)

			res, err := in.Run()
			require.NoError(t, err)
			assert.Equal(t, Result{Outcome: OutcomeRecorded, PetitionID: tc.want}, res)

			v, ok := storedID(t, store)
			assert.True(t, ok)
			assert.Equal(t, tc.want, v)
			assert.Empty(t, nav.urls)
		})
	}
}

func TestNonPetitionPagesLeaveStoreAlone(t *testing.T) {
	for _, rawURL := range []string{
		"https://petition.president.gov.ua/petition/abc",
		"https://petition.president.gov.ua/petition/12a",
		"https://petition.president.gov.ua/petition/",
		"https://petition.president.gov.ua/petitions",
		"https://petition.president.gov.ua/petitions?status=active",
		"https://petition.president.gov.ua/petition/%20",
	} {
		t.Run(rawURL, func(t *testing.T) {
			store := NewMemoryStore(map[string]string{StorageKey: "5"})
			in, nav := newInitializer(t, rawURL, store, nil)

			res, err := in.Run()
			require.NoError(t, err)
			assert.Equal(t, OutcomeNone, res.Outcome)

			v, _ := storedID(t, store)
			assert.Equal(t, "5", v)
			assert.Empty(t, nav.urls)
		})
	}
}

func TestHistoryGuard(t *testing.T) {
	rawURLs := []string{
		"https://petition.president.gov.ua/?lvp=true",
		"https://petition.president.gov.ua/",
		"https://petition.president.gov.ua/petition/10",
	}

	t.Run("later entries do nothing", func(t *testing.T) {
		for _, rawURL := range rawURLs {
			store := NewMemoryStore(map[string]string{StorageKey: "42"})
			in, nav := newInitializer(t, rawURL, store, fixedHistory{entry: Entry{Index: 1}, ok: true})

			res, err := in.Run()
			require.NoError(t, err)
			assert.Equal(t, OutcomeSkipped, res.Outcome, rawURL)

			v, ok := storedID(t, store)
			assert.True(t, ok)
			assert.Equal(t, "42", v)
			assert.Empty(t, nav.urls)
		}
	})

	t.Run("first entry and missing entry fall through", func(t *testing.T) {
		for _, history := range []HistoryReader{
			nil,
			fixedHistory{ok: false},
			fixedHistory{entry: Entry{Index: 5}, ok: false},
			fixedHistory{entry: Entry{Index: 0}, ok: true},
		} {
			store := NewMemoryStore(map[string]string{StorageKey: "42"})
			in, nav := newInitializer(t, "https://petition.president.gov.ua/", store, history)

			res, err := in.Run()
			require.NoError(t, err)
			assert.Equal(t, OutcomeRedirected, res.Outcome)
			assert.Len(t, nav.urls, 1)
		}
	})
}

func TestRepeatedPetitionVisits(t *testing.T) {
	store := NewMemoryStore(nil)
	for i := 0; i < 2; i++ {
		in, _ := newInitializer(t, "https://petition.president.gov.ua/petition/5", store, fixedHistory{ok: true})

		res, err := in.Run()
		require.NoError(t, err)
		assert.Equal(t, OutcomeRecorded, res.Outcome)

		v, ok := storedID(t, store)
		assert.True(t, ok)
		assert.Equal(t, "5", v)
	}
}

func TestCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	for _, rawURL := range []string{
		"https://petition.president.gov.ua/?lvp",
		"https://petition.president.gov.ua/",
		"https://petition.president.gov.ua/petition/3",
	} {
		in, nav := newInitializer(t, rawURL, failingStore{err: boom}, nil)
		_, err := in.Run()
		require.ErrorIs(t, err, boom, rawURL)
		assert.Empty(t, nav.urls)
	}

	t.Run("navigation failure", func(t *testing.T) {
		store := NewMemoryStore(map[string]string{StorageKey: "8"})
		in, nav := newInitializer(t, "https://petition.president.gov.ua/", store, nil)
		nav.err = boom

		_, err := in.Run()
		require.ErrorIs(t, err, boom)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "none", OutcomeNone.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "cleared", OutcomeCleared.String())
	assert.Equal(t, "redirected", OutcomeRedirected.String())
	assert.Equal(t, "recorded", OutcomeRecorded.String())
}
