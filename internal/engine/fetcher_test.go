package engine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

// cardDAV serves body as an address book behind basic auth.
func cardDAV(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if contentType != "" {
			w.Header().Set(config.HeaderContentType, contentType)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// syncFrom runs a web-mode sync against url on 2025-06-01.
func syncFrom(fetcher engine.VCardFetcher, url, user, pass string) (*engine.SyncResult, error) {
	gen := &engine.Generator{
		Clock:   engine.FixedClock(date(2025, 6, 1)),
		Fetcher: fetcher,
	}
	return gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  url,
		WebUser: user,
		WebPass: pass,
	})
}

func TestAddressBookFetcher_LunarBirthdays(t *testing.T) {
	// Exports often start with a byte order mark and blank lines.
	book := "\ufeff\r\n" + card("John Doe", "1990-06-15") + "\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:No Birthday\nEND:VCARD\n"

	headers := make(chan http.Header, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		assert.Equal(t, "secret", r.URL.Query().Get("token"), "the token reaches the server")
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "alice", user)
		assert.Equal(t, "s3cret", pass)
		w.Header().Set(config.HeaderContentType, "text/vcard; charset=utf-8")
		_, _ = w.Write([]byte(book))
	}))
	defer ts.Close()

	res, err := syncFrom(engine.NewAddressBookFetcher(), ts.URL+"/contacts?token=secret", "alice", "s3cret")
	require.NoError(t, err)

	seen := <-headers
	assert.Equal(t, config.UserAgent, seen.Get(config.HeaderUserAgent))
	assert.True(t, strings.HasPrefix(seen.Get(config.HeaderAccept), "text/vcard"))

	require.Len(t, res.Contacts, 1, "cards without BDAY are skipped")
	c := res.Contacts[0]
	assert.Equal(t, "John Doe", c.Name)
	assert.Equal(t, lunar.LunarDate{Year: 1990, Month: 5, Day: 23}, c.LunarBirth)
	assert.Equal(t, date(2025, 6, 18), c.NextOccurrence)
	assert.Contains(t, string(res.ICS), "DTSTART;VALUE=DATE:20250618")
}

func TestAddressBookFetcher_EmptyBook(t *testing.T) {
	ts := cardDAV(t, "text/vcard", "")

	res, err := syncFrom(engine.NewAddressBookFetcher(), ts.URL, "alice", "s3cret")
	require.NoError(t, err)
	assert.Empty(t, res.Contacts)
	assert.Equal(t, 0, res.Events)
}

func TestAddressBookFetcher_WrongCredentials(t *testing.T) {
	ts := cardDAV(t, "text/vcard", card("John Doe", "1990-06-15"))

	_, err := syncFrom(engine.NewAddressBookFetcher(), ts.URL, "alice", "wrong")
	require.Error(t, err)
	assert.ErrorContains(t, err, config.ErrHTTPStatus)
	assert.ErrorContains(t, err, "401")
}

func TestAddressBookFetcher_NotAnAddressBook(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"Login page", "text/html; charset=utf-8", "<html><body>Sign in</body></html>"},
		{"XHTML page", "application/xhtml+xml", "<?xml version=\"1.0\"?><html/>"},
		{"Mislabelled page", "text/plain", "<!DOCTYPE html><html></html>"},
		{"Calendar instead of contacts", "text/calendar", "BEGIN:VCALENDAR\nEND:VCALENDAR\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := cardDAV(t, tt.contentType, tt.body)

			rc, err := engine.NewAddressBookFetcher().Fetch(context.Background(), ts.URL, "alice", "s3cret")
			assert.ErrorIs(t, err, engine.ErrNotAddressBook)
			assert.Nil(t, rc)
		})
	}
}

func TestAddressBookFetcher_SizeCap(t *testing.T) {
	one := card("John Doe", "1990-06-15") + "\n"

	t.Run("Exactly at the cap", func(t *testing.T) {
		ts := cardDAV(t, "text/vcard", one)
		f := engine.NewAddressBookFetcher()
		f.MaxBytes = int64(len(one))

		res, err := syncFrom(f, ts.URL, "alice", "s3cret")
		require.NoError(t, err)
		assert.Len(t, res.Contacts, 1)
	})

	t.Run("Past the cap", func(t *testing.T) {
		ts := cardDAV(t, "text/vcard", strings.Repeat(one, 3))
		f := engine.NewAddressBookFetcher()
		f.MaxBytes = int64(len(one)) + 10

		res, err := syncFrom(f, ts.URL, "alice", "s3cret")
		assert.ErrorIs(t, err, engine.ErrAddressBookTooLarge, "a cut-off book must not publish fewer birthdays")
		assert.Nil(t, res)
	})
}

func TestAddressBookFetcher_RejectedBeforeRequest(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"Malformed URL", string([]byte{0x7f}), config.ErrInvalidURL},
		{"FTP", "ftp://example.com/contacts.vcf", config.ErrProtocol},
		{"Local file", "file:///etc/passwd", config.ErrProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.NewAddressBookFetcher().Fetch(context.Background(), tt.url, "", "")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
