package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-lunar/internal/config"
)

var (
	// ErrNotAddressBook reports a response that does not hold vCards, typically
	// the HTML login page of a misconfigured CardDAV server.
	ErrNotAddressBook = errors.New(config.ErrNotAddressBook)

	// ErrAddressBookTooLarge is returned while reading past the size cap, so
	// a cut-off download never yields a silently shorter contact list.
	ErrAddressBookTooLarge = errors.New(config.ErrBookTooLarge)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// VCardFetcher retrieves a remote address book as a vCard stream.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// AddressBookFetcher downloads a CardDAV or WebDAV address book export.
type AddressBookFetcher struct {
	Client *http.Client
	// MaxBytes caps the download; config.MaxHTTPResponseSize when zero.
	MaxBytes int64
}

// NewAddressBookFetcher returns a fetcher bounded by config.HTTPTimeout.
func NewAddressBookFetcher() *AddressBookFetcher {
	return &AddressBookFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch downloads the address book at targetURL and checks that it starts
// with a vCard. The query string, which may carry a token, is kept out of
// the logs.
func (f *AddressBookFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.DebugContext(ctx, config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestCreate, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.AcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.WarnContext(ctx, config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrHTTPStatus, resp.Status)
	}

	if mt, _, err := mime.ParseMediaType(resp.Header.Get(config.HeaderContentType)); err == nil &&
		(mt == config.MimeHTML || mt == config.MimeXHTML) {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotAddressBook, mt)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	body := bufio.NewReader(&cappedReader{r: resp.Body, left: limit})
	if err := skipToFirstCard(body); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	log.InfoContext(ctx, config.MsgFetchBody, slog.Int64(config.LogKeyLength, resp.ContentLength))
	return &addressBook{Reader: body, Closer: resp.Body}, nil
}

// skipToFirstCard drops a byte order mark and checks that the first line
// opens a vCard. An empty body is an empty address book.
func skipToFirstCard(r *bufio.Reader) error {
	if head, _ := r.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = r.Discard(len(utf8BOM))
	}

	// Blank lines before the first card are dropped.
	for {
		b, err := r.Peek(1)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if b[0] != ' ' && b[0] != '\t' && b[0] != '\r' && b[0] != '\n' {
			break
		}
		_, _ = r.Discard(1)
	}

	head, err := r.Peek(len(config.VCardBegin))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !bytes.EqualFold(head, []byte(config.VCardBegin)) {
		return fmt.Errorf("%w: starts with %q", ErrNotAddressBook, head)
	}
	return nil
}

// cappedReader fails with ErrAddressBookTooLarge instead of ending early.
// Its error is sticky so the decoder cannot mistake it for a clean end.
type cappedReader struct {
	r    io.Reader
	left int64
	err  error
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.left <= 0 {
		// One more byte tells a body of exactly the cap from a longer one.
		var one [1]byte
		n, err := c.r.Read(one[:])
		switch {
		case n > 0:
			c.err = ErrAddressBookTooLarge
		case err != nil:
			c.err = err
		}
		return 0, c.err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}

// addressBook reads through the checks but closes the real body.
type addressBook struct {
	io.Reader
	io.Closer
}
