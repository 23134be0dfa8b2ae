package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrFetch means a remote playlist could not be retrieved (transport failure or non-2xx).
	ErrFetch = errors.New("could not retrieve playlist")
	// ErrTooLarge is returned when a playlist body exceeds the read limit.
	ErrTooLarge = errors.New("playlist too large")
)

// DefaultMaxBytes bounds how much playlist text is read from a body or upload.
const DefaultMaxBytes int64 = 32 << 20

var reM3UExt = regexp.MustCompile(`(?i)\.m3u8?$`)

// FetchPlaylist downloads the playlist text at rawURL.
// userAgent is optional. Every failure wraps ErrFetch, and errors name the
// host only since playlist URLs often carry credentials in the query.
func FetchPlaylist(ctx context.Context, rawURL string, userAgent string, timeout time.Duration) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url: %v", ErrFetch, stripURL(err))
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	host := req.URL.Host
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: host=%s: %v", ErrFetch, host, stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d from host=%s", ErrFetch, resp.StatusCode, host)
	}
	body, err := ReadPlaylist(resp.Body, DefaultMaxBytes)
	if err != nil {
		// ErrTooLarge stays out of the chain; this is not an oversized request.
		return "", fmt.Errorf("%w: host=%s: %v", ErrFetch, host, stripURL(err))
	}
	return body, nil
}

// stripURL drops the *url.Error wrapper, whose message quotes the full URL.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// ReadPlaylist reads at most limit bytes of playlist text from r.
// A non-positive limit means DefaultMaxBytes.
func ReadPlaylist(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("ReadAll: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return string(data), nil
}

// PlaylistNameFromFile derives a playlist name from an uploaded file name by
// dropping directories and a trailing .m3u or .m3u8 extension.
func PlaylistNameFromFile(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	base := path.Base(filename)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSpace(reM3UExt.ReplaceAllString(base, ""))
}
