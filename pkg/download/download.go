// Package download fetches remote files to disk, inferring a sensible filename
// when the caller does not give one.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/AnteWall/go-shellkit/pkg/lang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	DefaultMode os.FileMode = 0o644

	tempDirPrefix = "shellkit_download"
	maxErrorBody  = 64 << 10
)

var (
	ErrNoLocation = errors.New("download location has neither a directory nor a special directory")
	// ErrHTTP matches every *HTTPError.
	ErrHTTP = errors.New("http request failed")
)

func logger() *slog.Logger {
	return slog.Default().WithGroup("download")
}

// SpecialDir is a download directory resolved when the download happens.
type SpecialDir int

const (
	NoSpecialDir SpecialDir = iota
	// TempDir is a fresh directory under os.TempDir. The caller owns its cleanup.
	TempDir
	// CurrentDir is the process working directory.
	CurrentDir
)

// Location is where a download is written. Dir wins over Special when both are set.
type Location struct {
	// Dir may be absolute or relative to the working directory.
	Dir     string     `yaml:"dir" json:"dir"`
	Special SpecialDir `yaml:"-" json:"-"`
	// Filename is inferred from the response or URL when empty.
	Filename string `yaml:"filename" json:"filename"`
}

// Options describes one download.
type Options struct {
	URL      string
	Location Location
	// Mode is applied when the file is created. Zero means DefaultMode.
	Mode   os.FileMode
	Header http.Header
	// Client defaults to http.DefaultClient, which follows redirects.
	Client *http.Client
}

// HTTPError is returned for any final response other than 200 OK.
type HTTPError struct {
	URL        string
	StatusCode int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Download of %s failed with status %d - %s: '%s'", e.URL, e.StatusCode, e.StatusText, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// Response is an open download. Header belongs to the final response after
// redirects. The caller must close Body.
type Response struct {
	Body     io.ReadCloser
	Header   http.Header
	FinalURL string
}

// Open performs a GET on rawURL and returns the body for streaming.
func Open(ctx context.Context, client *http.Client, rawURL string, header http.Header) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}
	return &Response{Body: resp.Body, Header: resp.Header, FinalURL: resp.Request.URL.String()}, nil
}

// ToTempDir downloads rawURL into a new temporary directory and returns the
// file's path. The caller is responsible for removing it.
func ToTempDir(ctx context.Context, rawURL string) (string, error) {
	return File(ctx, Options{URL: rawURL, Location: Location{Special: TempDir}})
}

// File downloads opts.URL and streams it to disk, returning the full path of
// the written file.
func File(ctx context.Context, opts Options) (string, error) {
	resp, err := Open(ctx, opts.Client, opts.URL, opts.Header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	downloadPath, err := buildDownloadPath(opts, resp.Header)
	if err != nil {
		return "", err
	}

	mode := opts.Mode
	if mode == 0 {
		mode = DefaultMode
	}
	file, err := os.OpenFile(downloadPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return "", errors.Wrap(err, "failed to create download file")
	}

	logger().Debug("downloading file",
		slog.String("url", opts.URL),
		slog.String("final_url", resp.FinalURL),
		slog.String("path", downloadPath))
	n, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(downloadPath); rmErr != nil {
			logger().Warn("failed to remove partial download", slog.String("path", downloadPath), slog.String("error", rmErr.Error()))
		}
		return "", errors.Wrapf(err, "failed to write %s", downloadPath)
	}
	logger().Debug("download complete", slog.String("path", downloadPath), slog.Int64("bytes", n))
	return downloadPath, nil
}

func buildDownloadPath(opts Options, header http.Header) (string, error) {
	filename := opts.Location.Filename
	if filename == "" {
		filename = InferFilename(opts.URL, header)
	}

	dir, err := resolveDir(opts.Location)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create download directory")
	}

	if filename == "" {
		logger().Warn("unable to infer filename from URL or headers, making one up", slog.String("url", opts.URL))
		filename = "download-" + uuid.NewString()
	}
	return filepath.Join(dir, filename), nil
}

func resolveDir(location Location) (string, error) {
	if location.Dir != "" {
		return location.Dir, nil
	}
	switch location.Special {
	case CurrentDir:
		dir, err := os.Getwd()
		return dir, errors.Wrap(err, "failed to get working directory")
	case TempDir:
		dir, err := os.MkdirTemp("", tempDirPrefix)
		return dir, errors.Wrap(err, "failed to create temp directory")
	default:
		return "", ErrNoLocation
	}
}

// InferFilename picks a filename for a download: the Content-Disposition
// filename when the response suggests one, otherwise the last segment of the
// requested URL's path, still percent-encoded. It returns "" when neither
// yields a name.
//
// rawURL is the URL the caller asked for, not the one a redirect ended on.
func InferFilename(rawURL string, header http.Header) string {
	if disposition := header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := baseName(params["filename"]); name != "" {
				return name
			}
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return baseName(lang.StripSuffix(u.EscapedPath(), "/"))
}

func baseName(p string) string {
	if p == "" {
		return ""
	}
	name := path.Base(strings.ReplaceAll(p, `\`, "/"))
	switch name {
	case ".", "/", "..":
		return ""
	}
	return name
}
