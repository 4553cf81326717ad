package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/AnteWall/go-shellkit/pkg/checksum"
	"github.com/AnteWall/go-shellkit/pkg/download"
	"github.com/AnteWall/go-shellkit/pkg/lang"
	"github.com/AnteWall/go-shellkit/pkg/shell"
	"github.com/pkg/errors"
)

var ErrChecksumMismatch = errors.New("checksum mismatch")

// Fetcher downloads manifests.
type Fetcher struct {
	Client *http.Client
	Shell  *shell.Runner

	logger *slog.Logger
}

func New() *Fetcher {
	return &Fetcher{
		Client: http.DefaultClient,
		Shell:  shell.New(),
		logger: slog.Default().WithGroup("fetch"),
	}
}

// FetchAll downloads every file in m concurrently and returns their paths in
// manifest order. The first failure cancels the downloads still running.
func (f *Fetcher) FetchAll(ctx context.Context, m Manifest) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make([]lang.Entry[string], len(m.Files))
	for i, e := range m.Files {
		fetched := lang.Go(ctx, func(ctx context.Context) (string, error) {
			return f.fetch(ctx, m, e)
		})
		entries[i] = lang.Entry[string]{Key: strconv.Itoa(i) + ":" + e.URL, Value: fetched}
	}

	resolved, err := lang.Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(resolved))
	for i, r := range resolved {
		paths[i] = r.Value
	}
	f.logger.Info("Fetched manifest", slog.Int("files", len(paths)))
	return paths, nil
}

func (f *Fetcher) fetch(ctx context.Context, m Manifest, e Entry) (string, error) {
	mode, err := e.fileMode()
	if err != nil {
		return "", err
	}

	path, err := download.File(ctx, download.Options{
		URL:      e.URL,
		Location: m.location(e),
		Mode:     mode,
		Client:   f.Client,
	})
	if err != nil {
		return "", err
	}

	if e.SHA256 != "" {
		if err := verify(path, e.SHA256); err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				f.logger.Warn("failed to remove unverified download",
					slog.String("path", path),
					slog.String("error", rmErr.Error()))
			}
			return "", err
		}
	}

	if e.Executable {
		if err := f.Shell.MakeFileExecutable(ctx, path); err != nil {
			return "", err
		}
	}

	f.logger.Debug("Fetched file", slog.String("url", e.URL), slog.String("path", path))
	return path, nil
}

func verify(path, want string) error {
	got, err := checksum.FileHex(path, checksum.SHA256)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, want) {
		return errors.Wrapf(ErrChecksumMismatch, "%s: expected sha256 %s, got %s", path, strings.ToLower(want), got)
	}
	return nil
}

// FetchAll downloads m with a default Fetcher.
func FetchAll(ctx context.Context, m Manifest) ([]string, error) {
	return New().FetchAll(ctx, m)
}
