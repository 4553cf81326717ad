package download

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnteWall/go-shellkit/internal/testhttp"
	"github.com/AnteWall/go-shellkit/pkg/checksum"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateTempDir points os.TempDir at a directory removed after the test.
func isolateTempDir(t *testing.T) {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestToTempDir_TextFile(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.NewStatic([]byte("Hello world!"), testhttp.AttachmentHeaders("text/plain", "test_file.txt"))
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/"))

	require.NoError(t, err)
	assert.Equal(t, "test_file.txt", filepath.Base(path))
	assert.True(t, strings.HasPrefix(filepath.Base(filepath.Dir(path)), tempDirPrefix))
	assert.Equal(t, "Hello world!", readFile(t, path))
}

func TestToTempDir_LargeBinary(t *testing.T) {
	isolateTempDir(t)
	body := testhttp.DeterministicBytes(32 << 20)
	srv := testhttp.NewStatic(body, testhttp.AttachmentHeaders("application/octet-stream", "test_file.bin"))
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/"))
	require.NoError(t, err)

	want, err := checksum.Hex(body, checksum.SHA256)
	require.NoError(t, err)
	got, err := checksum.FileHex(path, checksum.SHA256)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFile_MakesUpNameWhenNothingSensible(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.NewStatic([]byte("anonymous"), nil)
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URLOrigin)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "download-"), path)
	assert.Equal(t, "anonymous", readFile(t, path))
}

func TestFile_NameFromURLPath(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.NewStatic([]byte("archive"), nil)
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/releases/v1/tool.tar.gz"))

	require.NoError(t, err)
	assert.Equal(t, "tool.tar.gz", filepath.Base(path))
}

func TestFile_NameIgnoresQuery(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.NewStatic([]byte("binary"), nil)
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/download?os=darwin"))

	require.NoError(t, err)
	assert.Equal(t, "download", filepath.Base(path))
}

func TestFile_AttachmentNameBeatsURL(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.NewStatic([]byte("x"), testhttp.AttachmentHeaders("text/plain", "from-header.txt"))
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/from-url.txt"))

	require.NoError(t, err)
	assert.Equal(t, "from-header.txt", filepath.Base(path))
}

func TestFile_ExplicitFilenameWins(t *testing.T) {
	dir := t.TempDir()
	srv := testhttp.NewStatic([]byte("x"), testhttp.AttachmentHeaders("text/plain", "from-header.txt"))
	defer srv.Close()

	path, err := File(context.Background(), Options{
		URL:      srv.URL("/from-url.txt"),
		Location: Location{Dir: dir, Filename: "chosen.txt"},
	})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chosen.txt"), path)
}

func TestFile_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	srv := testhttp.NewStatic([]byte("nested"), nil)
	defer srv.Close()

	path, err := File(context.Background(), Options{URL: srv.URL("/n.txt"), Location: Location{Dir: dir}})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "n.txt"), path)
	assert.Equal(t, "nested", readFile(t, path))
}

func TestFile_CurrentDir(t *testing.T) {
	t.Chdir(t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	srv := testhttp.NewStatic([]byte("here"), nil)
	defer srv.Close()

	path, err := File(context.Background(), Options{URL: srv.URL("/here.txt"), Location: Location{Special: CurrentDir}})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "here.txt"), path)
}

func TestFile_Mode(t *testing.T) {
	dir := t.TempDir()
	srv := testhttp.NewStatic([]byte("secret"), nil)
	defer srv.Close()

	path, err := File(context.Background(), Options{URL: srv.URL("/key"), Location: Location{Dir: dir}, Mode: 0o600})

	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFile_OverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(existing, []byte("a much longer previous content"), 0o644))
	srv := testhttp.NewStatic([]byte("short"), nil)
	defer srv.Close()

	path, err := File(context.Background(), Options{URL: srv.URL("/f.txt"), Location: Location{Dir: dir}})

	require.NoError(t, err)
	assert.Equal(t, "short", readFile(t, path))
}

func TestFile_NoLocation(t *testing.T) {
	srv := testhttp.NewStatic([]byte("x"), nil)
	defer srv.Close()

	_, err := File(context.Background(), Options{URL: srv.URL("/x")})

	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestFile_NotFound(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.NewFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nothing here", http.StatusNotFound)
	})
	defer srv.Close()

	_, err := ToTempDir(context.Background(), srv.URL("/missing.txt"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTP)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "Not Found", httpErr.StatusText)
	assert.Contains(t, err.Error(), "nothing here")
	assert.Contains(t, err.Error(), "status 404")
}

func TestFile_FollowsRedirectsKeepingOriginalName(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.New(func(router *mux.Router) {
		router.Path("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("redirected"))
		})
		router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		})
	})
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/test_file.txt"))

	require.NoError(t, err)
	assert.Equal(t, "test_file.txt", filepath.Base(path))
	assert.Equal(t, "redirected", readFile(t, path))
}

func TestFile_RedirectUsesFinalHeaders(t *testing.T) {
	isolateTempDir(t)
	srv := testhttp.New(func(router *mux.Router) {
		router.Path("/real").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Disposition", `attachment; filename="final.bin"`)
			w.Write([]byte("final"))
		})
		router.Path("/latest").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/real", http.StatusFound)
		})
	})
	defer srv.Close()

	path, err := ToTempDir(context.Background(), srv.URL("/latest"))

	require.NoError(t, err)
	assert.Equal(t, "final.bin", filepath.Base(path))
}

func TestOpen_ReportsFinalURLAndHeaders(t *testing.T) {
	srv := testhttp.New(func(router *mux.Router) {
		router.Path("/real").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Served-By", "real")
			w.Write([]byte("body"))
		})
		router.Path("/latest").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/real", http.StatusFound)
		})
	})
	defer srv.Close()

	resp, err := Open(context.Background(), nil, srv.URL("/latest"), nil)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, srv.URL("/real"), resp.FinalURL)
	assert.Equal(t, "real", resp.Header.Get("X-Served-By"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
}

func TestFile_SendsHeaders(t *testing.T) {
	dir := t.TempDir()
	srv := testhttp.NewFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	})
	defer srv.Close()

	path, err := File(context.Background(), Options{
		URL:      srv.URL("/private"),
		Location: Location{Dir: dir},
		Header:   http.Header{"Authorization": []string{"Bearer token"}},
		Client:   srv.Client(),
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", readFile(t, path))
}

func TestFile_CanceledContext(t *testing.T) {
	srv := testhttp.NewStatic([]byte("x"), nil)
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := File(ctx, Options{URL: srv.URL("/x"), Location: Location{Dir: t.TempDir()}})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestInferFilename(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		disposition string
		want        string
	}{
		{"origin only", "http://example.com", "", ""},
		{"root path", "http://example.com/", "", ""},
		{"plain path", "http://example.com/a/b/tool.zip", "", "tool.zip"},
		{"trailing slash", "http://example.com/a/dir/", "", "dir"},
		{"query and fragment", "http://example.com/download?os=linux#x", "", "download"},
		{"escaped path", "http://example.com/my%20file.txt", "", "my%20file.txt"},
		{"escaped slash", "http://example.com/a%2Fb", "", "a%2Fb"},
		{"escaped slash before trailing slash", "http://example.com/dir/a%2Fb/", "", "a%2Fb"},
		{"attachment", "http://example.com/a", `attachment; filename="b.txt"`, "b.txt"},
		{"attachment with directories", "http://example.com/a", `attachment; filename="dir/sub/c.txt"`, "c.txt"},
		{"attachment with windows path", "http://example.com/a", `attachment; filename="C:\\tmp\\d.txt"`, "d.txt"},
		{"encoded attachment", "http://example.com/a", `attachment; filename*=UTF-8''na%C3%AFve.txt`, "naïve.txt"},
		{"attachment without filename", "http://example.com/a.txt", "attachment", "a.txt"},
		{"malformed disposition", "http://example.com/e.txt", `attachment; filename=`, "e.txt"},
		{"dot dot", "http://example.com/x", `attachment; filename=".."`, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.disposition != "" {
				header.Set("Content-Disposition", tt.disposition)
			}
			assert.Equal(t, tt.want, InferFilename(tt.url, header))
		})
	}
}
