// Package fetch downloads a set of files described by a YAML manifest.
//
//	dir: tools
//	files:
//	  - url: https://example.com/releases/tool-linux-amd64
//	    filename: tool
//	    sha256: 2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824
//	    executable: true
//	  - url: https://example.com/LICENSE
package fetch

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AnteWall/go-shellkit/pkg/download"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest lists the files to fetch.
type Manifest struct {
	// Dir is the default directory for entries without one. Empty means a
	// fresh temporary directory per entry.
	Dir   string  `yaml:"dir"`
	Files []Entry `yaml:"files"`

	// baseDir anchors relative directories; set by LoadManifest.
	baseDir string
}

// Entry is a single file to fetch.
type Entry struct {
	URL      string `yaml:"url"`
	Dir      string `yaml:"dir,omitempty"`
	Filename string `yaml:"filename,omitempty"`
	// SHA256 is the expected hex digest of the downloaded file.
	SHA256 string `yaml:"sha256,omitempty"`
	// Mode is an octal permission string such as "0600".
	Mode       string `yaml:"mode,omitempty"`
	Executable bool   `yaml:"executable,omitempty"`
}

// LoadManifest reads and validates the manifest at path. Relative directories
// in it are resolved against the manifest's own directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Wrap(err, "failed to read manifest")
	}
	m, err := Parse(data)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "manifest %s", path)
	}
	m.baseDir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest. Relative directories are resolved
// against the working directory.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrap(err, "failed to decode manifest")
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) Validate() error {
	if len(m.Files) == 0 {
		return errors.Wrap(ErrInvalidManifest, "no files listed")
	}
	for i, e := range m.Files {
		if err := e.validate(); err != nil {
			return errors.Wrapf(err, "files[%d]", i)
		}
	}
	return nil
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.URL) == "" {
		return errors.Wrap(ErrInvalidManifest, "url is required")
	}
	if e.SHA256 != "" {
		if b, err := hex.DecodeString(e.SHA256); err != nil || len(b) != 32 {
			return errors.Wrapf(ErrInvalidManifest, "sha256 %q is not a hex sha256 digest", e.SHA256)
		}
	}
	if _, err := e.fileMode(); err != nil {
		return err
	}
	return nil
}

func (e Entry) fileMode() (os.FileMode, error) {
	if e.Mode == "" {
		return 0, nil
	}
	mode, err := strconv.ParseUint(e.Mode, 8, 32)
	if err != nil || mode > 0o777 {
		return 0, errors.Wrapf(ErrInvalidManifest, "mode %q is not an octal permission", e.Mode)
	}
	return os.FileMode(mode), nil
}

// location picks the entry's directory, falling back to the manifest default
// and then to a temporary directory.
func (m Manifest) location(e Entry) download.Location {
	dir := e.Dir
	if dir == "" {
		dir = m.Dir
	}
	if dir == "" {
		return download.Location{Special: download.TempDir, Filename: e.Filename}
	}
	if !filepath.IsAbs(dir) && m.baseDir != "" {
		dir = filepath.Join(m.baseDir, dir)
	}
	return download.Location{Dir: dir, Filename: e.Filename}
}
