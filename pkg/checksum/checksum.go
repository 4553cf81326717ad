// Package checksum computes hex digests of files, in-memory data and streams.
package checksum

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a digest algorithm, e.g. "SHA-256". Matching is case-insensitive.
type Algorithm string

const (
	SHA1       Algorithm = "SHA-1"
	SHA256     Algorithm = "SHA-256"
	SHA384     Algorithm = "SHA-384"
	SHA512     Algorithm = "SHA-512"
	SHA3_256   Algorithm = "SHA3-256"
	SHA3_512   Algorithm = "SHA3-512"
	BLAKE2b256 Algorithm = "BLAKE2B-256"
	BLAKE2b512 Algorithm = "BLAKE2B-512"

	Default = SHA256
)

var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

var algorithms = map[Algorithm]func() hash.Hash{
	SHA1:     sha1.New,
	SHA256:   sha256.New,
	SHA384:   sha512.New384,
	SHA512:   sha512.New,
	SHA3_256: func() hash.Hash { return sha3.New256() },
	SHA3_512: func() hash.Hash { return sha3.New512() },
	BLAKE2b256: func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	BLAKE2b512: func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
}

// Algorithms lists the supported algorithm names.
func Algorithms() []Algorithm {
	return []Algorithm{SHA1, SHA256, SHA384, SHA512, SHA3_256, SHA3_512, BLAKE2b256, BLAKE2b512}
}

// New returns a fresh hash for algo. An empty name selects Default.
func New(algo Algorithm) (hash.Hash, error) {
	if algo == "" {
		algo = Default
	}
	newHash, ok := algorithms[Algorithm(strings.ToUpper(string(algo)))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algo)
	}
	return newHash(), nil
}

// Hex digests data.
func Hex(data []byte, algo Algorithm) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// StringHex digests the UTF-8 bytes of text.
func StringHex(text string, algo Algorithm) (string, error) {
	return Hex([]byte(text), algo)
}

// ReaderHex digests everything read from r without buffering it in memory.
func ReaderHex(r io.Reader, algo Algorithm) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrap(err, "failed to read data to hash")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileHex digests the contents of the file at path.
func FileHex(path string, algo Algorithm) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file to hash")
	}
	defer file.Close()
	return ReaderHex(file, algo)
}

// ChunksHex digests chunks as they arrive until the channel is closed.
func ChunksHex(ctx context.Context, chunks <-chan []byte, algo Algorithm) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				return hex.EncodeToString(h.Sum(nil)), nil
			}
			h.Write(chunk)
		}
	}
}
