package salli

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"salli-go/internal/model"
)

// ChunkSize is the read size used when digesting a stream.
const ChunkSize = 8192

// minDigestLen is the shortest digest that yields both path prefixes.
const minDigestLen = 4

// ComputeDigests reads r to EOF in fixed-size chunks and returns its SHA-1
// and MD5 digests together with the number of bytes read.
func ComputeDigests(r io.Reader) (model.Digests, int64, error) {
	s1 := sha1.New()
	m5 := md5.New()
	w := io.MultiWriter(s1, m5)

	buf := make([]byte, ChunkSize)
	n, err := io.CopyBuffer(w, onlyReader{r}, buf)
	if err != nil {
		return model.Digests{}, n, fmt.Errorf("reading content: %w", err)
	}

	return model.Digests{
		SHA1: hex.EncodeToString(s1.Sum(nil)),
		MD5:  hex.EncodeToString(m5.Sum(nil)),
	}, n, nil
}

// onlyReader hides WriterTo so io.CopyBuffer honours the chunk size.
type onlyReader struct{ io.Reader }

// ContentPath maps a SHA-1 hex digest to its store-relative path:
// "ab/cd/abcd....ext". ext may be given with or without the leading dot.
func ContentPath(digest, ext string) (string, error) {
	if len(digest) < minDigestLen {
		return "", fmt.Errorf("%w: %q", ErrDigestTooShort, digest)
	}
	if !isLowerHex(digest) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(digest[:2], digest[2:4], digest+ext), nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
