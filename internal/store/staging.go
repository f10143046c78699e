package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"salli-go/internal/model"
	"salli-go/internal/salli"
)

// ErrObjectTooLarge is returned by Put when content exceeds the store's
// configured maximum object size.
var ErrObjectTooLarge = errors.New("object exceeds maximum size")

// stageObject copies r into a new temp file under dir while digesting it.
// The caller owns the returned file and must remove it. A maxSize of zero
// means no limit.
func stageObject(dir string, r io.Reader, maxSize int64) (string, model.Digests, int64, error) {
	tmp, err := os.CreateTemp(dir, ".stage-*")
	if err != nil {
		return "", model.Digests{}, 0, fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}

	digests, size, err := salli.ComputeDigests(io.TeeReader(src, tmp))
	if err != nil {
		tmp.Close()
		return "", model.Digests{}, 0, fmt.Errorf("staging content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", model.Digests{}, 0, fmt.Errorf("failed to close staging file: %w", err)
	}
	if maxSize > 0 && size > maxSize {
		return "", model.Digests{}, 0, fmt.Errorf("%w: more than %d bytes", ErrObjectTooLarge, maxSize)
	}

	success = true
	return tmpPath, digests, size, nil
}
