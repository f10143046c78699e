package encryption

import (
	"fmt"
	"io"

	"salli-go/internal/salli"
)

// PlainEncryptor stores snapshots as-is. It backs encryption type "none".
type PlainEncryptor struct{}

func (PlainEncryptor) Setup(string) error {
	return fmt.Errorf("encryption is disabled (type \"none\")")
}

func (PlainEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (PlainEncryptor) Unlock(string) (salli.DecryptionContext, error) {
	return plainContext{}, nil
}

func (PlainEncryptor) IsConfigured() bool { return true }

type plainContext struct{}

func (plainContext) Decrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

var _ salli.Encryptor = PlainEncryptor{}
