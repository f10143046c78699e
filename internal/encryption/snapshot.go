package encryption

import (
	"fmt"
	"os"

	"salli-go/internal/salli"
)

// SealFile encrypts src into dst.
func SealFile(enc salli.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// OpenFile decrypts src into dst.
func OpenFile(dc salli.DecryptionContext, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if err := dc.Decrypt(in, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
