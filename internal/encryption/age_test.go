package encryption

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"salli-go/internal/config"
)

const passphrase = "correct horse battery staple"

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "salli.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "salli.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()

	t.Run("creates both key files", func(t *testing.T) {
		t.Parallel()
		e := newTestAgeEncryptor(t)
		if e.IsConfigured() {
			t.Fatal("IsConfigured() = true before Setup")
		}
		if err := e.Setup(passphrase); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if !e.IsConfigured() {
			t.Error("IsConfigured() = false after Setup")
		}

		info, err := os.Stat(e.identityPath)
		if err != nil {
			t.Fatalf("private key missing: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("private key mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("refuses to replace keys", func(t *testing.T) {
		t.Parallel()
		e := newTestAgeEncryptor(t)
		if err := e.Setup(passphrase); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		before, _ := os.ReadFile(e.recipientPath)

		if err := e.Setup("another"); !errors.Is(err, ErrKeysExist) {
			t.Errorf("second Setup() error = %v, want ErrKeysExist", err)
		}
		after, _ := os.ReadFile(e.recipientPath)
		if !bytes.Equal(before, after) {
			t.Error("public key changed after refused Setup")
		}
	})

	t.Run("rejects empty passphrase", func(t *testing.T) {
		t.Parallel()
		e := newTestAgeEncryptor(t)
		if err := e.Setup(""); err == nil {
			t.Error("Setup(\"\") expected error")
		}
		if e.IsConfigured() {
			t.Error("IsConfigured() = true after failed Setup")
		}
	})
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if err := e.Setup(passphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	dc, err := e.Unlock(passphrase)
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"sqlite header", []byte("SQLite format 3\x00")},
		{"empty", []byte{}},
		{"large", bytes.Repeat([]byte("ledger"), 20000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(sealed.Bytes(), tt.input) {
				t.Error("ciphertext contains the plaintext")
			}

			var plain bytes.Buffer
			if err := dc.Decrypt(&sealed, &plain); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plain.Bytes(), tt.input) {
				t.Errorf("round trip returned %d bytes, want %d", plain.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_Unlock(t *testing.T) {
	t.Parallel()

	t.Run("wrong passphrase", func(t *testing.T) {
		t.Parallel()
		e := newTestAgeEncryptor(t)
		if err := e.Setup(passphrase); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if _, err := e.Unlock("wrong"); err == nil {
			t.Error("Unlock() with wrong passphrase should fail")
		}
	})

	t.Run("before setup", func(t *testing.T) {
		t.Parallel()
		e := newTestAgeEncryptor(t)
		if _, err := e.Unlock(passphrase); err == nil {
			t.Error("Unlock() before Setup should fail")
		}
		var buf bytes.Buffer
		if err := e.Encrypt(bytes.NewReader([]byte("x")), &buf); err == nil {
			t.Error("Encrypt() before Setup should fail")
		}
	})
}

func TestSealFile_OpenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "ledger.db")
	sealed := filepath.Join(dir, "ledger.db.age")
	restored := filepath.Join(dir, "restored.db")
	if err := os.WriteFile(src, []byte("snapshot contents"), 0644); err != nil {
		t.Fatal(err)
	}

	e := newTestAgeEncryptor(t)
	if err := e.Setup(passphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := SealFile(e, src, sealed); err != nil {
		t.Fatalf("SealFile() error = %v", err)
	}

	dc, err := e.Unlock(passphrase)
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := OpenFile(dc, sealed, restored); err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}

	got, _ := os.ReadFile(restored)
	if string(got) != "snapshot contents" {
		t.Errorf("restored = %q", got)
	}
}

func configWithType(typ string) config.EncryptionConfig {
	return config.EncryptionConfig{Type: typ, PublicKeyPath: "k.pub", PrivateKeyPath: "k.key"}
}
