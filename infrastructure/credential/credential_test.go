package credential

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSealAndOpen(t *testing.T) {
	encoded, err := Seal("bearer-token-123", "desk-pass", DefaultParams)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	token, err := Open(encoded, "desk-pass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if token != "bearer-token-123" {
		t.Fatalf("token round trip mismatch: %q", token)
	}

	if _, err := Open(encoded, "wrong"); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := Open("not-an-envelope", "pass"); err == nil {
		t.Fatal("expected format error")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.cred")
	if err := SaveFile(path, "tok", "pass"); err != nil {
		t.Fatalf("save file: %v", err)
	}
	token, err := LoadFile(path, "pass")
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if token != "tok" {
		t.Fatalf("loaded token = %q", token)
	}
}
