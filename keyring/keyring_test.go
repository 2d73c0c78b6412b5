package keyring

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rkost/transmission/common"
)

func useTempLocalStore(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	initOnce.Do(func() {})
	useLocalStorage = true
	initLocalStorage()
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	useTempLocalStore(t)

	plaintext := []byte(`{"admin":"hunter2"}`)
	encrypted, err := encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(encrypted, []byte("hunter2")) {
		t.Fatal("ciphertext leaks plaintext")
	}

	decrypted, err := decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip mismatch: %q", decrypted)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	useTempLocalStore(t)

	if _, err := decrypt([]byte("bm90IGEgY2lwaGVydGV4dA==")); err == nil {
		t.Error("short ciphertext accepted")
	}
	if _, err := decrypt([]byte("not base64 at all!")); err == nil {
		t.Error("invalid base64 accepted")
	}
}

func TestStoreGetDelete(t *testing.T) {
	useTempLocalStore(t)

	if err := Store("admin", "secret"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := Get("admin")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "secret" {
		t.Errorf("Get = %q, want secret", got)
	}
	if !Exists("admin") {
		t.Error("Exists = false for stored credential")
	}

	if err := Delete("admin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get("admin"); !errors.Is(err, common.ErrCredentialsNotFound) {
		t.Errorf("Get after delete: %v, want ErrCredentialsNotFound", err)
	}
	if Exists("admin") {
		t.Error("Exists = true after delete")
	}
}

func TestEmptyArgumentsRejected(t *testing.T) {
	useTempLocalStore(t)

	if err := Store("", "pw"); err == nil {
		t.Error("empty username accepted")
	}
	if err := Store("user", ""); err == nil {
		t.Error("empty password accepted")
	}
	if _, err := Get(""); err == nil {
		t.Error("empty username accepted by Get")
	}
	if err := Delete(""); err == nil {
		t.Error("empty username accepted by Delete")
	}
}

func TestLocalStorePersistsAcrossReload(t *testing.T) {
	useTempLocalStore(t)

	if err := Store("admin", "secret"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Simulate a fresh process by dropping the in-memory copy.
	localStore = make(map[string]string)
	loadLocalStore()

	got, err := Get("admin")
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got != "secret" {
		t.Errorf("Get after reload = %q", got)
	}
}
