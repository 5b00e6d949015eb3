package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func TestParseReference(t *testing.T) {
	ref, err := ParseReference("v#checksum://sha256")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Name != "checksum" || ref.Args != "sha256" {
		t.Fatalf("got %+v", ref)
	}
}

func TestParseReferenceRejectsNonPluginString(t *testing.T) {
	if _, err := ParseReference("file:///schemas/foo.json"); err == nil {
		t.Fatal("expected an error for a non-plugin reference")
	}
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	Register("test-dup-plugin", func(string) (Handler, error) { return nonemptyHandler{}, nil })
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate registration")
		}
	}()
	Register("test-dup-plugin", func(string) (Handler, error) { return nonemptyHandler{}, nil })
}

func TestDispatchUnknownName(t *testing.T) {
	if _, err := Dispatch(Reference{Name: "does-not-exist"}); err == nil {
		t.Fatal("expected an error for an unregistered plugin name")
	}
}

func TestNonemptyHandler(t *testing.T) {
	h, err := Dispatch(Reference{Name: "nonempty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, ok := h.(RawHandler)
	if !ok {
		t.Fatal("nonempty handler must implement RawHandler")
	}
	if res, err := raw.ValidateRaw("f.txt", []byte("hi"), nil); err != nil || res != nil {
		t.Fatalf("non-empty file should pass, got result=%v err=%v", res, err)
	}
	res, err := raw.ValidateRaw("f.txt", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) == 0 {
		t.Fatal("empty file should fail")
	}
}

func TestChecksumHandlerSHA256(t *testing.T) {
	h, err := Dispatch(Reference{Name: "checksum", Args: "sha256"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := h.(RawHandler)

	data := []byte("hello world")
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	reader := func(path string) ([]byte, error) {
		if path == "f.txt.sha256" {
			return []byte(digest + "  f.txt\n"), nil
		}
		return nil, errors.New("not found")
	}

	if res, err := raw.ValidateRaw("f.txt", data, reader); err != nil || res != nil {
		t.Fatalf("matching checksum should pass, got result=%v err=%v", res, err)
	}

	if res, err := raw.ValidateRaw("f.txt", []byte("tampered"), reader); err != nil || len(res) == 0 {
		t.Fatalf("mismatched checksum should fail, got result=%v err=%v", res, err)
	}
}

func TestChecksumHandlerMissingSidecar(t *testing.T) {
	h, _ := Dispatch(Reference{Name: "checksum", Args: "xxh3"})
	raw := h.(RawHandler)
	reader := func(path string) ([]byte, error) { return nil, errors.New("not found") }
	res, err := raw.ValidateRaw("f.bin", []byte("data"), reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) == 0 {
		t.Fatal("missing sidecar should fail validation, not error")
	}
}

func TestChecksumHandlerRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := Dispatch(Reference{Name: "checksum", Args: "md5"}); err == nil {
		t.Fatal("expected an error for an unsupported algorithm")
	}
}
