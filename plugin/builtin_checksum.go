package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// checksumHandler backs `v#checksum://sha256` and `v#checksum://xxh3`.
// Grounded on the teacher's fulhash package, which wraps both digests
// behind a single Options.Algorithm switch; here the algorithm is chosen
// by the plugin args rather than an Options struct, since the rule
// document is the only configuration surface a plugin reference has.
type checksumHandler struct {
	algorithm string
}

func newChecksumHandler(args string) (Handler, error) {
	algo := strings.TrimSpace(args)
	switch algo {
	case "sha256", "xxh3":
		return &checksumHandler{algorithm: algo}, nil
	default:
		return nil, fmt.Errorf("checksum: unsupported algorithm %q, want \"sha256\" or \"xxh3\"", algo)
	}
}

func (h *checksumHandler) digest(data []byte) string {
	switch h.algorithm {
	case "xxh3":
		sum := xxh3.Hash128(data)
		b := sum.Bytes()
		return hex.EncodeToString(b[:])
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

func (h *checksumHandler) sidecarPath(path string) string {
	return path + "." + h.algorithm
}

// ValidateRaw computes the digest of data and compares it against the
// hex digest recorded in the path's `.sha256`/`.xxh3` sidecar. The
// sidecar is expected to hold the hex digest, optionally followed by
// whitespace and a filename (the conventional `sha256sum` output shape),
// matching what sha256sum/xxh3sum-style tools emit.
func (h *checksumHandler) ValidateRaw(path string, data []byte, readSibling SiblingReader) (Result, error) {
	sidecar := h.sidecarPath(path)
	raw, err := readSibling(sidecar)
	if err != nil {
		return Result{"": {fmt.Sprintf("missing checksum sidecar %q: %v", sidecar, err)}}, nil
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return Result{"": {fmt.Sprintf("checksum sidecar %q is empty", sidecar)}}, nil
	}
	want := strings.ToLower(strings.TrimSpace(fields[0]))
	got := h.digest(data)
	if want != got {
		return Result{"": {fmt.Sprintf("%s checksum mismatch: sidecar says %s, computed %s", h.algorithm, want, got)}}, nil
	}
	return nil, nil
}

func init() {
	Register("checksum", newChecksumHandler)
}
