package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/pkg/quickxorhash"
)

// ComputeAudit returns a full-content QuickXorHash digest of the file at
// path, in lowercase hex. It is not used for move detection (Compute's
// windowed SHA-256 is), and no CLI command or flag calls it. As a second,
// full-file hash it tells apart two files that share identical size, head,
// and tail but differ in the middle.
func ComputeAudit(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", catalog.ErrIO, path, err)
	}
	defer f.Close()

	h := quickxorhash.New()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", catalog.ErrIO, path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
