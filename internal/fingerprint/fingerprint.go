// Package fingerprint computes the content-based identity used to
// reattach a file record after it has been moved or renamed.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// windowSize is the number of bytes read from the head and (for files
// larger than windowSize) the tail of a file.
const windowSize = 64 * 1024

// Compute returns the lowercase-hex fingerprint of the file at path:
// SHA-256(size ‖ head ‖ tail), where head is the first windowSize bytes
// and tail is the last windowSize bytes. Files no larger than windowSize
// contribute only their full content once; no separate tail read is done,
// since head and tail would otherwise overlap or duplicate the same bytes.
func Compute(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", catalog.ErrIO, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stating %s: %v", catalog.ErrIO, path, err)
	}

	size := info.Size()

	h := sha256.New()

	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(size))
	h.Write(sizeBuf[:])

	head := make([]byte, windowSize)

	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("%w: reading head of %s: %v", catalog.ErrIO, path, err)
	}

	h.Write(head[:n])

	if size > windowSize {
		if _, err := f.Seek(-windowSize, io.SeekEnd); err != nil {
			return "", fmt.Errorf("%w: seeking tail of %s: %v", catalog.ErrIO, path, err)
		}

		tail := make([]byte, windowSize)

		n, err := io.ReadFull(f, tail)
		if err != nil {
			return "", fmt.Errorf("%w: reading tail of %s: %v", catalog.ErrIO, path, err)
		}

		h.Write(tail[:n])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
