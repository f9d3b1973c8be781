package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	return path
}

func TestCompute_DeterministicForSameContent(t *testing.T) {
	dir := t.TempDir()

	content := []byte(strings.Repeat("hello world ", 100))
	a := writeFile(t, dir, "a.bin", content)
	b := writeFile(t, dir, "b.bin", content)

	fpA, err := Compute(a)
	require.NoError(t, err)

	fpB, err := Compute(b)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB, "identical content at different paths must fingerprint identically")
	assert.Len(t, fpA, 64, "sha256 hex digest is 64 chars")
}

func TestCompute_DiffersOnContentChange(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.bin", []byte("version one"))
	fpA, err := Compute(a)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("version two, a bit longer"), 0o644))

	fpA2, err := Compute(a)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpA2)
}

func TestCompute_SmallFileUsesPrefixOnly(t *testing.T) {
	dir := t.TempDir()

	// Well under the 64KiB window: head and tail would be identical reads,
	// so the implementation must feed the content exactly once.
	small := writeFile(t, dir, "small.txt", []byte("tiny"))

	fp, err := Compute(small)
	require.NoError(t, err)
	assert.Len(t, fp, 64)
}

func TestCompute_LargeFileCoversHeadAndTailDistinctly(t *testing.T) {
	dir := t.TempDir()

	size := windowSize*2 + 1024

	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i % 256)
	}

	path := writeFile(t, dir, "large.bin", content)

	fp, err := Compute(path)
	require.NoError(t, err)
	require.Len(t, fp, 64)

	// Mutating only the middle of the file (outside both windows) must not
	// change the fingerprint, since only size+head+tail are hashed.
	mutated := make([]byte, size)
	copy(mutated, content)
	mutated[size/2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, mutated, 0o644))

	fp2, err := Compute(path)
	require.NoError(t, err)
	assert.Equal(t, fp, fp2, "changes confined to the unhashed middle region must not affect the fingerprint")
}

func TestCompute_SizeIsPartOfTheDigest(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.bin", []byte("aaaa"))
	b := writeFile(t, dir, "b.bin", []byte("aaaaaaaa"))

	fpA, err := Compute(a)
	require.NoError(t, err)

	fpB, err := Compute(b)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
}

func TestCompute_MissingFile(t *testing.T) {
	_, err := Compute("/nonexistent/path/does/not/exist")
	assert.Error(t, err)
}

func TestComputeAudit_DeterministicForSameContent(t *testing.T) {
	dir := t.TempDir()

	content := []byte(strings.Repeat("audit ", 5000))
	a := writeFile(t, dir, "a.bin", content)
	b := writeFile(t, dir, "b.bin", content)

	digestA, err := ComputeAudit(a)
	require.NoError(t, err)

	digestB, err := ComputeAudit(b)
	require.NoError(t, err)

	assert.Equal(t, digestA, digestB)
	assert.Len(t, digestA, 40, "quickxorhash is a 20-byte digest, 40 hex chars")
}
