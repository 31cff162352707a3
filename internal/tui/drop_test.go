package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestDroppedPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "alpha")
	b := writeFile(t, dir, "b c.md", "beta")

	t.Run("quoted and escaped paths", func(t *testing.T) {
		got := droppedPaths(a + " '" + b + "'")
		assert.Equal(t, []string{a, b}, got)
	})

	t.Run("one per line", func(t *testing.T) {
		got := droppedPaths(a + "\n" + strings.ReplaceAll(b, " ", `\ `) + "\n")
		assert.Equal(t, []string{a, b}, got)
	})

	t.Run("file url", func(t *testing.T) {
		got := droppedPaths("file://" + a)
		assert.Equal(t, []string{a}, got)
	})

	t.Run("backslash escapes and single quotes", func(t *testing.T) {
		q := writeFile(t, dir, `it\s.txt`, "quoted")
		got := droppedPaths(strings.ReplaceAll(b, " ", `\ `) + " '" + q + "'")
		assert.Equal(t, []string{b, q}, got)
	})

	t.Run("malformed quoting is not a drop", func(t *testing.T) {
		for _, in := range []string{
			"'" + a,
			`"` + b,
			a + `\`,
			a + "\n'" + b,
		} {
			assert.Nil(t, droppedPaths(in), in)
		}
	})

	t.Run("ordinary text is not a drop", func(t *testing.T) {
		assert.Nil(t, droppedPaths("what is in my notes?"))
	})

	t.Run("any missing file rejects the drop", func(t *testing.T) {
		assert.Nil(t, droppedPaths(a+" "+filepath.Join(dir, "missing.txt")))
	})

	t.Run("directories are not files", func(t *testing.T) {
		assert.Nil(t, droppedPaths(dir))
	})
}

func TestDocumentsFromPaths(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "notes.txt", "plain words")
	noExt := writeFile(t, dir, "README", "just some text")
	png := writeFile(t, dir, "image.png", "\x89PNG\r\n\x1a\n")
	pdf := writeFile(t, dir, "report", "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")

	docs, err := documentsFromPaths([]string{txt, noExt, png, pdf})
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.Equal(t, "notes.txt", docs[0].Name)
	assert.Equal(t, "text/plain", docs[0].MIMEType)
	assert.Equal(t, int64(11), docs[0].Size)
	assert.Equal(t, "text/plain", docs[1].MIMEType)
	assert.Equal(t, "image/png", docs[2].MIMEType)
	assert.Equal(t, "application/pdf", docs[3].MIMEType)

	rc, err := docs[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	buf := make([]byte, 32)
	n, _ := rc.Read(buf)
	assert.Equal(t, "plain words", string(buf[:n]))

	_, err = documentsFromPaths([]string{filepath.Join(dir, "gone.txt")})
	assert.Error(t, err)
}
