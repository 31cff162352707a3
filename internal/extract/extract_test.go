package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("cv.pdf"))
	assert.True(t, IsPDF("CV.PDF"))
	assert.False(t, IsPDF("cv.pdf.txt"))
	assert.False(t, IsPDF("pdf"))
}

func TestText_PlainDocuments(t *testing.T) {
	got, err := Text("notes.md", strings.NewReader("# Title\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\nbody", got)

	_, err = Text("binary.txt", strings.NewReader("\xff\xfe\x00"))
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestText_InvalidPDF(t *testing.T) {
	_, err := Text("broken.pdf", strings.NewReader("not a pdf"))
	assert.Error(t, err)
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "", 4, []string{}},
		{"shorter than size", "abc", 4, []string{"abc"}},
		{"exact multiple", "abcdefgh", 4, []string{"abcd", "efgh"}},
		{"remainder", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"counts runes not bytes", "ééééé", 2, []string{"éé", "éé", "é"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.text, tt.size))
		})
	}
}

func TestChunk_DefaultSize(t *testing.T) {
	chunks := Chunk(strings.Repeat("x", 2500), 0)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], DefaultChunkSize)
	assert.Len(t, chunks[2], 500)
}
