package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/ragchat/widget/internal/models"
	"github.com/ragchat/widget/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, string, int) ([]models.Chunk, error) {
	return nil, errors.New("index closed")
}

func TestExcerpt(t *testing.T) {
	text := "I live in Berlin. I like climbing.\nMy favourite language is Go! Do you climb?"

	assert.Equal(t, "I like climbing. Do you climb?", Excerpt(text, []string{"climb"}))
	assert.Equal(t, "I live in Berlin.", Excerpt(text, []string{"kotlin"}))
	assert.Equal(t, "no terminal punctuation", Excerpt("no terminal  punctuation", nil))
	assert.Equal(t, "", Excerpt("   ", nil))
}

func TestAsk(t *testing.T) {
	idx := &testutil.MockIndex{Chunks: []models.Chunk{
		{ID: "1-0", FileID: "1", Filename: "resume.md", Text: "Built Kafka pipelines. Enjoys hiking."},
		{ID: "1-1", FileID: "1", Filename: "resume.md", Text: "Led a Kafka migration at Acme."},
		{ID: "2-0", FileID: "2", Filename: "notes.txt", Text: "Kafka retention is seven days."},
	}}
	a := New(idx, 3, nil)

	got, err := a.Ask(context.Background(), "  Tell me about Kafka  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"resume.md", "notes.txt"}, got.Sources)
	assert.Equal(t,
		"**resume.md**: Built Kafka pipelines.\n\n"+
			"**resume.md**: Led a Kafka migration at Acme.\n\n"+
			"**notes.txt**: Kafka retention is seven days.",
		got.Response)
}

func TestAsk_NoMatch(t *testing.T) {
	a := New(&testutil.MockIndex{}, 0, nil)

	got, err := a.Ask(context.Background(), "anything relevant?")
	require.NoError(t, err)
	assert.Equal(t, NoMatchResponse, got.Response)
	assert.Empty(t, got.Sources)
	assert.NotNil(t, got.Sources)
}

func TestAsk_Errors(t *testing.T) {
	_, err := New(&testutil.MockIndex{}, 3, nil).Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = New(failingSearcher{}, 3, nil).Ask(context.Background(), "kafka")
	assert.ErrorContains(t, err, "index closed")
}
