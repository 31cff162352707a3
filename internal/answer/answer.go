// Package answer builds extractive chat replies from indexed document chunks.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ragchat/widget/internal/index"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// NoMatchResponse is returned when no indexed chunk matches the question.
const NoMatchResponse = "I don't know based on the available information."

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("message must not be empty")

const maxExcerptSentences = 2

// Searcher retrieves the chunks most relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.Chunk, error)
}

// Answerer answers questions from the chunk index.
type Answerer struct {
	search Searcher
	topK   int
	logger *zap.Logger
}

func New(search Searcher, topK int, logger *zap.Logger) *Answerer {
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{search: search, topK: topK, logger: logger}
}

// Ask retrieves the top chunks for question and quotes the sentences that
// mention its terms, one paragraph per chunk. Sources lists each distinct
// filename once, in rank order.
func (a *Answerer) Ask(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	chunks, err := a.search.Search(ctx, question, a.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	a.logger.Debug("retrieved chunks", zap.Int("count", len(chunks)))

	if len(chunks) == 0 {
		return &models.Answer{Response: NoMatchResponse, Sources: []string{}}, nil
	}

	terms := index.Terms(question)
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	paragraphs := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.Filename]; !ok {
			seen[c.Filename] = struct{}{}
			sources = append(sources, c.Filename)
		}
		paragraphs = append(paragraphs, fmt.Sprintf("**%s**: %s", c.Filename, Excerpt(c.Text, terms)))
	}

	return &models.Answer{Response: strings.Join(paragraphs, "\n\n"), Sources: sources}, nil
}

// Excerpt returns up to two sentences of text that mention any of terms,
// falling back to the first sentence.
func Excerpt(text string, terms []string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	var picked []string
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				picked = append(picked, s)
				break
			}
		}
		if len(picked) == maxExcerptSentences {
			break
		}
	}
	if len(picked) == 0 {
		picked = sentences[:1]
	}
	return strings.Join(picked, " ")
}

func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
