package answer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// DefaultChatModel is used when GeneratorOptions.Model is empty.
const DefaultChatModel = "gpt-4o-mini"

// DefaultSystemPrompt is the assistant persona. The retrieved context is
// appended after it.
const DefaultSystemPrompt = `You are Archit, a professional and enthusiastic AI assistant. You are a representation of Archit himself, so refer to yourself as "I".

CORE INSTRUCTIONS:
1. Always be professional and enthusiastic.
2. Refer to Archit as "I" (e.g., "I worked on this project...").
3. If asked "who made you", reply EXACTLY: "I was made by Archit Dasgupta designed to handle queries and answer questions on behalf of him during his absence".
4. If asked "what can you do", reply EXACTLY: "I can answer questions about Archit on behalf of him during his absence".
5. Keep your answers concise (around 100 words), but feel free to extend if the explanation demands it.
6. If the answer is not in the context, say you don't know based on the available information.

PRIVACY & GUARDRAILS:
- You ARE AUTHORIZED to provide personal information (like address, phone number, email) ONLY IF the user SPECIFICALLY asks for it.
- Do NOT volunteer personal private information in general summaries or unprompted.
- You strictly DO NOT support or discuss: sexual content, harmful messages, medical advice, or criminal activity.`

// ErrMissingAPIKey is returned by NewGenerator without an API key.
var ErrMissingAPIKey = errors.New("missing OpenAI API key")

// GeneratorOptions configures the chat model backend.
type GeneratorOptions struct {
	APIKey       string
	BaseURL      string // empty means the OpenAI API
	Model        string
	SystemPrompt string
	TopK         int
	MaxRetries   int
	HTTPClient   *http.Client
}

// Generator answers questions with a chat model grounded on the top
// retrieved chunks.
type Generator struct {
	search Searcher
	client openai.Client
	model  string
	prompt string
	topK   int
	logger *zap.Logger
}

func NewGenerator(search Searcher, opts GeneratorOptions, logger *zap.Logger) (*Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Model == "" {
		opts.Model = DefaultChatModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &Generator{
		search: search,
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
		prompt: opts.SystemPrompt,
		topK:   opts.TopK,
		logger: logger,
	}, nil
}

// Ask retrieves the top chunks for question and has the model answer from
// them. Sources lists each distinct filename once, in rank order.
func (g *Generator) Ask(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	chunks, err := g.search.Search(ctx, question, g.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	docs, sources := buildContext(chunks)

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(g.prompt + "\n\nContext:\n" + docs),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("generating reply: model returned no choices")
	}

	g.logger.Debug("reply generated",
		zap.Int("chunks", len(chunks)),
		zap.Int64("tokens", completion.Usage.TotalTokens))

	return &models.Answer{Response: completion.Choices[0].Message.Content, Sources: sources}, nil
}

// buildContext renders chunks as "---"-separated blocks headed by their
// source filename.
func buildContext(chunks []models.Chunk) (string, []string) {
	var b strings.Builder
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		fmt.Fprintf(&b, "\n---\nSource: %s\n%s\n", c.Filename, c.Text)
		if _, ok := seen[c.Filename]; !ok {
			seen[c.Filename] = struct{}{}
			sources = append(sources, c.Filename)
		}
	}
	return b.String(), sources
}
