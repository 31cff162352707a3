package widget

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ragchat/widget/internal/chatclient"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// Bot replies used when a turn does not produce a server response.
const (
	ConnectErrorText = "Error: Could not connect to server."
	TimeoutErrorText = "Error: Request timed out."
	errorPrefix      = "Error: "
)

// KeyEnter is the key name that submits the input.
const KeyEnter = "enter"

// ConversationElements are the page elements owned by a Conversation.
// Indicator and Suggestions are optional.
type ConversationElements struct {
	Transcript  Transcript
	Input       TextInput
	Send        Control
	Indicator   Visibility
	Suggestions Visibility
}

// Conversation runs chat turns against a ChatAPI and keeps the transcript in sync.
type Conversation struct {
	el      ConversationElements
	api     ChatAPI
	timeout time.Duration
	logger  *zap.Logger

	inFlight *Turn
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithChatTimeout bounds each chat request. Zero disables the bound.
func WithChatTimeout(d time.Duration) ConversationOption {
	return func(c *Conversation) {
		c.timeout = d
	}
}

// WithConversationLogger sets the logger used for failed turns.
func WithConversationLogger(l *zap.Logger) ConversationOption {
	return func(c *Conversation) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConversation creates a conversation controller over the given elements.
func NewConversation(el ConversationElements, api ChatAPI, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		el:     el,
		api:    api,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Turn is one outstanding chat request.
type Turn struct {
	Text    string
	api     ChatAPI
	timeout time.Duration
}

// Reply is the outcome of a turn: either the bot response or the failure.
type Reply struct {
	turn *Turn
	Text string
	Err  error
}

// Busy reports whether a turn is outstanding.
func (c *Conversation) Busy() bool {
	return c.inFlight != nil
}

// Begin starts a turn for text. It appends the user message, locks the input,
// hides the suggestions and shows the typing indicator. It returns false when
// text is blank or another turn is outstanding; nothing is changed then.
func (c *Conversation) Begin(text string) (*Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" || c.inFlight != nil {
		return nil, false
	}

	c.el.Transcript.Append(models.UserMessage(text))
	c.el.Transcript.ScrollToBottom()
	c.el.Input.SetValue("")
	c.el.Input.SetEnabled(false)
	if c.el.Send != nil {
		c.el.Send.SetEnabled(false)
	}
	if c.el.Suggestions != nil && c.el.Suggestions.Visible() {
		c.el.Suggestions.Hide()
	}
	if c.el.Indicator != nil {
		c.el.Indicator.Show()
		c.el.Transcript.ScrollToBottom()
	}

	t := &Turn{Text: text, api: c.api, timeout: c.timeout}
	c.inFlight = t
	return t, true
}

// Exchange performs the network call. It does not touch any element and may
// run off the UI goroutine.
func (t *Turn) Exchange(ctx context.Context) Reply {
	ctx, cancel := chatclient.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.api.Chat(ctx, t.Text)
	return Reply{turn: t, Text: text, Err: err}
}

// Complete reconciles the page with the outcome of a turn. Replies for a turn
// that is not outstanding are ignored.
func (c *Conversation) Complete(r Reply) {
	if r.turn == nil || r.turn != c.inFlight {
		return
	}
	c.inFlight = nil

	if c.el.Indicator != nil {
		c.el.Indicator.Hide()
	}
	c.el.Transcript.Append(models.BotMessage(c.replyText(r)))

	c.el.Input.SetEnabled(true)
	if c.el.Send != nil {
		c.el.Send.SetEnabled(true)
	}
	c.el.Input.Focus()
	c.el.Transcript.ScrollToBottom()
}

func (c *Conversation) replyText(r Reply) string {
	if r.Err == nil {
		return r.Text
	}

	var apiErr *chatclient.APIError
	switch {
	case errors.As(r.Err, &apiErr):
		c.logger.Warn("chat request rejected",
			zap.Int("status", apiErr.Status),
			zap.String("detail", apiErr.Detail))
		return errorPrefix + apiErr.Detail
	case errors.Is(r.Err, chatclient.ErrTimeout):
		c.logger.Warn("chat request timed out", zap.Duration("timeout", r.turn.timeout))
		return TimeoutErrorText
	default:
		c.logger.Error("chat request failed", zap.Error(r.Err))
		return ConnectErrorText
	}
}

// SubmitText runs a whole turn for text and blocks until it is reconciled.
func (c *Conversation) SubmitText(ctx context.Context, text string) {
	t, ok := c.Begin(text)
	if !ok {
		return
	}
	c.Complete(t.Exchange(ctx))
}

// Submit runs a turn for the current input value.
func (c *Conversation) Submit(ctx context.Context) {
	c.SubmitText(ctx, c.el.Input.Value())
}

// HandleKey submits the input when key is Enter.
func (c *Conversation) HandleKey(ctx context.Context, key string) {
	if key == KeyEnter {
		c.Submit(ctx)
	}
}

// ChooseSuggestion copies a suggestion chip's text into the input and submits it.
func (c *Conversation) ChooseSuggestion(ctx context.Context, text string) {
	if c.inFlight != nil {
		return
	}
	c.el.Input.SetValue(text)
	c.Submit(ctx)
}
