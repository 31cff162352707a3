package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ragchat/widget/internal/chatclient"
	"github.com/ragchat/widget/internal/models"
	"github.com/ragchat/widget/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatPage struct {
	rec         *testutil.Recorder
	transcript  *testutil.MockTranscript
	input       *testutil.MockInput
	send        *testutil.MockControl
	indicator   *testutil.MockVisibility
	suggestions *testutil.MockVisibility
}

func newChatPage() *chatPage {
	rec := &testutil.Recorder{}
	return &chatPage{
		rec:         rec,
		transcript:  testutil.NewMockTranscript(rec),
		input:       testutil.NewMockInput(rec),
		send:        testutil.NewMockControl(rec, "send"),
		indicator:   testutil.NewMockVisibility(rec, "indicator", false),
		suggestions: testutil.NewMockVisibility(rec, "suggestions", true),
	}
}

func (p *chatPage) elements() ConversationElements {
	return ConversationElements{
		Transcript:  p.transcript,
		Input:       p.input,
		Send:        p.send,
		Indicator:   p.indicator,
		Suggestions: p.suggestions,
	}
}

func TestConversation_SubmitText(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		wantBot string
	}{
		{
			name:    "success",
			reply:   "Hi there!",
			wantBot: "Hi there!",
		},
		{
			name:    "server error",
			err:     &chatclient.APIError{Status: 500, Detail: "LLM unavailable"},
			wantBot: "Error: LLM unavailable",
		},
		{
			name:    "transport failure",
			err:     &chatclient.TransportError{Op: "chat", Err: errors.New("connection refused")},
			wantBot: ConnectErrorText,
		},
		{
			name:    "timeout",
			err:     chatclient.ErrTimeout,
			wantBot: TimeoutErrorText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newChatPage()
			api := &testutil.StubChatAPI{Reply: tt.reply, Err: tt.err}
			conv := NewConversation(page.elements(), api)

			conv.SubmitText(context.Background(), "Hello")

			assert.Equal(t, []string{"Hello"}, api.Calls())
			assert.Equal(t, []models.Message{
				models.UserMessage("Hello"),
				models.BotMessage(tt.wantBot),
			}, page.transcript.Messages)
			assert.True(t, page.input.Enabled)
			assert.True(t, page.send.Enabled)
			assert.True(t, page.input.Focused)
			assert.False(t, page.indicator.Shown)
			assert.False(t, conv.Busy())
		})
	}
}

func TestConversation_SubmitOrdering(t *testing.T) {
	page := newChatPage()
	conv := NewConversation(page.elements(), &testutil.StubChatAPI{Reply: "Hi there!"})

	conv.SubmitText(context.Background(), "  Hello  ")

	assert.Equal(t, []string{
		"append user: Hello",
		"input enabled=false",
		"send enabled=false",
		"suggestions hide",
		"indicator show",
		"indicator hide",
		"append bot: Hi there!",
		"input enabled=true",
		"send enabled=true",
		"input focus",
	}, page.rec.Events())
	assert.Empty(t, page.input.Text)
	assert.Positive(t, page.transcript.Scrolls)
}

func TestConversation_BlankInputIsIgnored(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		page := newChatPage()
		api := &testutil.StubChatAPI{Reply: "unused"}
		conv := NewConversation(page.elements(), api)

		page.input.Text = text
		conv.Submit(context.Background())

		assert.Empty(t, page.transcript.Messages)
		assert.Empty(t, api.Calls())
		assert.True(t, page.suggestions.Shown)
		assert.Equal(t, text, page.input.Text)
	}
}

func TestConversation_OptionalElementsMissing(t *testing.T) {
	rec := &testutil.Recorder{}
	transcript := testutil.NewMockTranscript(rec)
	input := testutil.NewMockInput(rec)
	conv := NewConversation(ConversationElements{Transcript: transcript, Input: input},
		&testutil.StubChatAPI{Reply: "ok"})

	require.NotPanics(t, func() {
		conv.SubmitText(context.Background(), "Hi")
	})
	assert.Len(t, transcript.Messages, 2)
	assert.True(t, input.Enabled)
}

func TestConversation_OneTurnInFlight(t *testing.T) {
	page := newChatPage()
	api := &testutil.StubChatAPI{Reply: "first"}
	conv := NewConversation(page.elements(), api)

	turn, ok := conv.Begin("one")
	require.True(t, ok)
	assert.True(t, conv.Busy())
	assert.True(t, page.indicator.Shown)
	assert.False(t, page.input.Enabled)

	_, ok = conv.Begin("two")
	assert.False(t, ok)
	conv.ChooseSuggestion(context.Background(), "What can you do?")
	assert.Len(t, page.transcript.Messages, 1)

	conv.Complete(turn.Exchange(context.Background()))
	assert.Equal(t, []string{"one"}, api.Calls())
	assert.Equal(t, models.BotMessage("first"), page.transcript.Last())

	// A stale reply is ignored.
	conv.Complete(Reply{turn: turn, Text: "again"})
	assert.Len(t, page.transcript.Messages, 2)
}

func TestConversation_SuggestionMatchesTyping(t *testing.T) {
	typed := newChatPage()
	chosen := newChatPage()
	convTyped := NewConversation(typed.elements(), &testutil.StubChatAPI{Reply: "I can answer questions"})
	convChosen := NewConversation(chosen.elements(), &testutil.StubChatAPI{Reply: "I can answer questions"})

	typed.input.Text = "What can you do?"
	convTyped.HandleKey(context.Background(), KeyEnter)
	convChosen.ChooseSuggestion(context.Background(), "What can you do?")
	convChosen.ChooseSuggestion(context.Background(), "What can you do?")
	convTyped.HandleKey(context.Background(), "a")
	typed.input.Text = "What can you do?"
	convTyped.HandleKey(context.Background(), KeyEnter)

	assert.Equal(t, typed.transcript.Messages, chosen.transcript.Messages)
	assert.Len(t, chosen.transcript.Messages, 4)
}

func TestConversation_Timeout(t *testing.T) {
	page := newChatPage()
	api := &testutil.StubChatAPI{Block: true}
	conv := NewConversation(page.elements(), api, WithChatTimeout(20*time.Millisecond))

	conv.SubmitText(context.Background(), "Hello")

	assert.Equal(t, models.BotMessage(TimeoutErrorText), page.transcript.Last())
	assert.Len(t, page.transcript.Messages, 2)
	assert.True(t, page.input.Enabled)
}
