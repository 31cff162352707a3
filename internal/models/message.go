// Package models contains domain types for the ragchat widget and its backend.
package models

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one rendered row of the chat transcript.
// Messages are appended in order and never edited or removed.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// UserMessage creates a message authored by the user.
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// BotMessage creates a message authored by the bot.
func BotMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot}
}
