package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ragchat/widget/internal/chatclient"
	"github.com/ragchat/widget/internal/models"
)

// StubChatAPI answers chat calls with a fixed reply or error.
type StubChatAPI struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Block    bool // wait for ctx to end instead of answering
	Messages []string
}

func (s *StubChatAPI) Chat(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	s.Messages = append(s.Messages, message)
	reply, err, block := s.Reply, s.Err, s.Block
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctxErr(ctx)
	}
	return reply, err
}

// Calls returns the messages received so far.
func (s *StubChatAPI) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Messages...)
}

// StubUploadAPI records upload batches and answers with Err.
type StubUploadAPI struct {
	mu      sync.Mutex
	Err     error
	Block   bool
	Batches [][]string
}

func (s *StubUploadAPI) Upload(ctx context.Context, docs []models.Document) error {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	s.mu.Lock()
	s.Batches = append(s.Batches, names)
	err, block := s.Err, s.Block
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctxErr(ctx)
	}
	return err
}

// Calls returns the number of upload requests received.
func (s *StubUploadAPI) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Batches)
}

// ctxErr maps a finished context the way chatclient does.
func ctxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("stub: %w", chatclient.ErrTimeout)
	}
	return &chatclient.TransportError{Op: "stub", Err: ctx.Err()}
}
