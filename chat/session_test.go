package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/agent"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/llm"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/retrieval"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/vectorstore"
)

type fakeLLM struct {
	answer string
	err    error
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type emptyStore struct{}

func (emptyStore) Add(ctx context.Context, chunks []document.Chunk) error { return nil }
func (emptyStore) Search(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]vectorstore.SearchResult, error) {
	return nil, nil
}
func (emptyStore) GetByIDs(ctx context.Context, ids []string) ([]document.Chunk, error) {
	return nil, nil
}
func (emptyStore) DeleteByDocumentID(ctx context.Context, documentID string) (int64, error) {
	return 0, nil
}
func (emptyStore) ListDocuments(ctx context.Context) ([]document.Info, error) { return nil, nil }
func (emptyStore) Count(ctx context.Context) (int64, error)                   { return 0, nil }
func (emptyStore) ClearAll(ctx context.Context) error                         { return nil }

func newSession(client llm.Client) *Session {
	logger := log.New(io.Discard, "", 0)
	svc := retrieval.NewService(emptyStore{}, nil, 5, 0.3, logger)
	return NewSession(agent.New(svc, client, 10, logger), logger)
}

func TestAskRecordsBothTurns(t *testing.T) {
	session := newSession(&fakeLLM{answer: "the answer"})

	answer := session.Ask(context.Background(), "first question")
	assert.Equal(t, "the answer", answer)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, "first question", history[0].Content)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
	assert.Equal(t, "the answer", history[1].Content)
}

func TestAskConvertsFailureIntoAssistantTurn(t *testing.T) {
	session := newSession(&fakeLLM{err: errors.New("backend down")})

	answer := session.Ask(context.Background(), "question")
	assert.Contains(t, answer, "I'm sorry")
	assert.Contains(t, answer, "backend down")

	// The failed exchange still lands in history so the conversation stays
	// coherent.
	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
	assert.Equal(t, answer, history[1].Content)
}

func TestAskAccumulatesHistoryAcrossTurns(t *testing.T) {
	session := newSession(&fakeLLM{answer: "ok"})

	session.Ask(context.Background(), "one")
	session.Ask(context.Background(), "two")
	session.Ask(context.Background(), "three")

	assert.Len(t, session.History(), 6)
}
