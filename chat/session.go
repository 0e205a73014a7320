// Package chat keeps the per-session conversation history and shields the
// user from pipeline failures.
package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/agent"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/llm"
)

// Session owns the durable history for one conversation. The agent itself
// is stateless between invocations; the session re-supplies history on each
// question and the agent trims it.
type Session struct {
	agent   *agent.Agent
	logger  *log.Logger
	history []llm.Message
}

func NewSession(qa *agent.Agent, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}

	return &Session{agent: qa, logger: logger}
}

// Ask runs one question-answer cycle. It never returns an error: any
// failure inside the pipeline is converted into an apologetic answer and
// still recorded as the assistant's turn, so the conversation stays
// coherent after a failure.
func (s *Session) Ask(ctx context.Context, question string) string {
	answer, err := s.agent.Invoke(ctx, question, s.history)
	if err != nil {
		s.logger.Printf("question answering failed: %v", err)
		answer = fmt.Sprintf("I'm sorry, I ran into an error while answering: %v", err)
	}

	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)

	return answer
}

// History returns the recorded turns, most recent last.
func (s *Session) History() []llm.Message {
	return s.history
}
