// Package agent runs the fixed think → retrieve → generate pipeline over a
// conversation turn.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/llm"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/retrieval"
)

// FallbackAnswer is returned when the pipeline finishes without producing
// an assistant turn.
const FallbackAnswer = "I apologize, but I couldn't generate a response."

// recentAssistantTurns bounds how many prior answers the generation prompt
// carries for conversational grounding.
const recentAssistantTurns = 3

// State is the working memory of a single invocation. It is built fresh per
// Invoke call and discarded once the answer is extracted; durable history
// belongs to the caller.
type State struct {
	Messages         []llm.Message
	RetrievedContext string
	IterationCount   int
}

type Agent struct {
	retrieval  *retrieval.Service
	llm        llm.Client
	logger     *log.Logger
	maxHistory int
}

func New(retrievalSvc *retrieval.Service, client llm.Client, maxHistory int, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}

	return &Agent{
		retrieval:  retrievalSvc,
		llm:        client,
		logger:     logger,
		maxHistory: maxHistory,
	}
}

// Invoke answers one question. Caller-supplied history is trimmed to the
// most recent maxHistory turns before the pipeline runs, so the prompt fed
// into the think stage never exceeds maxHistory+1 turns. The agent holds no
// state between calls.
func (a *Agent) Invoke(ctx context.Context, query string, history []llm.Message) (string, error) {
	if a.llm == nil {
		return "", fmt.Errorf("llm client is not configured")
	}
	if a.retrieval == nil {
		return "", fmt.Errorf("retrieval service is not configured")
	}

	traceID := uuid.NewString()

	messages := trimHistory(history, a.maxHistory)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	state := &State{Messages: messages}

	if err := a.think(ctx, traceID, state); err != nil {
		return "", fmt.Errorf("think stage: %w", err)
	}
	if err := a.retrieveContext(ctx, traceID, state); err != nil {
		return "", fmt.Errorf("retrieve stage: %w", err)
	}
	if err := a.generate(ctx, traceID, state); err != nil {
		return "", fmt.Errorf("generate stage: %w", err)
	}

	if len(state.Messages) > 0 {
		last := state.Messages[len(state.Messages)-1]
		if last.Role == llm.RoleAssistant {
			return last.Content, nil
		}
	}

	a.logger.Printf("[%s] pipeline produced no assistant turn, returning fallback", traceID)
	return FallbackAnswer, nil
}

// think produces an intermediate reasoning turn when the conversation ends
// on a user turn; otherwise the state passes through unchanged.
func (a *Agent) think(ctx context.Context, traceID string, state *State) error {
	if len(state.Messages) == 0 {
		return nil
	}
	if state.Messages[len(state.Messages)-1].Role != llm.RoleUser {
		return nil
	}

	prompt := make([]llm.Message, 0, len(state.Messages)+1)
	prompt = append(prompt, llm.Message{Role: llm.RoleSystem, Content: reasoningPrompt})
	prompt = append(prompt, state.Messages...)

	reasoning, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("llm reasoning: %w", err)
	}

	state.Messages = append(state.Messages, llm.Message{Role: llm.RoleAssistant, Content: reasoning})
	a.logger.Printf("[%s] think stage produced reasoning turn", traceID)
	return nil
}

// retrieveContext extracts a query from the most recent turn and stores the
// rendered context in state. The reasoning turn from think, when present,
// serves as the retrieval query.
func (a *Agent) retrieveContext(ctx context.Context, traceID string, state *State) error {
	if len(state.Messages) == 0 {
		return nil
	}

	var query string
	last := state.Messages[len(state.Messages)-1]
	switch last.Role {
	case llm.RoleUser, llm.RoleAssistant:
		query = strings.TrimSpace(last.Content)
	case llm.RoleSystem:
		// System turns carry instructions, not questions.
	}

	if query == "" {
		return nil
	}

	results, err := a.retrieval.Retrieve(ctx, query, retrieval.Options{})
	if err != nil {
		return err
	}

	state.RetrievedContext = retrieval.ContextText(results)
	a.logger.Printf("[%s] retrieved context with %d chunks", traceID, len(results))
	return nil
}

// generate builds the single answer prompt from context, recent assistant
// turns, and the latest user question, then appends the answer turn.
func (a *Agent) generate(ctx context.Context, traceID string, state *State) error {
	var question string
	assistantTurns := make([]string, 0, len(state.Messages))
	for _, msg := range state.Messages {
		switch msg.Role {
		case llm.RoleUser:
			question = msg.Content
		case llm.RoleAssistant:
			assistantTurns = append(assistantTurns, "Assistant: "+msg.Content)
		case llm.RoleSystem:
		}
	}

	if question == "" {
		return nil
	}

	if len(assistantTurns) > recentAssistantTurns {
		assistantTurns = assistantTurns[len(assistantTurns)-recentAssistantTurns:]
	}
	historyText := "None"
	if len(assistantTurns) > 0 {
		historyText = strings.Join(assistantTurns, "\n")
	}

	prompt := fmt.Sprintf(answerPromptTemplate, state.RetrievedContext, historyText, question)

	answer, err := a.llm.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		return fmt.Errorf("llm generate: %w", err)
	}

	state.Messages = append(state.Messages, llm.Message{Role: llm.RoleAssistant, Content: strings.TrimSpace(answer)})
	state.IterationCount++
	a.logger.Printf("[%s] generate stage completed (iteration %d)", traceID, state.IterationCount)
	return nil
}

func trimHistory(history []llm.Message, max int) []llm.Message {
	trimmed := history
	if max > 0 && len(history) > max {
		trimmed = history[len(history)-max:]
	}

	out := make([]llm.Message, len(trimmed), len(trimmed)+2)
	copy(out, trimmed)
	return out
}
