// Package chat holds the conversational layer over an analysed statement:
// a bounded context digest plus a stateful question-answering session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dvloznov/statement-analyser/internal/llm"
	"github.com/dvloznov/statement-analyser/internal/logger"
)

// ErrSessionEnded is returned by Ask once the session has ended. There is no
// way back to Active; construct a new session to resume.
var ErrSessionEnded = errors.New("chat: session ended")

// maxHistoryTurns bounds the history section of each prompt; oldest turns
// are dropped first.
const maxHistoryTurns = 12

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in the session.
type Turn struct {
	Role Role
	Text string
}

type sessionState int

const (
	stateActive sessionState = iota
	stateEnded
)

// Session is the stateful question-answering loop over one analysed
// statement. It owns an append-only turn history and a two-state machine
// (Active/Ended). Strictly sequential: one outstanding question at a time.
type Session struct {
	id        string
	completer llm.Completer
	digest    string
	history   []Turn
	state     sessionState
}

// NewSession starts an Active session over the given context digest.
func NewSession(completer llm.Completer, digest string) *Session {
	return &Session{
		id:        uuid.NewString(),
		completer: completer,
		digest:    digest,
	}
}

// ID returns the session identifier, used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Active reports whether the session still accepts questions.
func (s *Session) Active() bool {
	return s.state == stateActive
}

// History returns a copy of the turns recorded so far.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// IsExitCommand reports whether the input is an explicit end-of-session
// request.
func IsExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

// End transitions the session to Ended. Idempotent.
func (s *Session) End() {
	s.state = stateEnded
}

// Ask records the question, builds a prompt from the digest, the trailing
// history and the question, and returns the model's answer as plain text.
// A completion failure (after the client's retry policy) ends the session
// and surfaces the error.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	if s.state == stateEnded {
		return "", ErrSessionEnded
	}

	s.history = append(s.history, Turn{Role: RoleUser, Text: question})

	answer, err := s.completer.Complete(ctx, s.buildPrompt(question))
	if err != nil {
		s.End()
		return "", fmt.Errorf("Ask: %w", err)
	}
	answer = strings.TrimSpace(answer)

	s.history = append(s.history, Turn{Role: RoleAssistant, Text: answer})
	log := logger.FromContext(ctx)
	log.Debug().
		Str("session_id", s.id).
		Int("turns", len(s.history)).
		Msg("chat turn completed")

	return answer, nil
}

func (s *Session) buildPrompt(question string) string {
	var b strings.Builder
	b.WriteString(s.digest)
	b.WriteString("\n")

	// Everything before the just-appended user turn is prior conversation.
	prior := s.history[:len(s.history)-1]
	if len(prior) > maxHistoryTurns {
		prior = prior[len(prior)-maxHistoryTurns:]
	}
	if len(prior) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range prior {
			switch turn.Role {
			case RoleUser:
				b.WriteString("User: ")
			case RoleAssistant:
				b.WriteString("Assistant: ")
			}
			b.WriteString(turn.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nUser question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
