package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/voiceprep/interview-agent/internal/model/interview"
)

// DefaultMemoryWindow is the number of prior candidate/interviewer
// exchanges supplied as context to the dialogue collaborator.
const DefaultMemoryWindow = 3

const systemPromptTemplate = "You are a professional and objective human interviewer for a %s position. " +
	"Your goal is to conduct a realistic mock interview. " +
	"You must only ask one question or provide one follow-up per turn. " +
	"If the candidate's answer is vague or lacks detail, ask a highly contextual follow-up. " +
	"If the candidate goes off-topic, gently steer the conversation back. " +
	"Maintain a formal and encouraging tone. Do not provide feedback until the candidate explicitly ends the interview."

// Service drives one interview conversation: it owns the session transcript,
// keeps a bounded memory window for prompting, and turns candidate input into
// the interviewer's next utterance.
type Service struct {
	role         string
	memoryWindow int
	chain        compose.Runnable[map[string]any, *schema.Message]
	transcript   *interview.Transcript
}

// NewService compiles the dialogue chain for the given role. The chat model
// is shared across services; the chain and transcript are per session.
func NewService(ctx context.Context, chatModel model.ChatModel, role string, memoryWindow int) (*Service, error) {
	if memoryWindow < 1 {
		memoryWindow = DefaultMemoryWindow
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile dialogue chain: %w", err)
	}

	return &Service{
		role:         role,
		memoryWindow: memoryWindow,
		chain:        runnable,
	}, nil
}

// Start seeds the conversation with the opening question. The seed is kept
// as prompt context but never exported to evaluation.
func (s *Service) Start(openingQuestion string) {
	s.transcript = interview.NewTranscript(openingQuestion)
}

// Respond records the candidate's input, invokes the dialogue collaborator
// with the bounded recent history, and records and returns the interviewer's
// reply. A failed collaborator call leaves the transcript untouched.
func (s *Service) Respond(ctx context.Context, candidateInput string) (string, error) {
	if s.transcript == nil {
		return "", fmt.Errorf("dialogue not started")
	}

	input := map[string]any{
		"system":  fmt.Sprintf(systemPromptTemplate, s.role),
		"history": s.historyMessages(),
		"query":   candidateInput,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("dialogue collaborator call failed: %w", err)
	}

	reply := strings.TrimSpace(response.Content)
	if reply == "" {
		return "", fmt.Errorf("dialogue collaborator returned an empty reply")
	}

	if err := s.transcript.Append(interview.SpeakerCandidate, candidateInput); err != nil {
		return "", err
	}
	if err := s.transcript.Append(interview.SpeakerInterviewer, reply); err != nil {
		return "", err
	}

	log.Printf("[dialogue] reply for role=%s, turns=%d, length=%d", s.role, s.transcript.Len(), len(reply))
	return reply, nil
}

// RecordCandidate appends a candidate turn without a collaborator call.
// Used for the final stop utterance, which is part of the evaluated
// transcript but gets no interviewer reply.
func (s *Service) RecordCandidate(content string) {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Append(interview.SpeakerCandidate, content); err != nil {
		log.Printf("[dialogue] dropping out-of-order candidate turn: %v", err)
	}
}

// History returns the full evaluated transcript: every turn except the
// setup seed, in order.
func (s *Service) History() []interview.Turn {
	if s.transcript == nil {
		return nil
	}
	return s.transcript.Export()
}

// historyMessages converts the bounded recent transcript into chat messages.
// The setup seed maps to an assistant message so the model knows which
// question opened the interview.
func (s *Service) historyMessages() []*schema.Message {
	recent := s.transcript.Recent(s.memoryWindow*2 + 1)

	history := make([]*schema.Message, 0, len(recent))
	for _, turn := range recent {
		switch turn.Speaker {
		case interview.SpeakerCandidate:
			history = append(history, schema.UserMessage(turn.Content))
		case interview.SpeakerInterviewer:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
