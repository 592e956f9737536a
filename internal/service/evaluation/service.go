package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/voiceprep/interview-agent/internal/model/interview"
)

// ErrInvalidFeedback marks a structurally invalid report from the
// evaluation collaborator. It is fatal for the attempt; the report is never
// coerced into a best-effort rendering.
var ErrInvalidFeedback = errors.New("evaluation returned invalid feedback")

const coachSystemPrompt = `You are an expert Interview Coach. Analyze the mock interview transcript for a {role} role.
Generate a structured, objective, and constructive feedback report.
Focus on the clarity of answers, depth of technical knowledge, and use of structured methods like STAR.
Respond with a single JSON object and nothing else, following exactly this schema:
{{"overall_assessment": "<professional, encouraging summary>", "sections": [{{"area": "<skill area, e.g. Communication>", "score_out_of_5": <integer 1-5>, "summary": "<brief performance summary>", "areas_for_improvement": ["<specific, actionable step>"]}}]}}`

const coachUserPrompt = "Mock interview transcript for a {role} role:\n\n{transcript}\n\n---Generate the structured feedback report now.---"

// Service turns a finished transcript into a validated feedback report.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the evaluation chain on the shared chat model.
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(coachSystemPrompt),
		schema.UserMessage(coachUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile evaluation chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Evaluate invokes the evaluation collaborator on the full transcript and
// validates the returned object against the feedback schema.
func (s *Service) Evaluate(ctx context.Context, role string, history []interview.Turn) (*interview.InterviewFeedback, error) {
	input := map[string]any{
		"role":       role,
		"transcript": FormatTranscript(history),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("evaluation collaborator call failed: %w", err)
	}

	feedback, err := parseFeedback(response.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}
	if err := feedback.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}

	log.Printf("[evaluation] report generated for role=%s, sections=%d", role, len(feedback.Sections))
	return feedback, nil
}

// FormatTranscript renders turns as one "Speaker: content" line each,
// preserving order.
func FormatTranscript(history []interview.Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Content))
	}
	return strings.Join(lines, "\n")
}

// parseFeedback extracts the JSON object from the model output, tolerating
// code fences or prose around it.
func parseFeedback(content string) (*interview.InterviewFeedback, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object in output")
	}

	feedback := &interview.InterviewFeedback{}
	decoder := json.NewDecoder(strings.NewReader(trimmed[start : end+1]))
	if err := decoder.Decode(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}
