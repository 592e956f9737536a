package interview

import (
	"context"

	interviewmodel "github.com/voiceprep/interview-agent/internal/model/interview"
)

// QuestionProvider supplies the opening question for a role.
type QuestionProvider interface {
	Question(role string) string
}

// DialogueEngine is one session's conversation with the dialogue
// collaborator. Created per session by an EngineFactory.
type DialogueEngine interface {
	Start(openingQuestion string)
	Respond(ctx context.Context, candidateInput string) (string, error)
	RecordCandidate(content string)
	History() []interviewmodel.Turn
}

// EngineFactory builds a DialogueEngine for the confirmed role. It fails
// when the dialogue collaborator is not configured.
type EngineFactory func(ctx context.Context, role string) (DialogueEngine, error)

// Evaluator produces the structured feedback report from a full transcript.
type Evaluator interface {
	Evaluate(ctx context.Context, role string, history []interviewmodel.Turn) (*interviewmodel.InterviewFeedback, error)
}

// Transcriber converts recorded candidate audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// Synthesizer voices interviewer utterances. Calls are fire-and-forget.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// StartResult is returned when a session becomes active.
type StartResult struct {
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Question  string `json:"question"`
}

// TurnResult is the outcome of one submitted answer: either the
// interviewer's next utterance, a re-prompt, or the final report when the
// input concluded the session.
type TurnResult struct {
	Done      bool    `json:"done"`
	Utterance string  `json:"utterance"`
	Report    *Report `json:"report,omitempty"`
}

// Report packages the validated feedback with its rendered text form.
type Report struct {
	SessionID string                            `json:"sessionId"`
	Role      string                            `json:"role"`
	Feedback  *interviewmodel.InterviewFeedback `json:"feedback"`
	Text      string                            `json:"text"`
}

// Snapshot describes the current session for status displays.
type Snapshot struct {
	SessionID    string                `json:"sessionId,omitempty"`
	Role         string                `json:"role,omitempty"`
	Status       interviewmodel.Status `json:"status"`
	Turns        int                   `json:"turns"`
	TurnInFlight bool                  `json:"turnInFlight"`
}
