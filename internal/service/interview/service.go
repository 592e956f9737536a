package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	interviewmodel "github.com/voiceprep/interview-agent/internal/model/interview"
	"github.com/voiceprep/interview-agent/internal/service/evaluation"
)

var (
	ErrNotConfigured = errors.New("dialogue collaborator is not configured; set the Ark model credentials")
	ErrRoleRequired  = errors.New("a job role is required to start the interview")
	ErrAlreadyActive = errors.New("an interview is already in progress")
	ErrNoSession     = errors.New("no interview in progress")
	ErrTurnInFlight  = errors.New("a previous turn is still being processed")
	ErrCommunication = errors.New("communication with the interviewer failed")
)

const (
	announceTemplate = "Starting your mock interview for a %s role."
	rePromptMessage  = "Sorry, I didn't quite catch that. Could you please repeat your answer?"
	retryMessage     = "A communication error occurred. Please try answering again."
	closingRemark    = "Thank you. The interview is concluded. Generating your feedback report."
)

// stopPhrases conclude the session when they are the candidate's entire
// input, matched case-insensitively. A stop phrase buried inside a longer
// answer is treated as answer content.
var stopPhrases = map[string]struct{}{
	"STOP":          {},
	"END INTERVIEW": {},
	"FINISH":        {},
}

// Service is the session state machine. It owns the single active session
// and serializes every transition; an input arriving while a collaborator
// call is outstanding is rejected, never interleaved.
type Service struct {
	questions   QuestionProvider
	engines     EngineFactory
	evaluator   Evaluator
	transcriber Transcriber
	synthesizer Synthesizer

	mu        sync.Mutex
	status    interviewmodel.Status
	sessionID string
	role      string
	engine    DialogueEngine
	inFlight  bool
}

// Deps lists the collaborators the state machine orchestrates. Transcriber
// and Synthesizer may be nil when speech is not configured.
type Deps struct {
	Questions   QuestionProvider
	Engines     EngineFactory
	Evaluator   Evaluator
	Transcriber Transcriber
	Synthesizer Synthesizer
}

// NewService builds the state machine in the NotStarted state.
func NewService(deps Deps) *Service {
	return &Service{
		questions:   deps.Questions,
		engines:     deps.Engines,
		evaluator:   deps.Evaluator,
		transcriber: deps.Transcriber,
		synthesizer: deps.Synthesizer,
		status:      interviewmodel.StatusNotStarted,
	}
}

// ConfirmRole transitions NotStarted to Active: it builds the dialogue
// engine, fetches the opening question, and surfaces it.
func (s *Service) ConfirmRole(ctx context.Context, role string) (StartResult, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return StartResult{}, ErrRoleRequired
	}
	if s.engines == nil {
		return StartResult{}, fmt.Errorf("%w: no dialogue engine factory", ErrNotConfigured)
	}
	if s.evaluator == nil {
		return StartResult{}, fmt.Errorf("%w: no evaluator", ErrNotConfigured)
	}

	s.mu.Lock()
	if s.status == interviewmodel.StatusActive {
		s.mu.Unlock()
		return StartResult{}, ErrAlreadyActive
	}
	s.mu.Unlock()

	engine, err := s.engines(ctx, role)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	question := s.questions.Question(role)
	engine.Start(question)

	s.mu.Lock()
	if s.status == interviewmodel.StatusActive {
		s.mu.Unlock()
		return StartResult{}, ErrAlreadyActive
	}
	s.sessionID = uuid.NewString()
	s.role = role
	s.engine = engine
	s.status = interviewmodel.StatusActive
	s.inFlight = false
	result := StartResult{SessionID: s.sessionID, Role: role, Question: question}
	s.mu.Unlock()

	log.Printf("[interview] session %s started for role=%q", result.SessionID, role)
	s.speak(fmt.Sprintf(announceTemplate, role))
	s.speak(question)
	return result, nil
}

// SubmitAnswer processes one candidate input in the Active state. Empty
// input re-prompts without consuming a turn; a stop phrase concludes the
// session and returns the report.
func (s *Service) SubmitAnswer(ctx context.Context, text string) (TurnResult, error) {
	engine, err := s.beginTurn()
	if err != nil {
		return TurnResult{}, err
	}
	return s.processAnswer(ctx, engine, text)
}

// SubmitAudio transcribes recorded audio and feeds the transcript through
// the same turn handling as typed input. Unintelligible audio re-prompts
// without consuming a turn.
func (s *Service) SubmitAudio(ctx context.Context, audio []byte, format string) (TurnResult, error) {
	engine, err := s.beginTurn()
	if err != nil {
		return TurnResult{}, err
	}
	if s.transcriber == nil {
		s.endTurn()
		return TurnResult{}, fmt.Errorf("%w: speech transcription is not configured", ErrNotConfigured)
	}

	text, err := s.transcriber.Transcribe(ctx, audio, format)
	if err != nil {
		// Transcription failures are recovered locally: no turn is
		// recorded and the candidate is asked to repeat.
		log.Printf("[interview] transcription failed, re-prompting: %v", err)
		s.endTurn()
		s.speak(rePromptMessage)
		return TurnResult{Utterance: rePromptMessage}, nil
	}

	return s.processAnswer(ctx, engine, text)
}

// RequestStop concludes the session from an external control, regardless of
// transcript content.
func (s *Service) RequestStop(ctx context.Context) (*Report, error) {
	engine, err := s.beginTurn()
	if err != nil {
		return nil, err
	}
	return s.conclude(ctx, engine, "")
}

// Status reports the current session without mutating it.
func (s *Service) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:    s.sessionID,
		Role:         s.role,
		Status:       s.status,
		TurnInFlight: s.inFlight,
	}
	if s.engine != nil {
		snap.Turns = len(s.engine.History())
	}
	return snap
}

// beginTurn claims the single in-flight slot while the session is Active.
func (s *Service) beginTurn() (DialogueEngine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != interviewmodel.StatusActive {
		return nil, ErrNoSession
	}
	if s.inFlight {
		return nil, ErrTurnInFlight
	}
	s.inFlight = true
	return s.engine, nil
}

func (s *Service) endTurn() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *Service) processAnswer(ctx context.Context, engine DialogueEngine, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.endTurn()
		s.speak(rePromptMessage)
		return TurnResult{Utterance: rePromptMessage}, nil
	}

	if isStopPhrase(text) {
		engine.RecordCandidate(text)
		report, err := s.conclude(ctx, engine, text)
		if err != nil {
			return TurnResult{}, err
		}
		return TurnResult{Done: true, Utterance: closingRemark, Report: report}, nil
	}

	reply, err := engine.Respond(ctx, text)
	s.endTurn()
	if err != nil {
		s.speak(retryMessage)
		return TurnResult{}, fmt.Errorf("%w: %v", ErrCommunication, err)
	}

	s.speak(reply)
	return TurnResult{Utterance: reply}, nil
}

// conclude runs the Active to Concluded transition: closing remark, a single
// synchronous evaluation of the full history, then teardown. The session is
// torn down whether or not evaluation succeeds; evaluation runs at most once
// per session.
func (s *Service) conclude(ctx context.Context, engine DialogueEngine, trigger string) (*Report, error) {
	s.mu.Lock()
	s.status = interviewmodel.StatusConcluded
	sessionID := s.sessionID
	role := s.role
	s.mu.Unlock()

	if trigger == "" {
		log.Printf("[interview] session %s stopped externally", sessionID)
	} else {
		log.Printf("[interview] session %s concluded by stop phrase %q", sessionID, trigger)
	}
	s.speak(closingRemark)

	history := engine.History()
	defer s.teardown()

	if s.evaluator == nil {
		return nil, fmt.Errorf("%w: evaluation collaborator unavailable", ErrNotConfigured)
	}

	feedback, err := s.evaluator.Evaluate(ctx, role, history)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidFeedback) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCommunication, err)
	}

	return &Report{
		SessionID: sessionID,
		Role:      role,
		Feedback:  feedback,
		Text:      evaluation.RenderReport(role, feedback),
	}, nil
}

// teardown resets to NotStarted; conversational memory and transcript are
// discarded with the engine.
func (s *Service) teardown() {
	s.mu.Lock()
	s.status = interviewmodel.StatusNotStarted
	s.sessionID = ""
	s.role = ""
	s.engine = nil
	s.inFlight = false
	s.mu.Unlock()
}

// speak voices an utterance without blocking the turn. Synthesis errors are
// logged and never affect session state.
func (s *Service) speak(text string) {
	if s.synthesizer == nil || text == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.synthesizer.Speak(ctx, text); err != nil {
			log.Printf("[interview] speech synthesis failed: %v", err)
		}
	}()
}

func isStopPhrase(text string) bool {
	_, ok := stopPhrases[strings.ToUpper(strings.TrimSpace(text))]
	return ok
}
