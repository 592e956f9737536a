package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	interviewmodel "github.com/voiceprep/interview-agent/internal/model/interview"
	"github.com/voiceprep/interview-agent/internal/questionbank"
	interviewService "github.com/voiceprep/interview-agent/internal/service/interview"
)

type scriptedEngine struct {
	reply string
	err   error
	turns []interviewmodel.Turn
}

func (e *scriptedEngine) Start(string) {}

func (e *scriptedEngine) Respond(_ context.Context, input string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.turns = append(e.turns,
		interviewmodel.Turn{Speaker: interviewmodel.SpeakerCandidate, Content: input},
		interviewmodel.Turn{Speaker: interviewmodel.SpeakerInterviewer, Content: e.reply},
	)
	return e.reply, nil
}

func (e *scriptedEngine) RecordCandidate(content string) {
	e.turns = append(e.turns, interviewmodel.Turn{Speaker: interviewmodel.SpeakerCandidate, Content: content})
}

func (e *scriptedEngine) History() []interviewmodel.Turn { return e.turns }

type scriptedEvaluator struct{}

func (scriptedEvaluator) Evaluate(context.Context, string, []interviewmodel.Turn) (*interviewmodel.InterviewFeedback, error) {
	return &interviewmodel.InterviewFeedback{
		OverallAssessment: "Solid performance.",
		Sections: []interviewmodel.FeedbackSection{
			{Area: "Clarity", Score: 4, Summary: "Well structured.", Improvements: []string{"Quantify impact."}},
		},
	}, nil
}

type scriptedTranscriber struct {
	text string
	err  error
}

func (t scriptedTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return t.text, t.err
}

func setupRouter(t *testing.T, engine *scriptedEngine, transcriber interviewService.Transcriber) *chi.Mux {
	t.Helper()
	bank := questionbank.New(map[string]map[string][]string{
		"software_engineer": {"behavioral": {"Tell me about a project you led."}},
	})
	sessions := interviewService.NewService(interviewService.Deps{
		Questions: bank,
		Engines: func(context.Context, string) (interviewService.DialogueEngine, error) {
			return engine, nil
		},
		Evaluator:   scriptedEvaluator{},
		Transcriber: transcriber,
	})

	r := chi.NewRouter()
	New(sessions, bank).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func startSession(t *testing.T, r http.Handler) {
	t.Helper()
	resp := postJSON(t, r, "/interview/start", map[string]string{"role": "Software Engineer"})
	if resp.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListRoles(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/interview/roles", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Roles) != 1 || body.Roles[0] != "Software Engineer" {
		t.Fatalf("roles: %v", body.Roles)
	}
}

func TestStartReturnsOpeningQuestion(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)

	resp := postJSON(t, r, "/interview/start", map[string]string{"role": "Software Engineer"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body interviewService.StartResult
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID == "" || body.Question == "" {
		t.Fatalf("incomplete body: %+v", body)
	}
}

func TestStartWithoutConfiguredModel(t *testing.T) {
	bank := questionbank.New(nil)
	sessions := interviewService.NewService(interviewService.Deps{Questions: bank})

	r := chi.NewRouter()
	New(sessions, bank).RegisterRoutes(r)

	resp := postJSON(t, r, "/interview/start", map[string]string{"role": "Software Engineer"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStartMissingRole(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)
	resp := postJSON(t, r, "/interview/start", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStartWhileActive(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)
	startSession(t, r)

	resp := postJSON(t, r, "/interview/start", map[string]string{"role": "Data Analyst"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestAnswerReturnsUtterance(t *testing.T) {
	engine := &scriptedEngine{reply: "Interesting, tell me more about the rollout."}
	r := setupRouter(t, engine, nil)
	startSession(t, r)

	resp := postJSON(t, r, "/interview/answer", map[string]string{"text": "I led a platform migration."})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body interviewService.TurnResult
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Done || body.Utterance != engine.reply {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestAnswerWithoutSession(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)
	resp := postJSON(t, r, "/interview/answer", map[string]string{"text": "hello"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestAnswerDialogueFailure(t *testing.T) {
	engine := &scriptedEngine{err: errors.New("upstream timeout")}
	r := setupRouter(t, engine, nil)
	startSession(t, r)

	resp := postJSON(t, r, "/interview/answer", map[string]string{"text": "My answer."})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestStopPhraseAnswerReturnsReport(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{reply: "Next question."}, nil)
	startSession(t, r)

	resp := postJSON(t, r, "/interview/answer", map[string]string{"text": "end interview"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body interviewService.TurnResult
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Done || body.Report == nil || body.Report.Feedback == nil {
		t.Fatalf("expected final report, got %+v", body)
	}
}

func TestAudioAnswerMultipart(t *testing.T) {
	engine := &scriptedEngine{reply: "How did you measure success?"}
	r := setupRouter(t, engine, scriptedTranscriber{text: "We cut latency in half."})
	startSession(t, r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "answer.wav")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte{0x52, 0x49, 0x46, 0x46})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/interview/answer", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body interviewService.TurnResult
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Utterance != engine.reply {
		t.Fatalf("unexpected utterance: %q", body.Utterance)
	}
	if len(engine.turns) == 0 || engine.turns[0].Content != "We cut latency in half." {
		t.Fatalf("transcript: %+v", engine.turns)
	}
}

func TestAudioAnswerMissingFile(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, scriptedTranscriber{})
	startSession(t, r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("format", "wav")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/interview/answer", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStopEndpointReturnsReport(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)
	startSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/interview/stop", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var report interviewService.Report
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Role != "Software Engineer" || report.Text == "" {
		t.Fatalf("incomplete report: %+v", report)
	}
}

func TestStopWithoutSession(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/interview/stop", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestStatusReflectsSession(t *testing.T) {
	r := setupRouter(t, &scriptedEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/interview/status", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var snap interviewService.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Status != interviewmodel.StatusNotStarted {
		t.Fatalf("expected not_started, got %s", snap.Status)
	}

	startSession(t, r)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/interview/status", nil))
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Status != interviewmodel.StatusActive || snap.Role != "Software Engineer" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
