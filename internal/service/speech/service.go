package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	speechmodel "github.com/voiceprep/interview-agent/internal/model/speech"
)

// ErrNotUnderstood reports audio that transcribed to nothing usable. It is
// recoverable: callers re-prompt the candidate instead of failing the turn.
var ErrNotUnderstood = errors.New("could not understand audio")

// Service bundles the speech collaborators: ASR for candidate answers and
// TTS for interviewer utterances.
type Service struct {
	config *speechmodel.Config
	asr    *volcengineASRClient
	tts    *volcengineTTSClient
}

// NewService wires the Volcengine clients from shared speech configuration.
func NewService(config *speechmodel.Config) *Service {
	return &Service{
		config: config,
		asr:    newVolcengineASRClient(config),
		tts:    newVolcengineTTSClient(config),
	}
}

// Transcribe converts one recorded answer into text. Audio the recognizer
// cannot make out yields ErrNotUnderstood.
func (s *Service) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", ErrNotUnderstood
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := s.asr.transcribe(ctx, &speechmodel.TranscribeRequest{
		Audio:  audio,
		Format: format,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNotUnderstood
	}
	return text, nil
}

// Speak renders text to audio. The interview flow treats speech output as
// fire-and-forget, so failures are for the caller to log, not to act on.
func (s *Service) Speak(ctx context.Context, text string) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	resp, err := s.tts.synthesize(ctx, &speechmodel.SynthesizeRequest{
		Text:   text,
		Voice:  s.config.Voice,
		Speed:  s.config.Speed,
		Volume: s.config.Volume,
	})
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	log.Printf("[speech] synthesized %d bytes (%dms) for %d chars", len(resp.Audio), resp.Duration, len(text))
	return nil
}

// Synthesize exposes the raw TTS result for callers that deliver audio to a
// client instead of playing it, e.g. the speech check tool.
func (s *Service) Synthesize(ctx context.Context, text string) (*speechmodel.SynthesizeResponse, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	return s.tts.synthesize(ctx, &speechmodel.SynthesizeRequest{
		Text:   text,
		Voice:  s.config.Voice,
		Speed:  s.config.Speed,
		Volume: s.config.Volume,
	})
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
