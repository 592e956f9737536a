package speech

import (
	"context"
	"log"
)

// Mock satisfies the interview collaborator interfaces without touching the
// network.
type Mock struct {
	Transcript string
	Err        error
}

func (m *Mock) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(audio) == 0 || m.Transcript == "" {
		return "", ErrNotUnderstood
	}
	return m.Transcript, nil
}

func (m *Mock) Speak(_ context.Context, text string) error {
	if m.Err != nil {
		return m.Err
	}
	log.Printf("[speech] mock speak: %s", text)
	return nil
}
