package interview

import (
	"errors"
	"sync"
	"time"
)

var ErrSpeakerOrder = errors.New("consecutive turns from the same speaker")

// Transcript is the ordered, unbounded turn log for one session. The first
// entry is the setup turn carrying the opening question; it is excluded from
// the history handed to evaluation.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewTranscript returns a transcript seeded with the opening question.
func NewTranscript(openingQuestion string) *Transcript {
	return &Transcript{
		turns: []Turn{{
			Speaker:   SpeakerInterviewer,
			Content:   openingQuestion,
			Setup:     true,
			CreatedAt: time.Now().UTC(),
		}},
	}
}

// Append records a turn, enforcing speaker alternation after the setup turn.
func (t *Transcript) Append(speaker Speaker, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.turns); n > 0 {
		last := t.turns[n-1]
		if !last.Setup && last.Speaker == speaker {
			return ErrSpeakerOrder
		}
	}

	t.turns = append(t.turns, Turn{
		Speaker:   speaker,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Export returns the turns handed to evaluation: everything except the
// setup turn, in order.
func (t *Transcript) Export() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Turn, 0, len(t.turns))
	for _, turn := range t.turns {
		if turn.Setup {
			continue
		}
		out = append(out, turn)
	}
	return out
}

// Recent returns a copy of the last max turns, setup included. It feeds the
// bounded dialogue context and never truncates the stored log.
func (t *Transcript) Recent(max int) []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := 0
	if max >= 0 && len(t.turns) > max {
		start = len(t.turns) - max
	}
	out := make([]Turn, len(t.turns)-start)
	copy(out, t.turns[start:])
	return out
}

// Len reports the number of recorded turns, setup included.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}
