package interview

import "time"

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerInterviewer Speaker = "Interviewer"
	SpeakerCandidate   Speaker = "Candidate"
)

// Turn is one recorded utterance. Immutable once appended to a transcript.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	Setup     bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status tracks the session lifecycle. Concluded is terminal; a fresh
// session is required to interview again.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusConcluded  Status = "concluded"
)
