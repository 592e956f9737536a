package speech

import "time"

// TranscribeResponse is the ASR result for one answer.
type TranscribeResponse struct {
	SessionID string    `json:"sessionId"`
	Text      string    `json:"text"`
	Duration  int64     `json:"duration"` // milliseconds of audio
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SynthesizeResponse carries the rendered audio.
type SynthesizeResponse struct {
	SessionID string    `json:"sessionId"`
	Audio     []byte    `json:"-"`
	Duration  int64     `json:"duration"` // milliseconds of audio
	Format    string    `json:"format"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
