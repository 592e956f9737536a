package speech

// TranscribeRequest asks ASR to turn one recorded answer into text.
type TranscribeRequest struct {
	SessionID string `json:"sessionId"`
	Audio     []byte `json:"-"`
	Format    string `json:"format"` // wav, mp3, pcm
}

// SynthesizeRequest asks TTS to render an interviewer utterance.
type SynthesizeRequest struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`
	Volume    float32 `json:"volume"`
}
