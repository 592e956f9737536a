package speech

// Config carries the Volcengine speech credentials and tuning shared by the
// ASR and TTS clients.
type Config struct {
	AppID       string
	AccessToken string
	Voice       string
	Speed       float32
	Volume      float32
	Language    string
	Timeout     int // seconds per collaborator call
}
