package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	speechmodel "github.com/voiceprep/interview-agent/internal/model/speech"
)

const (
	ttsEndpoint   = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"
	ttsResourceID = "volc.service_type.10029"
	defaultVoice  = "en_male_glen_emo_v2_mars_bigtts"
)

// volcengineTTSClient renders one utterance to audio over the Volcengine
// WebSocket protocol.
type volcengineTTSClient struct {
	config *speechmodel.Config
	dialer *websocket.Dialer
}

func newVolcengineTTSClient(config *speechmodel.Config) *volcengineTTSClient {
	return &volcengineTTSClient{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
	}
}

type ttsClientRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string `json:"speaker"`
		Text        string `json:"text"`
		AudioParams struct {
			Format      string  `json:"format"`
			SampleRate  int     `json:"sample_rate"`
			SpeedRatio  float32 `json:"speed_ratio,omitempty"`
			VolumeRatio float32 `json:"volume_ratio,omitempty"`
		} `json:"audio_params"`
	} `json:"req_params"`
}

type ttsServerResponse struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

func (c *volcengineTTSClient) synthesize(ctx context.Context, req *speechmodel.SynthesizeRequest) (*speechmodel.SynthesizeResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("tts text is empty")
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", c.config.AppID)
	header.Set("X-Api-Access-Key", c.config.AccessToken)
	header.Set("X-Api-Resource-Id", ttsResourceID)
	header.Set("X-Api-Connect-Id", uuid.NewString())

	conn, _, err := c.dialer.DialContext(ctx, ttsEndpoint, header)
	if err != nil {
		return nil, fmt.Errorf("tts websocket dial failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	payload := c.buildRequest(req)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	f := &frame{
		header:  newFrameHeader(fullClientRequest, flagNoSequence, jsonSerialization, noCompression),
		payload: raw,
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(f)); err != nil {
		return nil, fmt.Errorf("send tts request: %w", err)
	}

	return c.collectAudio(ctx, conn, req.SessionID)
}

func (c *volcengineTTSClient) buildRequest(req *speechmodel.SynthesizeRequest) *ttsClientRequest {
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = strings.TrimSpace(c.config.Voice)
	}
	if voice == "" {
		voice = defaultVoice
	}

	payload := &ttsClientRequest{}
	payload.User.UID = req.SessionID
	payload.ReqParams.Speaker = voice
	payload.ReqParams.Text = req.Text
	payload.ReqParams.AudioParams.Format = "mp3"
	payload.ReqParams.AudioParams.SampleRate = 24000
	if req.Speed > 0 {
		payload.ReqParams.AudioParams.SpeedRatio = req.Speed
	}
	if req.Volume > 0 {
		payload.ReqParams.AudioParams.VolumeRatio = req.Volume
	}
	return payload
}

func (c *volcengineTTSClient) collectAudio(ctx context.Context, conn *websocket.Conn, sessionID string) (*speechmodel.SynthesizeResponse, error) {
	result := &speechmodel.SynthesizeResponse{
		SessionID: sessionID,
		Format:    "mp3",
		CreatedAt: time.Now().UTC(),
	}
	var audio bytes.Buffer

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read tts response: %w", err)
		}

		f, err := decodeFrame(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode tts frame: %w", err)
		}

		switch f.header.msgType {
		case errorResponse:
			payload, _ := decompressPayload(f.payload, f.header.compression)
			return nil, fmt.Errorf("tts error %d: %s", f.errorCode, payload)

		case audioOnlyServerResponse:
			chunk, err := decompressPayload(f.payload, f.header.compression)
			if err != nil {
				return nil, fmt.Errorf("decompress audio chunk: %w", err)
			}
			audio.Write(chunk)
			if f.isLast() {
				return c.finish(result, &audio)
			}

		case fullServerResponse:
			payload, err := decompressPayload(f.payload, f.header.compression)
			if err != nil {
				return nil, fmt.Errorf("decompress tts payload: %w", err)
			}

			var resp ttsServerResponse
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &resp); err != nil {
					return nil, fmt.Errorf("parse tts payload: %w", err)
				}
				if resp.Code != 0 && resp.Code != 3000 {
					return nil, fmt.Errorf("tts api error %d: %s", resp.Code, resp.Message)
				}
				if resp.ReqID != "" {
					result.RequestID = resp.ReqID
				}
				if resp.Addition.Duration != "" {
					if ms, err := strconv.ParseInt(resp.Addition.Duration, 10, 64); err == nil {
						result.Duration = ms
					}
				}
				if resp.Data != "" {
					chunk, err := base64.StdEncoding.DecodeString(resp.Data)
					if err != nil {
						return nil, fmt.Errorf("decode audio chunk: %w", err)
					}
					audio.Write(chunk)
				}
			}

			if f.isLast() || resp.Sequence < 0 {
				return c.finish(result, &audio)
			}
		}
	}
}

func (c *volcengineTTSClient) finish(result *speechmodel.SynthesizeResponse, audio *bytes.Buffer) (*speechmodel.SynthesizeResponse, error) {
	if audio.Len() == 0 {
		return nil, fmt.Errorf("tts produced no audio")
	}
	result.Audio = audio.Bytes()
	return result, nil
}
