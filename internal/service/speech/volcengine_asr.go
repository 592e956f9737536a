package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	speechmodel "github.com/voiceprep/interview-agent/internal/model/speech"
)

const (
	asrEndpoint   = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"
	asrResourceID = "volc.bigasr.sauc.duration"
)

// volcengineASRClient submits one recorded answer over the Volcengine
// WebSocket protocol and collects the final transcript.
type volcengineASRClient struct {
	config *speechmodel.Config
	dialer *websocket.Dialer
}

func newVolcengineASRClient(config *speechmodel.Config) *volcengineASRClient {
	return &volcengineASRClient{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
	}
}

type asrClientRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user,omitempty"`
	Audio struct {
		Format  string `json:"format"`
		Rate    int    `json:"rate,omitempty"`
		Bits    int    `json:"bits,omitempty"`
		Channel int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName  string `json:"model_name"`
		EnablePunc bool   `json:"enable_punc,omitempty"`
	} `json:"request"`
}

type asrServerResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text string `json:"text"`
	} `json:"result,omitempty"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info,omitempty"`
}

func (c *volcengineASRClient) transcribe(ctx context.Context, req *speechmodel.TranscribeRequest) (*speechmodel.TranscribeResponse, error) {
	header := http.Header{}
	header.Set("X-Api-App-Key", c.config.AppID)
	header.Set("X-Api-Access-Key", c.config.AccessToken)
	header.Set("X-Api-Resource-Id", asrResourceID)
	header.Set("X-Api-Connect-Id", uuid.NewString())

	conn, _, err := c.dialer.DialContext(ctx, asrEndpoint, header)
	if err != nil {
		return nil, fmt.Errorf("asr websocket dial failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := c.sendRequest(conn, req); err != nil {
		return nil, err
	}
	if err := c.sendAudio(conn, req.Audio); err != nil {
		return nil, err
	}

	return c.collectResult(ctx, conn, req.SessionID)
}

func (c *volcengineASRClient) sendRequest(conn *websocket.Conn, req *speechmodel.TranscribeRequest) error {
	payload := asrClientRequest{}
	payload.User.UID = req.SessionID
	payload.Audio.Format = req.Format
	payload.Audio.Rate = 16000
	payload.Audio.Bits = 16
	payload.Audio.Channel = 1
	payload.Request.ModelName = "bigmodel"
	payload.Request.EnablePunc = true

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal asr request: %w", err)
	}
	compressed, err := gzipCompress(raw)
	if err != nil {
		return fmt.Errorf("compress asr request: %w", err)
	}

	f := &frame{
		header:   newFrameHeader(fullClientRequest, flagPositiveSequence, jsonSerialization, gzipCompression),
		sequence: 1,
		payload:  compressed,
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(f)); err != nil {
		return fmt.Errorf("send asr request: %w", err)
	}
	return nil
}

// sendAudio ships the whole clip as a single final packet; the answer is
// already fully recorded when transcription starts.
func (c *volcengineASRClient) sendAudio(conn *websocket.Conn, audio []byte) error {
	compressed, err := gzipCompress(audio)
	if err != nil {
		return fmt.Errorf("compress audio: %w", err)
	}

	f := &frame{
		header:   newFrameHeader(audioOnlyRequest, flagNegativeSequence, rawSerialization, gzipCompression),
		sequence: -2,
		payload:  compressed,
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(f)); err != nil {
		return fmt.Errorf("send audio packet: %w", err)
	}
	return nil
}

func (c *volcengineASRClient) collectResult(ctx context.Context, conn *websocket.Conn, sessionID string) (*speechmodel.TranscribeResponse, error) {
	result := &speechmodel.TranscribeResponse{
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read asr response: %w", err)
		}

		f, err := decodeFrame(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode asr frame: %w", err)
		}

		if f.header.msgType == errorResponse {
			payload, _ := decompressPayload(f.payload, f.header.compression)
			return nil, fmt.Errorf("asr error %d: %s", f.errorCode, payload)
		}

		payload, err := decompressPayload(f.payload, f.header.compression)
		if err != nil {
			return nil, fmt.Errorf("decompress asr payload: %w", err)
		}

		var resp asrServerResponse
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &resp); err != nil {
				return nil, fmt.Errorf("parse asr payload: %w", err)
			}
			if resp.Code != 0 && resp.Code != 20000000 {
				return nil, fmt.Errorf("asr api error %d: %s", resp.Code, resp.Message)
			}
			if resp.Result.Text != "" {
				result.Text = resp.Result.Text
			}
			if resp.AudioInfo.Duration > 0 {
				result.Duration = resp.AudioInfo.Duration
			}
		}

		if f.isLast() || resp.Sequence < 0 {
			return result, nil
		}
	}
}
