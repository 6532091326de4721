package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"outbound-caller/internal/observability"

	"github.com/gorilla/websocket"
	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
)

const openAIRealtimeURL = "wss://api.openai.com/v1/realtime?intent=transcription"

// RealtimeTranscriptionConfig holds configuration for the session.
type RealtimeTranscriptionConfig struct {
	Model          string // e.g. "gpt-4o-transcribe", "whisper-1"
	Language       string // ISO-639-1 code, e.g. "en"
	Prompt         string
	NoiseReduction string // "near_field", "far_field", or ""
	VAD            bool   // Enable server VAD
}

// TranscriptionResult represents a partial or final transcription from OpenAI.
type TranscriptionResult struct {
	Type       string // "delta", "completed" or "error"
	Delta      string // for delta events
	Transcript string // for completed events
	ItemID     string
	Err        error
}

const (
	TranscriptionDelta     = "delta"
	TranscriptionCompleted = "completed"
	TranscriptionError     = "error"
)

// SpeechConfig selects the TTS model and voice.
type SpeechConfig struct {
	Model string // "tts-1", "gpt-4o-mini-tts"
	Voice string // "alloy", "echo", "nova", ...
}

// OpenAIRealtimeClient streams call audio to OpenAI for transcription and
// synthesizes the agent's replies.
type OpenAIRealtimeClient struct {
	apiKey string
	client openai.Client
	speech SpeechConfig
	stt    RealtimeTranscriptionConfig
	logger *observability.Logger
	dialer *websocket.Dialer
	url    string
}

func NewOpenAIRealtimeClient(apiKey string, stt RealtimeTranscriptionConfig, tts SpeechConfig, logger *observability.Logger) (*OpenAIRealtimeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if tts.Model == "" {
		tts.Model = string(openai.SpeechModelTTS1)
	}
	if tts.Voice == "" {
		tts.Voice = "alloy"
	}
	return &OpenAIRealtimeClient{
		apiKey: apiKey,
		client: openai.NewClient(openaiOption.WithAPIKey(apiKey)),
		speech: tts,
		stt:    stt,
		logger: logger,
		dialer: websocket.DefaultDialer,
		url:    openAIRealtimeURL,
	}, nil
}

// Transcribe streams PCM16 24kHz mono audio and returns transcription results until
// audioStream is closed or ctx is done.
func (c *OpenAIRealtimeClient) Transcribe(ctx context.Context, audioStream <-chan []byte) (<-chan TranscriptionResult, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, _, err := c.dialer.DialContext(ctx, c.url, headers)
	if err != nil {
		c.logger.Error(ctx, "Failed to connect to OpenAI realtime endpoint", err)
		return nil, fmt.Errorf("failed to connect to realtime transcription: %w", err)
	}

	if err := conn.WriteJSON(transcriptionSessionUpdate(c.stt)); err != nil {
		conn.Close()
		c.logger.Error(ctx, "Failed to send session creation message", err)
		return nil, fmt.Errorf("failed to configure transcription session: %w", err)
	}

	results := make(chan TranscriptionResult, 16)
	readDone := make(chan struct{})

	// Read events until the connection closes
	go func() {
		defer close(readDone)
		defer close(results)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Error(ctx, "Realtime transcription read failed", err)
				}
				return
			}
			res, ok := parseTranscriptionEvent(msg)
			if !ok {
				continue
			}
			select {
			case results <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Send audio chunks as input_audio_buffer.append events
	go func() {
		defer func() {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			<-readDone
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-audioStream:
				if !ok {
					return
				}
				appendEvent := map[string]interface{}{
					"type":  "input_audio_buffer.append",
					"audio": base64.StdEncoding.EncodeToString(chunk),
				}
				if err := conn.WriteJSON(appendEvent); err != nil {
					c.logger.Error(ctx, "Failed to send audio chunk", err)
					return
				}
			}
		}
	}()

	return results, nil
}

func transcriptionSessionUpdate(cfg RealtimeTranscriptionConfig) map[string]interface{} {
	transcription := map[string]string{"model": cfg.Model}
	if cfg.Language != "" {
		transcription["language"] = cfg.Language
	}
	if cfg.Prompt != "" {
		transcription["prompt"] = cfg.Prompt
	}

	session := map[string]interface{}{
		"input_audio_format":        "pcm16",
		"input_audio_transcription": transcription,
	}
	if cfg.NoiseReduction != "" {
		session["input_audio_noise_reduction"] = map[string]string{"type": cfg.NoiseReduction}
	}
	if cfg.VAD {
		session["turn_detection"] = map[string]interface{}{
			"type":                "server_vad",
			"threshold":           0.5,
			"prefix_padding_ms":   300,
			"silence_duration_ms": 500,
		}
	} else {
		session["turn_detection"] = nil
	}
	return map[string]interface{}{
		"type":    "transcription_session.update",
		"session": session,
	}
}

func parseTranscriptionEvent(msg []byte) (TranscriptionResult, bool) {
	var event struct {
		Type       string `json:"type"`
		ItemID     string `json:"item_id"`
		Delta      string `json:"delta"`
		Transcript string `json:"transcript"`
		Error      *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(msg, &event); err != nil {
		return TranscriptionResult{}, false
	}

	switch event.Type {
	case "conversation.item.input_audio_transcription.delta":
		return TranscriptionResult{Type: TranscriptionDelta, Delta: event.Delta, ItemID: event.ItemID}, true
	case "conversation.item.input_audio_transcription.completed":
		return TranscriptionResult{Type: TranscriptionCompleted, Transcript: event.Transcript, ItemID: event.ItemID}, true
	case "error":
		msg := "unknown realtime error"
		if event.Error != nil && event.Error.Message != "" {
			msg = event.Error.Message
		}
		return TranscriptionResult{Type: TranscriptionError, Err: fmt.Errorf("realtime transcription: %s", msg)}, true
	}
	return TranscriptionResult{}, false
}

// Synthesize turns text into PCM16 24kHz mono audio.
func (c *OpenAIRealtimeClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(c.speech.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(c.speech.Voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenAI TTS error: %s", string(respBody))
	}

	return io.ReadAll(resp.Body)
}
