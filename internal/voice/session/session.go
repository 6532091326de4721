// Package session runs the agent side of a phone call inside a LiveKit room.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"outbound-caller/internal/clients/livekit"
	"outbound-caller/internal/clients/openai"
	"outbound-caller/internal/observability"
	"outbound-caller/internal/voice/pipeline"

	lkproto "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrNotStarted     = errors.New("session not started")
	ErrAlreadyStarted = errors.New("session already started")
)

// Transcriber turns PCM16 24kHz audio into transcripts.
type Transcriber interface {
	Transcribe(ctx context.Context, audio <-chan []byte) (<-chan openai.TranscriptionResult, error)
}

// Synthesizer turns text into PCM16 24kHz audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Responder produces the agent's reply to what the callee said.
type Responder interface {
	Respond(ctx context.Context, userText string) (string, error)
}

type Config struct {
	AgentIdentity       string
	ParticipantIdentity string
}

// Factory joins rooms on behalf of the agent.
type Factory struct {
	LiveKit *livekit.Client
	STT     Transcriber
	TTS     Synthesizer
	Config  Config
	Logger  *observability.Logger
}

// Session is the agent's presence in one call room.
type Session struct {
	roomName string
	cfg      Config
	logger   *observability.Logger
	stt      Transcriber
	tts      Synthesizer

	room       *lksdk.Room
	out        pipeline.SampleWriter
	phoneAudio chan []byte

	mu       sync.Mutex
	pipeline *pipeline.AudioPipeline
	cancel   context.CancelFunc

	joined    chan struct{}
	joinOnce  sync.Once
	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

func newSession(roomName string, cfg Config, stt Transcriber, tts Synthesizer, logger *observability.Logger) *Session {
	return &Session{
		roomName:   roomName,
		cfg:        cfg,
		logger:     logger,
		stt:        stt,
		tts:        tts,
		phoneAudio: make(chan []byte, 256),
		joined:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Join connects the agent to roomName as agentIdentity and publishes its voice track.
// An empty agentIdentity falls back to the configured one.
func (f *Factory) Join(ctx context.Context, roomName, agentIdentity string) (*Session, error) {
	cfg := f.Config
	if agentIdentity != "" {
		cfg.AgentIdentity = agentIdentity
	}
	s := newSession(roomName, cfg, f.STT, f.TTS, f.Logger)

	callback := &lksdk.RoomCallback{
		OnParticipantDisconnected: func(rp *lksdk.RemoteParticipant) {
			if rp.Identity() == s.cfg.ParticipantIdentity {
				s.logger.Info(ctx, fmt.Sprintf("Participant %s left the call", rp.Identity()))
				s.markDone()
			}
		},
		OnDisconnected: func() {
			s.logger.Info(ctx, "Agent disconnected from room")
			s.markDone()
		},
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, publication *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				s.onTrackSubscribed(ctx, track, rp.Identity())
			},
		},
	}

	room, err := lksdk.ConnectToRoom(f.LiveKit.URL(), f.LiveKit.ConnectInfo(roomName, cfg.AgentIdentity), callback)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to room: %w", err)
	}
	s.room = room

	track, err := lksdk.NewLocalSampleTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypePCMU,
		ClockRate: 8000,
		Channels:  1,
	})
	if err != nil {
		room.Disconnect()
		return nil, fmt.Errorf("failed to create agent audio track: %w", err)
	}
	if _, err := room.LocalParticipant.PublishTrack(track, &lksdk.TrackPublicationOptions{
		Name:   "agent-voice",
		Source: lkproto.TrackSource_MICROPHONE,
	}); err != nil {
		room.Disconnect()
		return nil, fmt.Errorf("failed to publish agent audio track: %w", err)
	}
	s.out = track

	s.logger.Info(ctx, fmt.Sprintf("Agent joined room %s", roomName))
	return s, nil
}

func (s *Session) onTrackSubscribed(ctx context.Context, track *webrtc.TrackRemote, identity string) {
	if identity != s.cfg.ParticipantIdentity || track.Kind() != webrtc.RTPCodecTypeAudio {
		return
	}
	if mime := track.Codec().MimeType; !strings.EqualFold(mime, webrtc.MimeTypePCMU) {
		s.logger.Warn(ctx, fmt.Sprintf("Ignoring %s audio track from %s, only PCMU is supported", mime, identity))
		return
	}

	s.logger.Info(ctx, fmt.Sprintf("Participant %s joined", identity))
	s.joinOnce.Do(func() { close(s.joined) })
	go s.readTrack(ctx, track)
}

func (s *Session) readTrack(ctx context.Context, track *webrtc.TrackRemote) {
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			return
		}
		select {
		case s.phoneAudio <- pkt.Payload:
		case <-s.done:
			return
		default:
			s.logger.Debug(ctx, "Phone audio buffer full, dropping packet")
		}
	}
}

// WaitForParticipant blocks until the callee's audio is flowing.
func (s *Session) WaitForParticipant(ctx context.Context) error {
	select {
	case <-s.joined:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins transcribing the callee and answering through conv.
func (s *Session) Start(ctx context.Context, conv Responder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline != nil {
		return ErrAlreadyStarted
	}

	p, err := pipeline.NewAudioPipeline(s.phoneAudio, s.logger, pipeline.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create audio pipeline: %w", err)
	}
	sctx, cancel := context.WithCancel(observability.WithFields(ctx,
		observability.Field{Key: "pipeline_id", Value: p.ID()},
	))
	p.Start(sctx)

	results, err := s.stt.Transcribe(sctx, p.STTInput())
	if err != nil {
		cancel()
		p.Stop()
		return fmt.Errorf("failed to start transcription: %w", err)
	}

	s.pipeline = p
	s.cancel = cancel
	go s.converse(sctx, conv, results)
	return nil
}

func (s *Session) converse(ctx context.Context, conv Responder, results <-chan openai.TranscriptionResult) {
	for {
		var res openai.TranscriptionResult
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			res = r
		}

		switch res.Type {
		case openai.TranscriptionCompleted:
			s.logger.Info(ctx, fmt.Sprintf("User said: %s", res.Transcript))
			reply, err := conv.Respond(ctx, res.Transcript)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error(ctx, "Failed to respond", err)
				}
				continue
			}
			if reply == "" {
				continue
			}
			if err := s.Speak(ctx, reply); err != nil && ctx.Err() == nil {
				s.logger.Error(ctx, "Failed to speak reply", err)
			}
		case openai.TranscriptionError:
			s.logger.WarnWithError(ctx, "Transcription error", res.Err)
		}
	}
}

// Speak synthesizes text and plays it to the callee.
func (s *Session) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	p := s.pipeline
	s.mu.Unlock()
	if p == nil {
		return ErrNotStarted
	}

	pcm, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	s.logger.Info(ctx, fmt.Sprintf("Agent says: %s", text))
	return p.Play(ctx, pcm, s.out)
}

// Done is closed when the callee leaves or the agent is disconnected.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Close stops the audio flow and leaves the room. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		p := s.pipeline
		s.mu.Unlock()

		if p != nil {
			p.Stop()
		}
		if s.room != nil {
			s.room.Disconnect()
		}
		s.markDone()
	})
}
