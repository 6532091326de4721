package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"outbound-caller/internal/clients/openai"
	"outbound-caller/internal/observability"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSTT struct {
	results chan openai.TranscriptionResult
	err     error
}

func (f *fakeSTT) Transcribe(ctx context.Context, _ <-chan []byte) (<-chan openai.TranscriptionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeTTS struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeTTS) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	// 20ms of 24kHz PCM16
	return make([]byte, 960), nil
}

func (f *fakeTTS) spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeResponder struct {
	mu    sync.Mutex
	heard []string
	reply string
	err   error
}

func (f *fakeResponder) Respond(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heard = append(f.heard, text)
	return f.reply, f.err
}

func (f *fakeResponder) heardTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.heard...)
}

type countingWriter struct {
	mu     sync.Mutex
	frames int
}

func (w *countingWriter) WriteSample(media.Sample, *lksdk.SampleWriteOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames++
	return nil
}

func newTestSession(stt Transcriber, tts Synthesizer) (*Session, *countingWriter) {
	s := newSession("call-1", Config{AgentIdentity: "agent", ParticipantIdentity: "phone_user"}, stt, tts,
		observability.NewLoggerFromZap(zap.NewNop()))
	w := &countingWriter{}
	s.out = w
	return s, w
}

func TestSession_CompletedTranscriptIsAnsweredAndSpoken(t *testing.T) {
	stt := &fakeSTT{results: make(chan openai.TranscriptionResult, 4)}
	tts := &fakeTTS{}
	conv := &fakeResponder{reply: "Hi Sam, this is Omee from Ahoum."}
	s, w := newTestSession(stt, tts)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), conv))

	stt.results <- openai.TranscriptionResult{Type: openai.TranscriptionDelta, Delta: "hel"}
	stt.results <- openai.TranscriptionResult{Type: openai.TranscriptionCompleted, Transcript: "hello?"}

	require.Eventually(t, func() bool { return len(tts.spoken()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Hi Sam, this is Omee from Ahoum."}, tts.spoken())
	assert.Equal(t, []string{"hello?"}, conv.heardTexts())
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.frames == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSession_EmptyReplyIsNotSpoken(t *testing.T) {
	stt := &fakeSTT{results: make(chan openai.TranscriptionResult, 1)}
	tts := &fakeTTS{}
	conv := &fakeResponder{}
	s, _ := newTestSession(stt, tts)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), conv))
	stt.results <- openai.TranscriptionResult{Type: openai.TranscriptionCompleted, Transcript: "..."}
	close(stt.results)

	require.Eventually(t, func() bool { return len(conv.heardTexts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, tts.spoken())
}

func TestSession_StartErrors(t *testing.T) {
	s, _ := newTestSession(&fakeSTT{err: errors.New("dial tcp: refused")}, &fakeTTS{})
	err := s.Start(context.Background(), &fakeResponder{})
	assert.ErrorContains(t, err, "refused")

	ok, _ := newTestSession(&fakeSTT{results: make(chan openai.TranscriptionResult)}, &fakeTTS{})
	defer ok.Close()
	require.NoError(t, ok.Start(context.Background(), &fakeResponder{}))
	assert.ErrorIs(t, ok.Start(context.Background(), &fakeResponder{}), ErrAlreadyStarted)
}

func TestSession_SpeakBeforeStart(t *testing.T) {
	s, _ := newTestSession(&fakeSTT{}, &fakeTTS{})
	assert.ErrorIs(t, s.Speak(context.Background(), "hello"), ErrNotStarted)
}

func TestSession_WaitForParticipant(t *testing.T) {
	t.Run("joined", func(t *testing.T) {
		s, _ := newTestSession(&fakeSTT{}, &fakeTTS{})
		s.joinOnce.Do(func() { close(s.joined) })
		assert.NoError(t, s.WaitForParticipant(context.Background()))
	})

	t.Run("closed first", func(t *testing.T) {
		s, _ := newTestSession(&fakeSTT{}, &fakeTTS{})
		s.Close()
		assert.ErrorIs(t, s.WaitForParticipant(context.Background()), ErrSessionClosed)
	})

	t.Run("context cancelled", func(t *testing.T) {
		s, _ := newTestSession(&fakeSTT{}, &fakeTTS{})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, s.WaitForParticipant(ctx), context.DeadlineExceeded)
	})
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s, _ := newTestSession(&fakeSTT{results: make(chan openai.TranscriptionResult)}, &fakeTTS{})
	require.NoError(t, s.Start(context.Background(), &fakeResponder{}))

	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("expected session to be done after Close")
	}
}
