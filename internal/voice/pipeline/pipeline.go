// Package pipeline moves call audio between the phone leg and the speech services.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"outbound-caller/internal/observability"
	"outbound-caller/internal/voice/audio"

	"github.com/google/uuid"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4/pkg/media"
)

// SampleWriter is the outbound media track. *lksdk.LocalSampleTrack satisfies it.
type SampleWriter interface {
	WriteSample(sample media.Sample, opts *lksdk.SampleWriteOptions) error
}

type AudioPipeline struct {
	id     string
	logger *observability.Logger

	// Phone side: µ-law 8kHz payloads from the callee
	phoneIn <-chan []byte
	// Speech side: PCM16 24kHz for transcription
	sttIn chan []byte

	playMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats PipelineStats
	mu    sync.RWMutex

	config PipelineConfig
}

type PipelineConfig struct {
	BufferSize  int           // Buffer size for the transcription channel
	SendTimeout time.Duration // How long a chunk may wait for a full buffer before it is dropped
}

type PipelineStats struct {
	BytesFromPhone int64
	BytesToSTT     int64
	FramesToPhone  int64
	DroppedChunks  int64
	StartTime      time.Time
	EndTime        time.Time
}

func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		BufferSize:  256,
		SendTimeout: 100 * time.Millisecond,
	}
}

func NewAudioPipeline(phoneIn <-chan []byte, logger *observability.Logger, config PipelineConfig) (*AudioPipeline, error) {
	if phoneIn == nil {
		return nil, fmt.Errorf("phone channel cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AudioPipeline{
		id:      uuid.New().String(),
		logger:  logger,
		phoneIn: phoneIn,
		sttIn:   make(chan []byte, config.BufferSize),
		ctx:     ctx,
		cancel:  cancel,
		config:  config,
		stats:   PipelineStats{StartTime: time.Now()},
	}, nil
}

func (p *AudioPipeline) ID() string {
	return p.id
}

// STTInput is the transcription feed. It is closed when the phone side ends or the pipeline stops.
func (p *AudioPipeline) STTInput() <-chan []byte {
	return p.sttIn
}

func (p *AudioPipeline) Start(ctx context.Context) {
	pipelineCtx, cancel := context.WithCancel(ctx)
	p.ctx = pipelineCtx
	oldCancel := p.cancel
	p.cancel = func() {
		cancel()
		oldCancel()
	}

	p.logger.Info(ctx, fmt.Sprintf("Starting audio pipeline %s", p.id))

	p.wg.Add(1)
	go p.forwardPhoneToSTT()
}

func (p *AudioPipeline) forwardPhoneToSTT() {
	defer p.wg.Done()
	defer close(p.sttIn)

	for {
		select {
		case <-p.ctx.Done():
			return

		case payload, ok := <-p.phoneIn:
			if !ok {
				p.logger.Info(p.ctx, "Phone audio channel closed")
				return
			}

			pcm := audio.ConvertMuLaw8kHzToPCM24kHz(payload)
			select {
			case p.sttIn <- pcm:
				p.mu.Lock()
				p.stats.BytesFromPhone += int64(len(payload))
				p.stats.BytesToSTT += int64(len(pcm))
				p.mu.Unlock()
			case <-time.After(p.config.SendTimeout):
				p.mu.Lock()
				p.stats.DroppedChunks++
				p.mu.Unlock()
				p.logger.Warn(p.ctx, "Transcription buffer full, dropping audio chunk")
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Play sends PCM16 24kHz speech to the phone as paced 20ms µ-law frames.
// Calls are serialized so replies never interleave.
func (p *AudioPipeline) Play(ctx context.Context, pcm24k []byte, w SampleWriter) error {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	frames := audio.Frames(audio.ConvertPCM24kHzToMuLaw8kHz(pcm24k), audio.MuLawFrameSize)
	frameDuration := audio.FrameDuration * time.Millisecond

	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for _, frame := range frames {
		if err := w.WriteSample(media.Sample{Data: frame, Duration: frameDuration}, nil); err != nil {
			return fmt.Errorf("failed to write audio frame: %w", err)
		}
		p.mu.Lock()
		p.stats.FramesToPhone++
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ctx.Done():
			return p.ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (p *AudioPipeline) Stop() {
	p.logger.Info(p.ctx, fmt.Sprintf("Stopping audio pipeline %s", p.id))

	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	p.stats.EndTime = time.Now()
	p.mu.Unlock()

	stats := p.GetStats()
	ctx := observability.WithFields(p.ctx,
		observability.Field{Key: "bytes_from_phone", Value: stats.BytesFromPhone},
		observability.Field{Key: "frames_to_phone", Value: stats.FramesToPhone},
		observability.Field{Key: "dropped_chunks", Value: stats.DroppedChunks},
		observability.Field{Key: "duration", Value: stats.EndTime.Sub(stats.StartTime).String()},
	)
	p.logger.Info(ctx, fmt.Sprintf("Audio pipeline %s stopped", p.id))
}

func (p *AudioPipeline) GetStats() PipelineStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := p.stats
	if stats.EndTime.IsZero() {
		stats.EndTime = time.Now()
	}
	return stats
}
