// Package audio converts between the telephony and speech-service audio formats.
package audio

import "math"

const (
	// TelephonySampleRate is the G.711 rate used on the SIP leg.
	TelephonySampleRate = 8000
	// SpeechSampleRate is what the speech services consume and produce.
	SpeechSampleRate = 24000

	// FrameDuration is the packetization interval of the phone leg, in milliseconds.
	FrameDuration = 20
	// MuLawFrameSize is one FrameDuration of 8kHz µ-law.
	MuLawFrameSize = TelephonySampleRate * FrameDuration / 1000
)

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// ConvertMuLawToPCM decodes G.711 µ-law into little-endian PCM16 at the same rate.
func ConvertMuLawToPCM(mulaw []byte) []byte {
	pcm := make([]byte, len(mulaw)*2)
	for i, b := range mulaw {
		putSample(pcm, i, mulawToLinear(b))
	}
	return pcm
}

// ConvertPCMToMuLaw encodes little-endian PCM16 into G.711 µ-law at the same rate.
func ConvertPCMToMuLaw(pcm []byte) []byte {
	mulaw := make([]byte, len(pcm)/2)
	for i := range mulaw {
		mulaw[i] = linearToMulaw(sampleAt(pcm, i))
	}
	return mulaw
}

// ConvertMuLaw8kHzToPCM24kHz turns a phone-leg payload into speech-service input.
func ConvertMuLaw8kHzToPCM24kHz(mulaw []byte) []byte {
	return Upsample(ConvertMuLawToPCM(mulaw), SpeechSampleRate/TelephonySampleRate)
}

// ConvertPCM24kHzToMuLaw8kHz turns synthesized speech into a phone-leg payload.
func ConvertPCM24kHzToMuLaw8kHz(pcm24k []byte) []byte {
	return ConvertPCMToMuLaw(Downsample(pcm24k, SpeechSampleRate/TelephonySampleRate))
}

// Frames splits payload into size-byte frames. The last frame is padded with
// µ-law silence so every frame has the same duration.
func Frames(payload []byte, size int) [][]byte {
	if size <= 0 || len(payload) == 0 {
		return nil
	}
	frames := make([][]byte, 0, (len(payload)+size-1)/size)
	for start := 0; start < len(payload); start += size {
		end := start + size
		if end <= len(payload) {
			frames = append(frames, payload[start:end])
			continue
		}
		last := make([]byte, size)
		n := copy(last, payload[start:])
		for i := n; i < size; i++ {
			last[i] = MuLawSilence
		}
		frames = append(frames, last)
	}
	return frames
}

// MuLawSilence is the µ-law encoding of a zero sample.
const MuLawSilence byte = 0xFF

func mulawToLinear(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := b & 0x0F

	sample := (int32(mantissa)<<3 + mulawBias) << exponent
	sample -= mulawBias
	if sign != 0 {
		return int16(-sample)
	}
	return int16(sample)
}

func linearToMulaw(s int16) byte {
	sample := int32(s)
	var sign byte
	if sample < 0 {
		sign = 0x80
		sample = -sample
	}
	if sample > mulawClip {
		sample = mulawClip
	}
	sample += mulawBias

	exponent := byte(7)
	for mask := int32(0x4000); exponent > 0 && sample&mask == 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte(sample>>(exponent+3)) & 0x0F
	return ^(sign | exponent<<4 | mantissa)
}

// Downsample keeps every factor-th sample.
func Downsample(pcm []byte, factor int) []byte {
	if factor <= 1 {
		return pcm
	}
	n := len(pcm) / 2 / factor
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		putSample(out, i, sampleAt(pcm, i*factor))
	}
	return out
}

// Upsample linearly interpolates factor samples per input sample.
func Upsample(pcm []byte, factor int) []byte {
	if factor <= 1 {
		return pcm
	}
	samples := len(pcm) / 2
	out := make([]byte, samples*factor*2)
	for i := 0; i < samples; i++ {
		current := int32(sampleAt(pcm, i))
		next := current
		if i+1 < samples {
			next = int32(sampleAt(pcm, i+1))
		}
		for j := 0; j < factor; j++ {
			v := current + (next-current)*int32(j)/int32(factor)
			putSample(out, i*factor+j, clamp(v))
		}
	}
	return out
}

func sampleAt(pcm []byte, i int) int16 {
	return int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
}

func putSample(pcm []byte, i int, s int16) {
	pcm[i*2] = byte(s)
	pcm[i*2+1] = byte(uint16(s) >> 8)
}

func clamp(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
