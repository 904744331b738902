package alarm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// wavFormat is the subset of the WAV fmt chunk the player cares about.
type wavFormat struct {
	AudioFormat   uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// decodeWAV returns the format and raw PCM data of a RIFF/WAVE file.
func decodeWAV(wav []byte) (wavFormat, []byte, error) {
	var f wavFormat
	if len(wav) < 12 {
		return f, nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return f, nil, errors.New("not a valid WAV file")
	}

	var haveFmt bool
	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		start := pos + 8

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 || start+16 > len(wav) {
				return f, nil, errors.New("fmt chunk too short")
			}
			f.AudioFormat = binary.LittleEndian.Uint16(wav[start : start+2])
			f.Channels = int(binary.LittleEndian.Uint16(wav[start+2 : start+4]))
			f.SampleRate = int(binary.LittleEndian.Uint32(wav[start+4 : start+8]))
			f.BitsPerSample = int(binary.LittleEndian.Uint16(wav[start+14 : start+16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return f, nil, errors.New("data chunk before fmt chunk")
			}
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			return f, wav[start:end], nil
		}

		pos = start + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return f, nil, errors.New("data chunk not found in WAV")
}

// checkPlayable verifies the WAV is 16-bit PCM in the given layout.
func (f wavFormat) checkPlayable(sampleRate, channels int) error {
	if f.AudioFormat != 1 || f.BitsPerSample != BitDepth {
		return fmt.Errorf("unsupported WAV encoding (format=%d, bits=%d), need 16-bit PCM", f.AudioFormat, f.BitsPerSample)
	}
	if f.SampleRate != sampleRate || f.Channels != channels {
		return fmt.Errorf("WAV is %d Hz/%d ch, player runs %d Hz/%d ch", f.SampleRate, f.Channels, sampleRate, channels)
	}
	return nil
}

// fadeSamples is the ramp length applied to both ends of a tone to avoid clicks.
const fadeSamples = SampleRate / 200

// tonePCM renders a mono 16-bit little-endian sine burst.
func tonePCM(hz, volume float64, d time.Duration) []byte {
	n := int(d.Seconds() * SampleRate)
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		amp := volume
		switch {
		case i < fadeSamples:
			amp *= float64(i) / fadeSamples
		case n-i < fadeSamples:
			amp *= float64(n-i) / fadeSamples
		}
		v := int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*hz*float64(i)/SampleRate))
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	return buf
}
