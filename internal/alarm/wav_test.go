package alarm

import (
	"encoding/binary"
	"testing"
	"time"
)

// encodeWAV wraps mono 16-bit PCM in a minimal RIFF header.
func encodeWAV(pcm []byte, sampleRate int) []byte {
	out := make([]byte, 44+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1)
	binary.LittleEndian.PutUint16(out[22:24], 1)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(out[32:34], 2)
	binary.LittleEndian.PutUint16(out[34:36], BitDepth)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}

func TestDecodeWAVRoundTrip(t *testing.T) {
	pcm := tonePCM(440, 0.5, 50*time.Millisecond)
	f, data, err := decodeWAV(encodeWAV(pcm, SampleRate))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.SampleRate != SampleRate || f.Channels != 1 || f.BitsPerSample != 16 || f.AudioFormat != 1 {
		t.Fatalf("unexpected format %+v", f)
	}
	if len(data) != len(pcm) {
		t.Fatalf("expected %d PCM bytes, got %d", len(pcm), len(data))
	}
	if err := f.checkPlayable(SampleRate, ChannelCount); err != nil {
		t.Fatalf("expected playable: %v", err)
	}
	if err := f.checkPlayable(22050, ChannelCount); err == nil {
		t.Fatal("expected sample rate mismatch")
	}
}

func TestDecodeWAVErrors(t *testing.T) {
	valid := encodeWAV(make([]byte, 8), SampleRate)

	noData := append([]byte(nil), valid[:36]...)

	dataFirst := append([]byte(nil), valid[:12]...)
	dataFirst = append(dataFirst, valid[36:]...)

	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte("RIFF")},
		{"not wave", append([]byte("RIFX"), valid[4:]...)},
		{"no data chunk", noData},
		{"data before fmt", dataFirst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeWAV(tt.data); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestTonePCM(t *testing.T) {
	pcm := tonePCM(1000, 1, 100*time.Millisecond)
	if want := SampleRate / 10 * 2; len(pcm) != want {
		t.Fatalf("expected %d bytes, got %d", want, len(pcm))
	}

	// Faded edges start at silence.
	if first := int16(binary.LittleEndian.Uint16(pcm[0:2])); first != 0 {
		t.Fatalf("expected silent first sample, got %d", first)
	}

	var peak int16
	for i := 0; i+1 < len(pcm); i += 2 {
		v := int16(binary.LittleEndian.Uint16(pcm[i:]))
		if v > peak {
			peak = v
		}
	}
	if peak < 30000 {
		t.Fatalf("expected near full-scale peak, got %d", peak)
	}

	if tonePCM(1000, 1, 0) != nil {
		t.Fatal("expected nil for zero duration")
	}
}
