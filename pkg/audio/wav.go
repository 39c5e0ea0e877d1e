// Package audio frames raw PCM captures as WAV files.
package audio

import (
	"bytes"
	"encoding/binary"
)

const (
	DefaultSampleRate    = 44100
	DefaultChannels      = 1
	DefaultBitsPerSample = 16

	wavHeaderSize = 44
)

type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

func DefaultFormat() Format {
	return Format{
		SampleRate:    DefaultSampleRate,
		Channels:      DefaultChannels,
		BitsPerSample: DefaultBitsPerSample,
	}
}

// IsWAV reports whether data already starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

// EnsureWAV returns data unchanged when it is already a WAV file, otherwise it wraps the
// samples in a canonical 44 byte PCM header.
func EnsureWAV(data []byte, format Format) []byte {
	if IsWAV(data) {
		return data
	}
	return Encode(data, format)
}

func Encode(pcm []byte, format Format) []byte {
	if format.SampleRate <= 0 {
		format.SampleRate = DefaultSampleRate
	}
	if format.Channels <= 0 {
		format.Channels = DefaultChannels
	}
	if format.BitsPerSample <= 0 {
		format.BitsPerSample = DefaultBitsPerSample
	}

	blockAlign := format.Channels * format.BitsPerSample / 8
	byteRate := format.SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(format.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(format.BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
