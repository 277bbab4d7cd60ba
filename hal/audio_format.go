package hal

import (
	"bytes"
	"errors"
)

var ErrUnknownAudio = errors.New("unknown audio format")

type audioFormat uint8

const (
	audioUnknown audioFormat = iota
	audioVorbis
	audioWAV
	audioMP3
)

func (f audioFormat) String() string {
	switch f {
	case audioVorbis:
		return "vorbis"
	case audioWAV:
		return "wav"
	case audioMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// sniffAudio identifies a sound track by its leading bytes.
func sniffAudio(data []byte) audioFormat {
	switch {
	case bytes.HasPrefix(data, []byte("OggS")):
		return audioVorbis
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return audioWAV
	case bytes.HasPrefix(data, []byte("ID3")):
		return audioMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG frame sync.
		return audioMP3
	default:
		return audioUnknown
	}
}
