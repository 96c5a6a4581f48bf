package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps a clip in a canonical 44-byte RIFF/WAVE header (PCM, mono, 16-bit).
func EncodeWAV(clip Clip) []byte {
	const (
		bitsPerSample = 16
		channels      = 1
		blockAlign    = channels * bitsPerSample / 8
	)
	dataSize := uint32(len(clip.Samples) * blockAlign)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	_ = binary.Write(&buf, binary.LittleEndian, clip.Samples)

	return buf.Bytes()
}
