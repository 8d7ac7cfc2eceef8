package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	wavHeaderSize     = 44
	wavRiffHeaderSize = 36
	wavFileSizeOffset = 4
	wavDataSizeOffset = 40

	wavWriterBufferSize = 256 * 1024
)

// wavWriter streams PCM data to a WAV file, patching the header sizes
// on Close. It avoids the per-sample allocations of generic encoders.
type wavWriter struct {
	w          *bufio.Writer
	f          *os.File
	sampleRate int
	bitDepth   int
	channels   int
	dataSize   uint32
	byteBuf    []byte
}

func newWAVWriter(f *os.File, sampleRate, bitDepth, channels int) (*wavWriter, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}

	w := &wavWriter{
		w:          bufio.NewWriterSize(f, wavWriterBufferSize),
		f:          f,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
	}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *wavWriter) writeHeader() error {
	bytesPerSample := w.bitDepth / 8
	byteRate := w.sampleRate * w.channels * bytesPerSample
	blockAlign := w.channels * bytesPerSample

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	// File and data sizes are placeholders until Close.
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt subchunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))
	copy(header[36:40], "data")

	_, err := w.w.Write(header)
	return err
}

// WriteSamples encodes interleaved integer samples at the writer's bit
// depth.
func (w *wavWriter) WriteSamples(samples []int) error {
	bytesPerSample := w.bitDepth / 8
	needed := len(samples) * bytesPerSample
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	switch w.bitDepth {
	case 16:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(s)))
		}
	case 24:
		for i, s := range samples {
			buf[i*3] = byte(s)
			buf[i*3+1] = byte(s >> 8)
			buf[i*3+2] = byte(s >> 16)
		}
	case 32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Close flushes buffered data and patches the RIFF and data sizes into
// the header.
func (w *wavWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBytes, wavRiffHeaderSize+w.dataSize)
	if _, err := w.f.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.f.Write(sizeBytes); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.f.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		return err
	}
	_, err := w.f.Write(sizeBytes)
	return err
}
