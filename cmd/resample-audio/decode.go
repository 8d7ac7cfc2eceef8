package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// decodeFrames is the number of frames requested from a decoder per
// read.
const decodeFrames = 8192

// pcmSource is a decoded audio stream normalized to interleaved float64
// samples in [-1, 1].
type pcmSource struct {
	rate     int
	channels int

	// read fills dst with interleaved samples and returns the sample
	// count. io.EOF signals end of stream.
	read func(dst []float64) (int, error)

	file *os.File
}

func (s *pcmSource) Close() error {
	return s.file.Close()
}

// openSource opens an audio file, picking the decoder by extension.
func openSource(path string) (*pcmSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	var src *pcmSource
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		src, err = wavSource(f)
	case ".mp3":
		src, err = mp3Source(f)
	case ".ogg", ".oga":
		src, err = oggSource(f)
	default:
		err = fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	src.file = f
	return src, nil
}

func wavSource(f *os.File) (*pcmSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", f.Name())
	}

	format := dec.Format()
	channels := format.NumChannels
	scale := 1.0 / pcmFullScale(int(dec.BitDepth))

	buf := &audio.IntBuffer{
		Data:   make([]int, decodeFrames*channels),
		Format: format,
	}

	return &pcmSource{
		rate:     format.SampleRate,
		channels: channels,
		read: func(dst []float64) (int, error) {
			want := len(dst) / channels
			if want > decodeFrames {
				want = decodeFrames
			}
			buf.Data = buf.Data[:want*channels]
			// PCMBuffer reports samples read, not frames.
			n, err := dec.PCMBuffer(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("failed to read WAV data: %w", err)
			}
			if n == 0 {
				return 0, io.EOF
			}
			for i := 0; i < n; i++ {
				dst[i] = float64(buf.Data[i]) * scale
			}
			return n, nil
		},
	}, nil
}

func mp3Source(f *os.File) (*pcmSource, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 stream: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo.
	const channels = 2
	byteBuf := make([]byte, decodeFrames*channels*2)

	return &pcmSource{
		rate:     dec.SampleRate(),
		channels: channels,
		read: func(dst []float64) (int, error) {
			want := len(dst) * 2
			if want > len(byteBuf) {
				want = len(byteBuf)
			}
			n, err := io.ReadFull(dec, byteBuf[:want])
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				if errors.Is(err, io.EOF) {
					return 0, io.EOF
				}
				return 0, fmt.Errorf("failed to read MP3 data: %w", err)
			}
			samples := n / 2
			for i := 0; i < samples; i++ {
				v := int16(binary.LittleEndian.Uint16(byteBuf[i*2:]))
				dst[i] = float64(v) / 32768.0
			}
			if samples == 0 {
				return 0, io.EOF
			}
			return samples, nil
		},
	}, nil
}

func oggSource(f *os.File) (*pcmSource, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open Ogg Vorbis stream: %w", err)
	}

	floatBuf := make([]float32, decodeFrames*dec.Channels())

	return &pcmSource{
		rate:     dec.SampleRate(),
		channels: dec.Channels(),
		read: func(dst []float64) (int, error) {
			want := len(dst)
			if want > len(floatBuf) {
				want = len(floatBuf)
			}
			n, err := dec.Read(floatBuf[:want])
			if n == 0 {
				if err == nil {
					err = io.EOF
				}
				if errors.Is(err, io.EOF) {
					return 0, io.EOF
				}
				return 0, fmt.Errorf("failed to read Ogg data: %w", err)
			}
			for i := 0; i < n; i++ {
				dst[i] = float64(floatBuf[i])
			}
			return n, nil
		},
	}, nil
}

// pcmFullScale returns the positive full-scale value for a PCM bit
// depth.
func pcmFullScale(bitDepth int) float64 {
	switch bitDepth {
	case 24:
		return 8388607.0
	case 32:
		return 2147483647.0
	default:
		return 32767.0
	}
}
