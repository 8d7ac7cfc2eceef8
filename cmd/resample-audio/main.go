// Command resample-audio converts WAV, MP3 and Ogg Vorbis files to a
// target sample rate, writing PCM WAV output.
//
// Usage:
//
//	resample-audio -rate 48000 input.wav output.wav
//	resample-audio -rate 44100 -quality very-high input.flac.ogg out.wav
//	resample-audio -rate 16000 -fast podcast.mp3 speech.wav
//
// Parallel channel processing is enabled by default for multichannel
// input.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tphakala/go-stream-resampler"
)

const minRequiredArgs = 2

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Int("rate", 48000, "Target sample rate in Hz")
	quality := flag.String("quality", "high", "Quality preset: quick, low, medium, high, very-high")
	bits := flag.Int("bits", 16, "Output bit depth: 16, 24 or 32")
	fast := flag.Bool("fast", false, "Use float32 precision (faster, sufficient for 16-bit audio)")
	parallel := flag.Bool("parallel", true, "Enable parallel channel processing")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.{wav,mp3,ogg} output.wav\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	q, err := parseQuality(*quality)
	if err != nil {
		return err
	}
	if *bits != 16 && *bits != 24 && *bits != 32 {
		return fmt.Errorf("unsupported output bit depth %d", *bits)
	}

	src, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if src.rate == *rate {
		return fmt.Errorf("input already at target rate %d Hz", *rate)
	}

	if *verbose {
		log.Printf("Input: %s (%d Hz, %d channels)", args[0], src.rate, src.channels)
		log.Printf("Output: %s (%d Hz, %d-bit)", args[1], *rate, *bits)
		log.Printf("Quality: %s", q)
	}

	start := time.Now()
	var stats *convertStats
	if *fast {
		stats, err = convert[float32](src, args[1], *rate, *bits, q, *parallel)
	} else {
		stats, err = convert[float64](src, args[1], *rate, *bits, q, *parallel)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Resampled %s -> %s\n", filepath.Base(args[0]), filepath.Base(args[1]))
	fmt.Printf("  %d Hz -> %d Hz (%d channels, %d-bit out)\n",
		src.rate, *rate, src.channels, *bits)
	fmt.Printf("  %d frames -> %d frames\n", stats.inputFrames, stats.outputFrames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputFrames)/float64(src.rate)/elapsed.Seconds())
	return nil
}

func parseQuality(q string) (resampler.Quality, error) {
	switch strings.ToLower(q) {
	case "quick":
		return resampler.QualityQuick, nil
	case "low":
		return resampler.QualityLow, nil
	case "medium":
		return resampler.QualityMedium, nil
	case "high":
		return resampler.QualityHigh, nil
	case "very-high":
		return resampler.QualityVeryHigh, nil
	default:
		return 0, fmt.Errorf("unknown quality preset %q", q)
	}
}
