package services

import (
	"log"
	"os"
	"time"

	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// probeDurationMS determines the playing time of an audio file in
// milliseconds. Files that cannot be decoded report 0, which the duration
// filter later drops rather than failing the scan.
func probeDurationMS(path, format string) int64 {
	switch format {
	case "mp3":
		return mp3DurationMS(path)
	case "flac":
		return flacDurationMS(path)
	default:
		return 0
	}
}

// mp3DurationMS sums the duration of every MPEG frame in the file. A decode
// error mid-stream (trailing garbage, truncated file) keeps whatever
// accumulated up to that point.
func mp3DurationMS(path string) int64 {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("Warning: Could not open audio file %s: %v", path, err)
		return 0
	}
	defer file.Close()

	var total time.Duration
	var skipped int
	var frame mp3.Frame

	decoder := mp3.NewDecoder(file)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}

	return total.Milliseconds()
}

// flacDurationMS reads the STREAMINFO block: total samples over sample rate.
func flacDurationMS(path string) int64 {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("Warning: Could not open audio file %s: %v", path, err)
		return 0
	}
	defer file.Close()

	stream, err := flac.Parse(file)
	if err != nil {
		log.Printf("Warning: Could not parse FLAC stream from %s: %v", path, err)
		return 0
	}

	info := stream.Info
	if info == nil || info.SampleRate == 0 {
		return 0
	}

	return int64(info.NSamples * 1000 / uint64(info.SampleRate))
}
