package services

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Row is one row read from the media index: the raw, unfiltered view of a
// discoverable audio file. Missing tag fields stay empty here; substitution
// of defaults is the Scanner's job.
type Row struct {
	Locator    string // library-relative path
	Title      string
	Artist     string
	Album      string
	DurationMS int64
	MIME       string
	Format     string // "flac", "mp3"
	Size       int64
}

// MediaIndex provides read-only access to a catalog of discoverable audio
// files. Query streams rows in the index's native iteration order, calling
// yield once per row as it is discovered; a non-nil error from yield stops
// the query and is returned unchanged.
type MediaIndex interface {
	Query(ctx context.Context, yield func(Row) error) error
}

// fsIndex is a MediaIndex backed by a directory tree of audio files.
type fsIndex struct {
	root string
}

// NewFSIndex creates a MediaIndex over the given library root.
func NewFSIndex(root string) MediaIndex {
	return &fsIndex{root: root}
}

// Query recursively walks the library root for audio files (FLAC and MP3),
// yielding each row as soon as its metadata and duration are known.
func (fs *fsIndex) Query(ctx context.Context, yield func(Row) error) error {
	return filepath.Walk(fs.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == fs.root {
				return err
			}
			log.Printf("Error accessing path %s: %v", path, err)
			return nil // Continue walking, don't fail entire scan
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		// Check if it's an audio file (FLAC or MP3)
		ext := strings.ToLower(filepath.Ext(path))
		if info.IsDir() || (ext != ".flac" && ext != ".mp3") {
			return nil
		}

		// Get relative path from root
		relativePath, err := filepath.Rel(fs.root, path)
		if err != nil {
			relativePath = path // fallback to absolute path
		}

		format := "flac"
		if ext == ".mp3" {
			format = "mp3"
		}

		row := Row{
			Locator: relativePath,
			MIME:    GetContentType(path),
			Format:  format,
			Size:    info.Size(),
		}

		// Extract metadata from the audio file
		meta := extractAudioMetadata(path)
		row.Title = meta.title
		row.Artist = meta.artist
		row.Album = meta.album

		row.DurationMS = probeDurationMS(path, format)

		return yield(row)
	})
}

// GetContentType returns the appropriate MIME type for an audio file
func GetContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".flac":
		return "audio/flac"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

type audioMetadata struct {
	title  string
	artist string
	album  string
}

// extractAudioMetadata extracts metadata from an audio file with fallback logic
func extractAudioMetadata(filePath string) audioMetadata {
	var metadata audioMetadata

	file, err := os.Open(filePath)
	if err != nil {
		log.Printf("Warning: Could not open audio file %s: %v", filePath, err)
		return extractMetadataFromPath(filePath)
	}
	defer file.Close()

	// Extract metadata using dhowden/tag library (supports FLAC, MP3, etc.)
	meta, err := tag.ReadFrom(file)
	if err != nil {
		log.Printf("Warning: Could not parse audio metadata from %s: %v", filePath, err)
		return extractMetadataFromPath(filePath)
	}

	metadata.title = meta.Title()
	metadata.artist = meta.Artist()
	metadata.album = meta.Album()

	// Use filename fallback for missing fields
	if metadata.title == "" || metadata.artist == "" || metadata.album == "" {
		fallback := extractMetadataFromPath(filePath)
		if metadata.title == "" {
			metadata.title = fallback.title
		}
		if metadata.artist == "" {
			metadata.artist = fallback.artist
		}
		if metadata.album == "" {
			metadata.album = fallback.album
		}
	}

	return metadata
}

var trackPrefixRe = regexp.MustCompile(`^(\d+)[\.\-\s]+(.+)`)

// extractMetadataFromPath extracts metadata from file path as fallback.
// Expected structure: Artist/Album/01 - Track.flac
func extractMetadataFromPath(filePath string) audioMetadata {
	var metadata audioMetadata

	parts := strings.Split(filepath.ToSlash(filePath), "/")
	filename := filepath.Base(filePath)

	// Artist from grandparent directory, album from parent
	if len(parts) >= 3 {
		metadata.artist = parts[len(parts)-3]
	}
	if len(parts) >= 2 {
		metadata.album = parts[len(parts)-2]
	}

	// Title from filename, removing track number prefix and extension
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	if matches := trackPrefixRe.FindStringSubmatch(title); len(matches) > 2 {
		if _, err := strconv.Atoi(matches[1]); err == nil {
			title = matches[2]
		}
	}

	metadata.title = title

	return metadata
}
