package services

import (
	"context"
	"strings"

	"audiodex/types"

	"github.com/google/uuid"
)

// Scanner performs one complete query-and-filter pass over a media index.
// It drops rows at or below the duration cutoff, substitutes the default
// title/artist strings, and returns entries in the index's native order.
type Scanner struct {
	index         MediaIndex
	minDurationMS int64

	// OnRow, when set, is called after each examined row with the running
	// examined and qualifying counts. Used for progress reporting.
	OnRow func(examined, found int)
}

// NewScanner creates a Scanner over the given index with the given duration
// cutoff in milliseconds.
func NewScanner(index MediaIndex, minDurationMS int64) *Scanner {
	return &Scanner{
		index:         index,
		minDurationMS: minDurationMS,
	}
}

// Scan queries the index and returns the qualifying entries. A zero-length
// result with a nil error means the index held no qualifying rows; an error
// means the index itself was unreachable. Callers that present results map
// both to the same empty outcome.
//
// Rows are filtered as the index yields them, so OnRow fires while the
// query is still in flight rather than in a burst at the end.
func (s *Scanner) Scan(ctx context.Context) ([]types.AudioEntry, error) {
	entries := make([]types.AudioEntry, 0)
	examined := 0

	err := s.index.Query(ctx, func(row Row) error {
		examined++

		if isMusic(row.MIME) && row.DurationMS > s.minDurationMS {
			title := row.Title
			if title == "" {
				title = types.UnknownTitle
			}
			artist := row.Artist
			if artist == "" {
				artist = types.UnknownArtist
			}

			entries = append(entries, types.AudioEntry{
				ID:       uuid.New().String(),
				Locator:  row.Locator,
				Title:    title,
				Artist:   artist,
				Album:    row.Album,
				Duration: row.DurationMS,
				Format:   row.Format,
				Size:     row.Size,
				MIME:     row.MIME,
			})
		}

		if s.OnRow != nil {
			s.OnRow(examined, len(entries))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// isMusic reports whether the row's MIME type marks it as music.
func isMusic(mime string) bool {
	return strings.HasPrefix(mime, "audio/")
}
