package types

// Default strings substituted when an audio file carries no usable tag.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// AudioEntry represents one playable audio item surfaced by a scan.
// Entries are rebuilt from the media index on every scan and never persisted.
type AudioEntry struct {
	ID       string `json:"id"`       // opaque handle, unique within one scan
	Locator  string `json:"locator"`  // library-relative path, usable to fetch bytes later
	Title    string `json:"title"`    // never empty, defaults to UnknownTitle
	Artist   string `json:"artist"`   // never empty, defaults to UnknownArtist
	Album    string `json:"album,omitempty"`
	Duration int64  `json:"duration"` // milliseconds
	Format   string `json:"format"`   // "flac", "mp3"
	Size     int64  `json:"size"`
	MIME     string `json:"mime"`
}
