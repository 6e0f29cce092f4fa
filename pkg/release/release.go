// Package release uploads finished audio files to a remote asset host
// and exposes the hosted listing for consistency checks.
package release

import (
	"context"
	"strings"
)

// Asset is one hosted audio file.
type Asset struct {
	Name string
	Size int64
	URL  string
}

// Publisher uploads audio files to a release store and resolves their
// public URLs.
type Publisher interface {
	// Upload publishes the file at path and returns its public URL.
	Upload(ctx context.Context, path string) (string, error)

	// AssetURL returns the public URL an asset with the given filename
	// will have once uploaded.
	AssetURL(filename string) string

	// ListAssets returns the hosted audio files keyed by filename with
	// the .mp3 suffix stripped.
	ListAssets(ctx context.Context) (map[string]Asset, error)
}

// AssetName converts a paper ID into the hosted audio filename: the
// namespace prefix is stripped, anything outside [A-Za-z0-9-_] becomes
// an underscore, and the result is capped at 100 characters before the
// .mp3 extension.
func AssetName(paperID string) string {
	name := strings.TrimPrefix(paperID, "bibtex:")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name = b.String()
	if len(name) > 100 {
		name = name[:100]
	}
	return name + ".mp3"
}
