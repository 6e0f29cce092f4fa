package release

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabasePublisher hosts audio files in a Supabase Storage bucket.
// Alternative to GitHub Releases, selected via RELEASE_BACKEND.
type SupabasePublisher struct {
	storage *storage.Client
	bucket  string
}

// NewSupabasePublisher connects to the project's storage API.
func NewSupabasePublisher(projectURL, apiKey, bucket string) (*SupabasePublisher, error) {
	client, err := supabase.NewClient(projectURL, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabasePublisher{storage: client.Storage, bucket: bucket}, nil
}

// Upload stores the file in the bucket, overwriting any previous object
// with the same name, and returns its public URL.
func (p *SupabasePublisher) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	filename := filepath.Base(path)
	contentType := "audio/mpeg"
	upsert := true

	if _, err := p.storage.UploadFile(p.bucket, filename, f, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", filename, p.bucket, err)
	}

	return p.AssetURL(filename), nil
}

// AssetURL returns the public object URL for a filename.
func (p *SupabasePublisher) AssetURL(filename string) string {
	return p.storage.GetPublicUrl(p.bucket, filename).SignedURL
}

// ListAssets returns the bucket's .mp3 objects keyed by basename
// without extension.
func (p *SupabasePublisher) ListAssets(ctx context.Context) (map[string]Asset, error) {
	objects, err := p.storage.ListFiles(p.bucket, "", storage.FileSearchOptions{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", p.bucket, err)
	}

	assets := make(map[string]Asset)
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Name, ".mp3") {
			continue
		}
		assets[strings.TrimSuffix(obj.Name, ".mp3")] = Asset{
			Name: obj.Name,
			Size: objectSize(obj),
			URL:  p.AssetURL(obj.Name),
		}
	}

	return assets, nil
}

// objectSize reads the size out of the object's untyped metadata; the
// storage API does not expose it as a typed field.
func objectSize(obj storage.FileObject) int64 {
	data, err := json.Marshal(obj.Metadata)
	if err != nil {
		return 0
	}
	var meta struct {
		Size int64 `json:"size"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return 0
	}
	return meta.Size
}
