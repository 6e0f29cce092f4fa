package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"paperradio/pkg/domain"
)

// episodesDocument is the on-disk shape of the episode store file.
type episodesDocument struct {
	Episodes []domain.Episode `json:"episodes"`
}

// processedDocument is the on-disk shape of the processed-set file.
type processedDocument struct {
	ProcessedPapers []string `json:"processed_papers"`
}

// FileStore keeps episodes and the processed set in two JSON files,
// read-modify-written whole on every mutation. Good enough for a
// single sequential process; swap in another Store implementation when
// that stops being true.
type FileStore struct {
	episodesPath  string
	processedPath string
}

// NewFileStore creates a file-backed store. Missing files read as empty.
func NewFileStore(episodesPath, processedPath string) *FileStore {
	return &FileStore{episodesPath: episodesPath, processedPath: processedPath}
}

// LoadEpisodes reads the episode file. Publication dates come back
// normalized to UTC.
func (s *FileStore) LoadEpisodes(ctx context.Context) ([]domain.Episode, error) {
	data, err := os.ReadFile(s.episodesPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.episodesPath, err)
	}

	var doc episodesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.episodesPath, err)
	}
	return doc.Episodes, nil
}

// UpsertEpisode replaces an existing episode with the same ID or
// appends a new one, then rewrites the file.
func (s *FileStore) UpsertEpisode(ctx context.Context, episode domain.Episode) error {
	episodes, err := s.LoadEpisodes(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range episodes {
		if episodes[i].ID == episode.ID {
			episodes[i] = episode
			replaced = true
			break
		}
	}
	if !replaced {
		episodes = append(episodes, episode)
	}

	return writeJSON(s.episodesPath, episodesDocument{Episodes: episodes})
}

// LoadProcessedIDs reads the processed-set file into a set.
func (s *FileStore) LoadProcessedIDs(ctx context.Context) (map[string]bool, error) {
	data, err := os.ReadFile(s.processedPath)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.processedPath, err)
	}

	var doc processedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.processedPath, err)
	}

	ids := make(map[string]bool, len(doc.ProcessedPapers))
	for _, id := range doc.ProcessedPapers {
		ids[id] = true
	}
	return ids, nil
}

// MarkProcessed appends a paper ID to the processed set, preserving
// first-seen order so diffs of the file stay readable.
func (s *FileStore) MarkProcessed(ctx context.Context, paperID string) error {
	data, err := os.ReadFile(s.processedPath)
	var doc processedDocument
	if err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", s.processedPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", s.processedPath, err)
	}

	for _, id := range doc.ProcessedPapers {
		if id == paperID {
			return nil
		}
	}
	doc.ProcessedPapers = append(doc.ProcessedPapers, paperID)

	return writeJSON(s.processedPath, doc)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
