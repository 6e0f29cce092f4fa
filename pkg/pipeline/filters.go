package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paperradio/pkg/domain"
	"paperradio/pkg/drive"
)

// PaperFilter decides whether a paper stays in the candidate list.
type PaperFilter interface {
	ShouldKeep(ctx context.Context, paper domain.Paper) (bool, error)
}

// FilterPapers applies all filters to a paper list, keeping order.
func FilterPapers(ctx context.Context, papers []domain.Paper, filters ...PaperFilter) ([]domain.Paper, error) {
	kept := make([]domain.Paper, 0, len(papers))

	for _, paper := range papers {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, paper)
			if err != nil {
				return nil, fmt.Errorf("filter error for paper %s: %w", paper.ID, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, paper)
		}
	}

	return kept, nil
}

// ProcessedFilter drops papers whose IDs are already in the processed
// set.
type ProcessedFilter struct {
	IDs map[string]bool
}

func (f *ProcessedFilter) ShouldKeep(ctx context.Context, paper domain.Paper) (bool, error) {
	return !f.IDs[paper.ID], nil
}

// RecentPDFFilter keeps papers whose matched drive PDF was modified
// within the recency window. Papers with no match are dropped, not
// failed: a missing PDF only means the paper is not ready yet.
type RecentPDFFilter struct {
	Locator PDFLocator
	MaxAge  time.Duration
	Now     func() time.Time
}

func (f *RecentPDFFilter) ShouldKeep(ctx context.Context, paper domain.Paper) (bool, error) {
	file, err := f.Locator.FindPDF(ctx, paper)
	if errors.Is(err, drive.ErrNoMatch) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	cutoff := now().Add(-f.MaxAge)
	return !file.ModifiedTime.Before(cutoff), nil
}
