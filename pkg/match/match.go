// Package match scores drive filenames against paper metadata. The
// drive folder is populated by a reference manager that names files
// "<FirstAuthorSurname> <Year> - <Title>.pdf", so matching is a fuzzy
// comparison against that convention.
package match

import (
	"regexp"
	"sort"
	"strings"

	"paperradio/pkg/domain"
)

// Scoring weights. A title match is mandatory: author and year credit
// alone can sum to the threshold, so acceptance additionally requires
// the title component to have matched.
const (
	titleScore  = 50
	authorScore = 30
	yearScore   = 20

	// MinScore is the minimum total score for a fuzzy match.
	MinScore = 50
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// SearchName builds the expected filename (without extension) for a
// paper: "<Surname> <Year> - <Title>", omitting the year when unknown.
func SearchName(p domain.Paper) string {
	surname := p.FirstAuthorSurname()
	if surname == "" {
		surname = "Unknown"
	}

	if year := p.Year(); year != "" {
		return surname + " " + year + " - " + p.Title
	}
	return surname + " - " + p.Title
}

// Normalize lowercases, strips punctuation, and collapses whitespace.
func Normalize(text string) string {
	text = nonWordPattern.ReplaceAllString(strings.ToLower(text), "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Score rates how well a single filename matches the paper. The second
// return value reports whether the title component matched.
func Score(p domain.Paper, file domain.DriveFile) (int, bool) {
	name := Normalize(strings.TrimSuffix(file.Name, ".pdf"))

	score := 0
	titleMatched := false

	if title := Normalize(p.Title); title != "" && strings.Contains(name, title) {
		score += titleScore
		titleMatched = true
	}

	if surname := strings.ToLower(p.FirstAuthorSurname()); surname != "" && strings.Contains(name, surname) {
		score += authorScore
	}

	if year := p.Year(); year != "" && strings.Contains(file.Name, year) {
		score += yearScore
	}

	return score, titleMatched
}

// BestMatch returns the drive file matching the paper, or false when no
// file qualifies. An exact case-insensitive filename match wins
// outright; otherwise every file is scored and the best one is accepted
// only if the title matched and the total reaches MinScore. Ties are
// broken deterministically: most recently modified first, then the
// lexicographically smaller name.
func BestMatch(p domain.Paper, files []domain.DriveFile) (domain.DriveFile, bool) {
	expected := strings.ToLower(SearchName(p)) + ".pdf"
	for _, file := range files {
		if strings.ToLower(file.Name) == expected {
			return file, true
		}
	}

	candidates := make([]domain.DriveFile, len(files))
	copy(candidates, files)
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].ModifiedTime.Equal(candidates[j].ModifiedTime) {
			return candidates[i].ModifiedTime.After(candidates[j].ModifiedTime)
		}
		return candidates[i].Name < candidates[j].Name
	})

	var best domain.DriveFile
	bestScore := 0
	found := false

	for _, file := range candidates {
		score, titleMatched := Score(p, file)
		if !titleMatched || score < MinScore {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = file
			found = true
		}
	}

	return best, found
}
