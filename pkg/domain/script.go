package domain

import "strings"

// Speaker labels used by the generated dialogue. R is the host guiding
// the conversation, S the expert providing analysis.
const (
	SpeakerHost   = "R"
	SpeakerExpert = "S"
)

// Turn is a single utterance in the generated dialogue.
type Turn struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
}

// MultiSpeakerMarkup is the structured dialogue representation consumed
// by the TTS stage.
type MultiSpeakerMarkup struct {
	Turns []Turn `json:"turns"`
}

// Script is a complete two-host episode script.
type Script struct {
	Markup MultiSpeakerMarkup `json:"multiSpeakerMarkup"`
}

// WordCount counts the words across all turns.
func (s Script) WordCount() int {
	total := 0
	for _, turn := range s.Markup.Turns {
		total += len(strings.Fields(turn.Text))
	}
	return total
}
