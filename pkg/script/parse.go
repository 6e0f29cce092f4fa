package script

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"paperradio/pkg/domain"
)

// ErrUnparseable means none of the parse strategies produced a script.
var ErrUnparseable = errors.New("could not parse script from model response")

const markupKey = `"multiSpeakerMarkup"`

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseStrategy is one way of digging the script JSON out of a model
// response. Strategies are tried in order; the first success wins.
type parseStrategy struct {
	name string
	fn   func(string) (*domain.Script, bool)
}

var strategies = []parseStrategy{
	{"raw", parseRaw},
	{"fenced-block", parseFencedBlock},
	{"balanced-braces", parseBalancedBraces},
}

// Parse extracts a Script from a model response. Models frequently wrap
// the JSON in markdown fences or prose, so parsing falls back through
// progressively more forgiving strategies.
func Parse(response string) (*domain.Script, error) {
	for _, strategy := range strategies {
		if script, ok := strategy.fn(response); ok {
			return script, nil
		}
	}
	return nil, ErrUnparseable
}

// parseRaw tries the whole response as JSON.
func parseRaw(response string) (*domain.Script, bool) {
	return decode(response)
}

// parseFencedBlock extracts the first fenced code block and tries that.
func parseFencedBlock(response string) (*domain.Script, bool) {
	m := fencedBlockPattern.FindStringSubmatch(response)
	if m == nil {
		return nil, false
	}
	return decode(m[1])
}

// parseBalancedBraces scans for the first balanced brace-delimited
// object containing the markup key.
func parseBalancedBraces(response string) (*domain.Script, bool) {
	keyIdx := strings.Index(response, markupKey)
	if keyIdx < 0 {
		return nil, false
	}

	start := strings.LastIndex(response[:keyIdx], "{")
	if start < 0 {
		return nil, false
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return decode(response[start : i+1])
			}
		}
	}

	return nil, false
}

func decode(text string) (*domain.Script, bool) {
	var script domain.Script
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &script); err != nil {
		return nil, false
	}
	if len(script.Markup.Turns) == 0 {
		return nil, false
	}
	return &script, true
}
