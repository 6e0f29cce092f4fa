// Package script turns paper text into a two-host podcast dialogue via
// the Gemini API.
package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"paperradio/pkg/domain"

	"google.golang.org/genai"
)

const (
	scriptModel = "gemini-2.0-flash"

	maxRetries = 3
	minTurns   = 4

	// wordsPerMinute is the assumed speaking rate for the fallback
	// duration estimate.
	wordsPerMinute = 150
)

// ErrGeneration means every attempt produced an unparseable or
// structurally invalid script.
var ErrGeneration = errors.New("script generation failed")

const promptTemplate = `You are creating a podcast script for a discussion about an academic paper.
The podcast features two hosts:
- Speaker R (Host): Introduces topics, asks clarifying questions, and guides the conversation
- Speaker S (Expert): Provides explanations, insights, and deeper analysis

Create an engaging, educational dialogue that:
1. Opens with a brief, catchy introduction of the paper's topic
2. Explains the key concepts in accessible language
3. Discusses the methodology and findings
4. Covers the implications and significance
5. Ends with key takeaways

Guidelines:
- Keep it conversational and natural, not like reading a paper
- Use analogies and examples to explain complex concepts
- Include natural reactions ("That's fascinating!", "Right, exactly")
- Avoid jargon when possible, explain technical terms when needed
- The hosts are NOT the authors; refer to the authors in third person
- Total length should be 10-15 minutes when spoken (roughly 1500-2500 words total)
- Each speaker turn should be 1-4 sentences for natural flow

Output ONLY a valid JSON object in this exact format (no markdown, no explanation):
{
  "multiSpeakerMarkup": {
    "turns": [
      {"text": "Welcome to Research Radio...", "speaker": "R"},
      {"text": "Thanks for having me...", "speaker": "S"}
    ]
  }
}

Paper title: %s
Authors: %s

Paper content:
%s
`

// Generator produces podcast scripts with a fixed persona prompt.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Gemini-backed script generator.
func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Generator{client: client, model: scriptModel}, nil
}

// Generate asks the model for a dialogue about the paper and parses the
// response, retrying on parse or validation failure up to maxRetries
// attempts before giving up.
func (g *Generator) Generate(ctx context.Context, title string, authors []string, paperText string) (*domain.Script, error) {
	authorList := "Unknown"
	if len(authors) > 0 {
		authorList = strings.Join(authors, ", ")
	}
	prompt := fmt.Sprintf(promptTemplate, title, authorList, paperText)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			MaxOutputTokens: 8192,
		})
		if err != nil {
			lastErr = err
			log.Printf("Attempt %d: error generating script: %v", attempt, err)
			continue
		}

		script, err := Parse(resp.Text())
		if err != nil {
			lastErr = err
			log.Printf("Attempt %d: failed to parse script, retrying...", attempt)
			continue
		}

		if err := Validate(script); err != nil {
			lastErr = err
			log.Printf("Attempt %d: invalid script: %v", attempt, err)
			continue
		}

		return script, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrGeneration, maxRetries, lastErr)
}

// Validate enforces the structural contract: at least minTurns turns,
// every turn populated, and speakers drawn from the fixed two-host set.
func Validate(s *domain.Script) error {
	turns := s.Markup.Turns
	if len(turns) < minTurns {
		return fmt.Errorf("script has %d turns, need at least %d", len(turns), minTurns)
	}

	for i, turn := range turns {
		if strings.TrimSpace(turn.Text) == "" {
			return fmt.Errorf("turn %d has no text", i)
		}
		if turn.Speaker != domain.SpeakerHost && turn.Speaker != domain.SpeakerExpert {
			return fmt.Errorf("turn %d has unknown speaker %q", i, turn.Speaker)
		}
	}

	return nil
}

// EstimateDuration estimates the spoken length of a script in seconds
// from its word count. Used only when the true audio duration is
// unavailable.
func EstimateDuration(s *domain.Script) int {
	return s.WordCount() * 60 / wordsPerMinute
}
