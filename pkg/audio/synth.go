// Package audio renders podcast scripts to MP3 via Gemini multi-speaker
// TTS and ffmpeg.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"paperradio/pkg/domain"

	"google.golang.org/genai"
)

const (
	ttsModel = "gemini-2.5-flash-preview-tts"

	// Gemini TTS returns 16-bit mono PCM at 24kHz.
	pcmSampleRate = 24000

	// Named speaker roles in the transcript handed to the TTS model.
	hostRole   = "Host"
	cohostRole = "Cohost"
)

var (
	// ErrEmptyAudio means the TTS call returned no audio payload.
	ErrEmptyAudio = errors.New("tts returned no audio data")
	// ErrEncoderMissing means ffmpeg is not installed.
	ErrEncoderMissing = errors.New("ffmpeg not found")
)

// Synthesizer converts dialogue scripts to audio files using two fixed
// prebuilt voices.
type Synthesizer struct {
	client      *genai.Client
	model       string
	hostVoice   string
	cohostVoice string
}

// NewSynthesizer creates a Gemini-backed TTS synthesizer.
func NewSynthesizer(ctx context.Context, apiKey, hostVoice, cohostVoice string) (*Synthesizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Synthesizer{
		client:      client,
		model:       ttsModel,
		hostVoice:   hostVoice,
		cohostVoice: cohostVoice,
	}, nil
}

// Synthesize renders the script to an MP3 at outputPath. The raw PCM
// response is written to an intermediate WAV which is transcoded with
// ffmpeg and removed on success. On failure no partial output file is
// left behind claiming to be valid.
func (s *Synthesizer) Synthesize(ctx context.Context, script *domain.Script, outputPath string) error {
	prompt := buildTranscript(script)

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			MultiSpeakerVoiceConfig: &genai.MultiSpeakerVoiceConfig{
				SpeakerVoiceConfigs: []*genai.SpeakerVoiceConfig{
					speakerVoice(hostRole, s.hostVoice),
					speakerVoice(cohostRole, s.cohostVoice),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("tts call: %w", err)
	}

	pcm := audioPayload(resp)
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}

	wavPath := strings.TrimSuffix(outputPath, ".mp3") + ".wav"
	if err := writeWAV(wavPath, pcm, pcmSampleRate); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	if err := transcodeToMP3(wavPath, outputPath); err != nil {
		os.Remove(outputPath)
		return err
	}

	if err := os.Remove(wavPath); err != nil {
		log.Printf("Warning: could not remove intermediate %s: %v", wavPath, err)
	}
	return nil
}

// buildTranscript converts the turn list into the labeled transcript
// format the multi-speaker model expects. Speaker labels must match the
// roles configured in the speech config.
func buildTranscript(script *domain.Script) string {
	var b strings.Builder
	b.WriteString("Read this podcast conversation naturally with appropriate emotion and pacing:\n\n")
	for _, turn := range script.Markup.Turns {
		role := hostRole
		if turn.Speaker == domain.SpeakerExpert {
			role = cohostRole
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func speakerVoice(role, voice string) *genai.SpeakerVoiceConfig {
	return &genai.SpeakerVoiceConfig{
		Speaker: role,
		VoiceConfig: &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
		},
	}
}

// audioPayload digs the inline PCM bytes out of the response.
func audioPayload(resp *genai.GenerateContentResponse) []byte {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
