package gen

import (
	"context"
	"encoding/binary"
	"fmt"

	genai "google.golang.org/genai"
)

// Speech model output parameters. The API streams raw 16-bit PCM; the bytes
// are wrapped into a WAV container before posting.
const (
	speechSampleRate = 24000
	speechChannels   = 1
	speechVoice      = "Gacrux"
)

// GeminiSpeech narrates story fragments with a Gemini speech model.
type GeminiSpeech struct {
	cli      *genai.Client
	model    string
	language string
}

func NewGeminiSpeech(ctx context.Context, apiKey, model, language string) (*GeminiSpeech, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiSpeech{cli: cli, model: model, language: language}, nil
}

// Narrate implements story.Narrator.
func (g *GeminiSpeech) Narrate(ctx context.Context, text string) ([]byte, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{
		{Text: "Read like a storyteller recording an audiobook: " + text},
	}}}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: speechVoice},
			},
			LanguageCode: g.language,
		},
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gen: synthesize speech: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].InlineData == nil {
		return nil, fmt.Errorf("gen: speech model %s returned no audio", g.model)
	}
	pcm := resp.Candidates[0].Content.Parts[0].InlineData.Data
	if len(pcm) == 0 {
		return nil, fmt.Errorf("gen: speech model %s returned empty audio", g.model)
	}
	return wrapWAV(pcm, speechSampleRate, speechChannels), nil
}

// wrapWAV prefixes raw little-endian 16-bit PCM with a RIFF/WAVE header.
func wrapWAV(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	return append(header, pcm...)
}
