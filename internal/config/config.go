package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for the prompt-facing strings. All of them can be overridden from
// the environment so a deployment can run in another language.
const (
	DefaultPollQuestion   = "How should the story continue?"
	DefaultFallbackChoice = "Continue as you see fit."
	DefaultEndStoryOption = "End the story"
)

type Config struct {
	BotToken  string
	ChannelID string
	StoryID   string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GeminiAPIKey     string
	GeminiImageModel string
	GeminiTTSModel   string
	SpeechLanguage   string
	ImagePromptStyle string

	InitialStoryIdea  string
	MaxContextChars   int
	StoryMaxSentences int

	PollQuestion   string
	FallbackChoice string
	EndStoryOption string

	StatePath string
	LogFile   string
	DryRun    bool

	Archive ArchiveConfig
}

// ArchiveConfig configures the optional S3-compatible media archive.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:  strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		ChannelID: strings.TrimSpace(os.Getenv("CHANNEL_ID")),
		StoryID:   firstNonEmpty(strings.TrimSpace(os.Getenv("STORY_ID")), "default"),

		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIModel:   strings.TrimSpace(os.Getenv("OPENAI_MODEL")),

		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiImageModel: strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")),
		GeminiTTSModel:   strings.TrimSpace(os.Getenv("GEMINI_TTS_MODEL")),
		SpeechLanguage:   firstNonEmpty(strings.TrimSpace(os.Getenv("SPEECH_LANGUAGE")), "en-US"),
		ImagePromptStyle: strings.TrimSpace(os.Getenv("IMAGE_PROMPT_START")),

		InitialStoryIdea:  strings.TrimSpace(os.Getenv("INITIAL_STORY_IDEA")),
		MaxContextChars:   envInt("MAX_CONTEXT_CHARS", 15000),
		StoryMaxSentences: envInt("STORY_MAX_SENTENCES", 500),

		PollQuestion:   firstNonEmpty(strings.TrimSpace(os.Getenv("POLL_QUESTION")), DefaultPollQuestion),
		FallbackChoice: firstNonEmpty(strings.TrimSpace(os.Getenv("FALLBACK_CHOICE")), DefaultFallbackChoice),
		EndStoryOption: firstNonEmpty(strings.TrimSpace(os.Getenv("END_STORY_OPTION")), DefaultEndStoryOption),

		StatePath: firstNonEmpty(strings.TrimSpace(os.Getenv("STATE_PATH")), "state"),
		LogFile:   strings.TrimSpace(os.Getenv("LOG_FILE")),
		DryRun:    envBool("DRY_RUN", false),

		Archive: loadArchiveConfig(),
	}
	return cfg
}

func loadArchiveConfig() ArchiveConfig {
	endpoint := strings.TrimSpace(os.Getenv("MEDIA_S3_ENDPOINT"))
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("MEDIA_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("MEDIA_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_BUCKET")), "pollstory-media"),
		UseSSL:    envBool("MEDIA_S3_USE_SSL", true),
	}
}

// Validate reports every missing required field at once.
func (c *Config) Validate() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.ChannelID == "" {
		missing = append(missing, "CHANNEL_ID")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.OpenAIModel == "" {
		missing = append(missing, "OPENAI_MODEL")
	}
	if c.InitialStoryIdea == "" {
		missing = append(missing, "INITIAL_STORY_IDEA")
	}
	if (c.GeminiImageModel != "" || c.GeminiTTSModel != "") && c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	if c.StoryMaxSentences <= 0 {
		return fmt.Errorf("config: STORY_MAX_SENTENCES must be positive")
	}
	return nil
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
