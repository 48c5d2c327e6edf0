package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CHANNEL_ID", "@mychannel")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("INITIAL_STORY_IDEA", "Once upon a time.")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_CONTEXT_CHARS", "")
	t.Setenv("STORY_MAX_SENTENCES", "")
	t.Setenv("DRY_RUN", "")
	t.Setenv("STORY_ID", "")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.MaxContextChars != 15000 {
		t.Fatalf("MaxContextChars = %d, want 15000", cfg.MaxContextChars)
	}
	if cfg.StoryMaxSentences != 500 {
		t.Fatalf("StoryMaxSentences = %d, want 500", cfg.StoryMaxSentences)
	}
	if cfg.DryRun {
		t.Fatal("DryRun should default to false")
	}
	if cfg.StoryID != "default" {
		t.Fatalf("StoryID = %q, want default", cfg.StoryID)
	}
	if cfg.EndStoryOption != DefaultEndStoryOption {
		t.Fatalf("EndStoryOption = %q", cfg.EndStoryOption)
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("CHANNEL_ID", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "m")
	t.Setenv("INITIAL_STORY_IDEA", "")

	cfg := Load()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{"BOT_TOKEN", "CHANNEL_ID", "OPENAI_API_KEY", "INITIAL_STORY_IDEA"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q should mention %s", err, key)
		}
	}
}

func TestValidateGeminiKeyRequiredWithImageModel(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_IMAGE_MODEL", "imagen-test")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected GEMINI_API_KEY error, got %v", err)
	}
}

func TestArchiveEnabledByEndpoint(t *testing.T) {
	setRequired(t)
	t.Setenv("MEDIA_S3_ENDPOINT", "minio:9000")
	t.Setenv("MEDIA_S3_USE_SSL", "false")

	cfg := Load()
	if !cfg.Archive.Enabled {
		t.Fatal("archive should be enabled when an endpoint is set")
	}
	if cfg.Archive.UseSSL {
		t.Fatal("UseSSL should honor MEDIA_S3_USE_SSL=false")
	}
	if cfg.Archive.Bucket != "pollstory-media" {
		t.Fatalf("Bucket = %q", cfg.Archive.Bucket)
	}
}
