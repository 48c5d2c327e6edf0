package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"pollstory/internal/archive"
	"pollstory/internal/config"
	"pollstory/internal/gen"
	"pollstory/internal/state"
	"pollstory/internal/story"
	"pollstory/internal/telegram"
	"pollstory/internal/telemetry"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "run the step without persisting state")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall step deadline")
	flag.Parse()

	cfg := config.Load()
	if *dryRun {
		cfg.DryRun = true
	}
	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
		}))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration invalid: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "pollstory")
	if err != nil {
		log.Printf("telemetry setup: %v (continuing without tracing)", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer flushCancel()
		_ = shutdown(flushCtx)
	}()

	msgr, err := telegram.New(cfg.BotToken, cfg.ChannelID)
	if err != nil {
		log.Fatalf("telegram client: %v", err)
	}

	generator := gen.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.MaxContextChars, cfg.ImagePromptStyle)

	var img story.ImageRenderer
	if cfg.GeminiImageModel != "" {
		r, err := gen.NewGeminiImage(ctx, cfg.GeminiAPIKey, cfg.GeminiImageModel)
		if err != nil {
			log.Printf("image backend: %v (continuing without illustrations)", err)
		} else {
			img = r
		}
	}

	var voice story.Narrator
	if cfg.GeminiTTSModel != "" {
		n, err := gen.NewGeminiSpeech(ctx, cfg.GeminiAPIKey, cfg.GeminiTTSModel, cfg.SpeechLanguage)
		if err != nil {
			log.Printf("speech backend: %v (continuing without narration)", err)
		} else {
			voice = n
		}
	}

	var arch story.Archiver
	if cfg.Archive.Enabled {
		s, err := archive.NewS3Store(cfg.Archive)
		if err != nil {
			log.Printf("media archive: %v (continuing without archiving)", err)
		} else {
			arch = s
		}
	}

	store := state.NewFromEnv(cfg.StatePath)
	defer func() { _ = store.Close() }()

	orch := story.New(cfg, store, generator, img, voice, msgr, arch, rand.New(rand.NewSource(time.Now().UnixNano())))
	res, err := orch.Run(ctx)
	if err != nil {
		log.Fatalf("story step failed: %v", err)
	}
	log.Printf("story step complete: phase=%s finished=%v poll_id=%d saved=%v",
		res.Phase, res.Finished, res.PollID, res.Saved)
}
