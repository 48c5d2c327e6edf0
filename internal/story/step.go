package story

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pollstory/internal/config"
	"pollstory/internal/state"
	"pollstory/internal/telemetry"
)

// maxMessageLen is the messaging platform's single-message bound; longer
// fragments are posted as ordered chunks.
const maxMessageLen = 4096

// Orchestrator drives one story step per Run call.
type Orchestrator struct {
	cfg   *config.Config
	store *state.Store
	gen   Generator
	img   ImageRenderer
	voice Narrator
	msgr  Messenger
	arch  Archiver
	rng   *rand.Rand
	clock func() time.Time
}

// StepResult reports what one invocation did.
type StepResult struct {
	Phase    Phase
	Winner   string
	Finished bool
	PollID   int
	Saved    bool
}

// New assembles an orchestrator. img, voice and arch may be nil, disabling
// illustrations, narration and media archiving respectively. rng may be nil
// for time-seeded randomness; tests inject a seeded source.
func New(cfg *config.Config, store *state.Store, gen Generator, img ImageRenderer, voice Narrator, msgr Messenger, arch Archiver, rng *rand.Rand) *Orchestrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		cfg:   cfg,
		store: store,
		gen:   gen,
		img:   img,
		voice: voice,
		msgr:  msgr,
		arch:  arch,
		rng:   rng,
		clock: time.Now,
	}
}

// Run advances the story by one step. On error no state was persisted; the
// previously saved state is untouched and the next scheduled run retries
// from it.
func (o *Orchestrator) Run(ctx context.Context) (*StepResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "story.step")
	defer span.End()

	st := o.store.Load(o.cfg.StoryID)
	phase := phaseOf(st)
	span.SetAttributes(
		attribute.String("story.id", o.cfg.StoryID),
		attribute.String("story.phase", phase.String()),
		attribute.Bool("story.dry_run", o.cfg.DryRun),
	)

	var (
		res *StepResult
		err error
	)
	switch phase {
	case PhaseFinished:
		span.AddEvent("story already finished, nothing to do")
		res = &StepResult{Phase: PhaseFinished, Finished: true}
	case PhaseBootstrap:
		res, err = o.bootstrap(ctx, span)
	default:
		res, err = o.advance(ctx, span, st)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step aborted, state not persisted")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// bootstrap posts the configured introduction verbatim as the narrative's
// opening and seeds the premise. The generator's story text is discarded in
// this branch; only the revised premise is kept.
func (o *Orchestrator) bootstrap(ctx context.Context, span trace.Span) (*StepResult, error) {
	intro := o.cfg.InitialStoryIdea

	_, premise, err := o.gen.ContinueStory(ctx, "", intro, "", 0, false)
	if err != nil {
		return nil, fmt.Errorf("seed premise: %w", err)
	}
	span.AddEvent("premise seeded")

	msgID, err := o.msgr.PostText(ctx, intro, 0)
	if err != nil {
		return nil, fmt.Errorf("post introduction: %w", err)
	}

	stepID := o.stepID()
	o.postNarration(ctx, span, stepID, intro, msgID)

	pollID := o.schedulePoll(ctx, intro, 0, false, msgID)

	next := state.StoryState{
		Narrative:     intro,
		Premise:       premise,
		PendingPollID: pollID,
	}
	saved := o.persist(span, next)
	return &StepResult{Phase: PhaseBootstrap, PollID: pollID, Saved: saved}, nil
}

// advance resolves the outstanding poll, generates and posts the next
// fragment, and decides whether the story concludes.
func (o *Orchestrator) advance(ctx context.Context, span trace.Span, st state.StoryState) (*StepResult, error) {
	winner, hasWinner := resolvePoll(ctx, o.msgr, o.rng, st.PendingPollID)
	choice := o.cfg.FallbackChoice
	if hasWinner {
		choice = winner
		span.SetAttributes(attribute.String("story.poll_winner", winner))
	}

	sentences := sentenceCount(st.Narrative)
	completion := float64(sentences) / float64(o.cfg.StoryMaxSentences)
	forceFinish := sentences > o.cfg.StoryMaxSentences
	if forceFinish {
		span.AddEvent("sentence ceiling exceeded, concluding the story",
			trace.WithAttributes(attribute.Int("story.sentences", sentences)))
	}
	if hasWinner && winner == o.cfg.EndStoryOption {
		forceFinish = true
		span.AddEvent("readers voted to end the story")
	}

	text, premise, err := o.gen.ContinueStory(ctx, st.Premise, st.Narrative, choice, completion, forceFinish)
	if err != nil {
		return nil, fmt.Errorf("story continuation: %w", err)
	}
	if text == "" {
		return nil, ErrEmptyContinuation
	}
	span.AddEvent("continuation generated", trace.WithAttributes(attribute.Int("story.fragment_chars", len(text))))

	stepID := o.stepID()
	image := o.renderIllustration(ctx, span, stepID, text, premise)

	replyTo := 0
	if image != nil {
		photoID, err := o.msgr.PostPhoto(ctx, image, 0)
		if err != nil {
			log.Printf("post photo: %v (posting text without an illustration)", err)
		} else {
			replyTo = photoID
		}
	}

	lastTextID := 0
	for _, chunk := range splitText(text, maxMessageLen) {
		msgID, err := o.msgr.PostText(ctx, chunk, replyTo)
		if err != nil {
			return nil, fmt.Errorf("post story fragment: %w", err)
		}
		lastTextID = msgID
		replyTo = msgID
	}

	o.postNarration(ctx, span, stepID, text, lastTextID)

	narrative := st.Narrative + "\n\n" + text
	pollID := o.schedulePoll(ctx, narrative, sentences, forceFinish, lastTextID)

	next := state.StoryState{
		Narrative:     narrative,
		Premise:       premise,
		PendingPollID: pollID,
		Finished:      forceFinish,
	}
	saved := o.persist(span, next)
	return &StepResult{
		Phase:    PhaseAdvancing,
		Winner:   winner,
		Finished: forceFinish,
		PollID:   pollID,
		Saved:    saved,
	}, nil
}

// renderIllustration is best-effort: any failure degrades to a text-only post.
func (o *Orchestrator) renderIllustration(ctx context.Context, span trace.Span, stepID, text, premise string) []byte {
	if o.img == nil {
		return nil
	}
	prompt, err := o.gen.ComposeImagePrompt(ctx, text, premise)
	if err != nil || prompt == "" {
		log.Printf("image prompt: %v (falling back to the raw fragment)", err)
		prompt = text
	}
	image, err := o.img.Render(ctx, prompt)
	if err != nil {
		log.Printf("render image: %v (continuing without an illustration)", err)
		return nil
	}
	span.AddEvent("illustration rendered", trace.WithAttributes(attribute.Int("story.image_bytes", len(image))))
	o.archive(ctx, stepID, "illustration.png", image)
	return image
}

// postNarration synthesizes and posts audio for text, reply-chained to
// replyTo. Best-effort: failures never abort the step.
func (o *Orchestrator) postNarration(ctx context.Context, span trace.Span, stepID, text string, replyTo int) {
	if o.voice == nil {
		return
	}
	audio, err := o.voice.Narrate(ctx, text)
	if err != nil {
		log.Printf("narrate: %v (continuing without audio)", err)
		return
	}
	o.archive(ctx, stepID, "narration.wav", audio)
	if _, err := o.msgr.PostAudio(ctx, audio, replyTo); err != nil {
		log.Printf("post audio: %v (continuing without audio)", err)
		return
	}
	span.AddEvent("narration posted", trace.WithAttributes(attribute.Int("story.audio_bytes", len(audio))))
}

func (o *Orchestrator) archive(ctx context.Context, stepID, name string, data []byte) {
	if o.arch == nil || len(data) == 0 {
		return
	}
	if err := o.arch.Put(ctx, stepID, name, data); err != nil {
		log.Printf("archive %s/%s: %v", stepID, name, err)
	}
}

// persist saves the next state. A save failure is degraded, not fatal: the
// external posts already happened, so the step is best-effort complete.
func (o *Orchestrator) persist(span trace.Span, next state.StoryState) bool {
	if o.cfg.DryRun {
		span.AddEvent("dry run, state not saved")
		return false
	}
	if err := o.store.Save(o.cfg.StoryID, next, false); err != nil {
		log.Printf("save state: %v (next run re-derives from the last saved state)", err)
		span.RecordError(err)
		return false
	}
	return true
}

func (o *Orchestrator) stepID() string {
	return o.cfg.StoryID + "/" + o.clock().UTC().Format("20060102T150405Z")
}

// splitText breaks s into rune-safe chunks of at most limit runes, in order.
func splitText(s string, limit int) []string {
	r := []rune(s)
	if len(r) <= limit {
		return []string{s}
	}
	var chunks []string
	for start := 0; start < len(r); start += limit {
		end := start + limit
		if end > len(r) {
			end = len(r)
		}
		chunks = append(chunks, string(r[start:end]))
	}
	return chunks
}
