// Package story owns the progression state machine: one invocation resolves
// the previous reader poll, advances (or concludes) the narrative, posts the
// new content, and schedules the next poll.
package story

import (
	"context"
	"errors"
)

// ErrPollGone marks poll closure failures where the poll was already closed
// or its message no longer exists. The resolver treats it as "no winner"
// rather than a transport problem.
var ErrPollGone = errors.New("poll already closed or missing")

// ErrEmptyContinuation is returned when the generation backend produced no
// story text. The step aborts without persisting so the next run retries.
var ErrEmptyContinuation = errors.New("generation backend returned an empty continuation")

// PollResult is one option of a closed poll with its final tally.
type PollResult struct {
	Text  string
	Votes int
}

// Generator produces narrative content, poll options and image prompts.
type Generator interface {
	// ContinueStory returns the next story fragment and the revised premise.
	// completion is the fraction of the sentence ceiling already used. When
	// endStory is true the fragment must conclude the narrative.
	ContinueStory(ctx context.Context, premise, narrative, choice string, completion float64, endStory bool) (text, revisedPremise string, err error)

	// ProposePollOptions returns exactly four short continuation choices.
	ProposePollOptions(ctx context.Context, narrative string, includeEndOption bool) ([]string, error)

	// ComposeImagePrompt turns a story fragment into an image generation prompt.
	ComposeImagePrompt(ctx context.Context, text, premise string) (string, error)
}

// ImageRenderer renders an illustration for a story fragment.
type ImageRenderer interface {
	Render(ctx context.Context, prompt string) ([]byte, error)
}

// Narrator synthesizes narrated audio for a story fragment.
type Narrator interface {
	Narrate(ctx context.Context, text string) ([]byte, error)
}

// Messenger is the messaging platform the story is published to. Post
// methods return the platform message ID; replyTo chains a message to an
// earlier one and is ignored when 0.
type Messenger interface {
	PostText(ctx context.Context, text string, replyTo int) (int, error)
	PostPhoto(ctx context.Context, photo []byte, replyTo int) (int, error)
	PostAudio(ctx context.Context, audio []byte, replyTo int) (int, error)
	PostPoll(ctx context.Context, question string, options []string, replyTo int) (int, error)

	// StopPoll closes the poll behind messageID and returns the final tallies.
	// Returns ErrPollGone (possibly wrapped) when the poll cannot be stopped
	// because it is already closed or its message is gone.
	StopPoll(ctx context.Context, messageID int) ([]PollResult, error)
}

// Archiver keeps generated media for a step. Implementations are optional
// and always best-effort.
type Archiver interface {
	Put(ctx context.Context, stepID, name string, data []byte) error
}
