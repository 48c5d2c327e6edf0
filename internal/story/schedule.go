package story

import (
	"context"
	"log"
	"strings"
)

const (
	pollOptionCount  = 4
	maxPollOptionLen = 90
)

// buildPollOptions asks the generator for the next reader choices and
// validates them. A failed or malformed proposal means the story simply has
// no poll this round; it is never fatal.
func (o *Orchestrator) buildPollOptions(ctx context.Context, narrative string, includeEnd bool) ([]string, bool) {
	raw, err := o.gen.ProposePollOptions(ctx, narrative, includeEnd)
	if err != nil {
		log.Printf("poll options: %v (skipping poll this round)", err)
		return nil, false
	}
	if len(raw) != pollOptionCount {
		log.Printf("poll options: got %d options, want %d (skipping poll this round)", len(raw), pollOptionCount)
		return nil, false
	}

	options := make([]string, 0, pollOptionCount)
	for _, opt := range raw {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			log.Printf("poll options: empty option (skipping poll this round)")
			return nil, false
		}
		options = append(options, truncateRunes(opt, maxPollOptionLen))
	}
	if includeEnd {
		// the reserved sentinel always takes the last slot, whatever the
		// backend proposed there
		options[pollOptionCount-1] = truncateRunes(o.cfg.EndStoryOption, maxPollOptionLen)
	}
	return options, true
}

// schedulePoll decides on and posts the next poll, returning the new poll
// message ID (0 when none was posted).
func (o *Orchestrator) schedulePoll(ctx context.Context, narrative string, sentences int, finished bool, replyTo int) int {
	if finished {
		return 0
	}
	includeEnd := pastSoftThreshold(sentences, o.cfg.StoryMaxSentences)
	options, ok := o.buildPollOptions(ctx, narrative, includeEnd)
	if !ok {
		return 0
	}
	pollID, err := o.msgr.PostPoll(ctx, o.cfg.PollQuestion, options, replyTo)
	if err != nil {
		log.Printf("post poll: %v (story continues without a vote)", err)
		return 0
	}
	return pollID
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
