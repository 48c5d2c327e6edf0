// Package state persists the story progression record.
//
// One StoryState row/file exists per story ID. The backing store is a YAML
// file by default; setting STORY_STORE_PG_DSN switches to Postgres.
package state

import "strings"

// StoryState is the sole persisted entity.
//
// Narrative is append-only while Finished is false. PendingPollID is the
// Telegram message ID of the outstanding poll, 0 when none is outstanding.
type StoryState struct {
	Narrative     string `yaml:"narrative"`
	Premise       string `yaml:"premise"`
	PendingPollID int    `yaml:"pending_poll_id,omitempty"`
	Finished      bool   `yaml:"finished"`
}

// HasPendingPoll reports whether a poll from the previous step is outstanding.
func (s StoryState) HasPendingPoll() bool { return s.PendingPollID != 0 }

func normalizeState(s StoryState) StoryState {
	s.Narrative = strings.TrimRight(s.Narrative, " \t")
	if s.Finished {
		// invariant: a finished story has no outstanding poll
		s.PendingPollID = 0
	}
	if s.PendingPollID < 0 {
		s.PendingPollID = 0
	}
	return s
}
