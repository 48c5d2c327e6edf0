package story

import (
	"context"
	"errors"
	"log"
	"math/rand"
)

// resolvePoll closes the outstanding poll and returns the winning option
// text. ok is false when there is no winner: no poll outstanding, the poll
// vanished, closing failed, or it had no options.
//
// A unique positive maximum wins outright. Ties at a positive maximum are
// broken uniformly at random among the tied options. When no votes were cast
// at all, the winner is drawn uniformly from every option; that is a distinct
// rule, not a degenerate tie-break.
func resolvePoll(ctx context.Context, m Messenger, rng *rand.Rand, pollID int) (string, bool) {
	if pollID == 0 {
		return "", false
	}

	results, err := m.StopPoll(ctx, pollID)
	if err != nil {
		if errors.Is(err, ErrPollGone) {
			log.Printf("poll %d: %v", pollID, err)
		} else {
			log.Printf("poll %d: stop failed: %v", pollID, err)
		}
		return "", false
	}
	if len(results) == 0 {
		log.Printf("poll %d: closed with no options", pollID)
		return "", false
	}

	maxVotes := 0
	var leaders []string
	for _, r := range results {
		switch {
		case r.Votes > maxVotes:
			maxVotes = r.Votes
			leaders = []string{r.Text}
		case r.Votes == maxVotes && maxVotes > 0:
			leaders = append(leaders, r.Text)
		}
	}

	if maxVotes == 0 {
		winner := results[rng.Intn(len(results))].Text
		log.Printf("poll %d: no votes cast, picked %q at random", pollID, winner)
		return winner, true
	}
	if len(leaders) == 1 {
		return leaders[0], true
	}
	winner := leaders[rng.Intn(len(leaders))]
	log.Printf("poll %d: %d-way tie at %d votes, picked %q at random", pollID, len(leaders), maxVotes, winner)
	return winner, true
}
