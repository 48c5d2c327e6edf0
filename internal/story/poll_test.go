package story

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestResolvePollNoPending(t *testing.T) {
	m := &fakeMessenger{}
	if _, ok := resolvePoll(context.Background(), m, rand.New(rand.NewSource(1)), 0); ok {
		t.Fatal("no pending poll must yield no winner")
	}
	if len(m.calls) != 0 {
		t.Fatalf("StopPoll called for poll ID 0: %v", m.calls)
	}
}

func TestResolvePollUniqueMaximum(t *testing.T) {
	m := &fakeMessenger{stopResults: []PollResult{
		{Text: "A", Votes: 2},
		{Text: "B", Votes: 7},
		{Text: "C", Votes: 6},
		{Text: "D", Votes: 0},
	}}
	winner, ok := resolvePoll(context.Background(), m, rand.New(rand.NewSource(1)), 42)
	if !ok || winner != "B" {
		t.Fatalf("winner = %q ok=%v, want B", winner, ok)
	}
}

func TestResolvePollPositiveTie(t *testing.T) {
	results := []PollResult{
		{Text: "A", Votes: 5},
		{Text: "B", Votes: 5},
		{Text: "C", Votes: 1},
	}
	rng := rand.New(rand.NewSource(7))
	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		m := &fakeMessenger{stopResults: results}
		winner, ok := resolvePoll(context.Background(), m, rng, 42)
		if !ok {
			t.Fatal("tied poll must still produce a winner")
		}
		if winner == "C" {
			t.Fatal("a non-leading option must never win a tie-break")
		}
		seen[winner]++
	}
	if seen["A"] == 0 || seen["B"] == 0 {
		t.Fatalf("tie-break never picked one of the leaders: %v", seen)
	}
	// uniform draw over two leaders: neither should dominate
	if seen["A"] < 50 || seen["B"] < 50 {
		t.Fatalf("tie-break looks biased: %v", seen)
	}
}

func TestResolvePollAllZeroDrawsFromEveryOption(t *testing.T) {
	results := []PollResult{
		{Text: "A", Votes: 0},
		{Text: "B", Votes: 0},
		{Text: "C", Votes: 0},
		{Text: "D", Votes: 0},
	}
	rng := rand.New(rand.NewSource(3))
	seen := map[string]int{}
	for i := 0; i < 400; i++ {
		m := &fakeMessenger{stopResults: results}
		winner, ok := resolvePoll(context.Background(), m, rng, 42)
		if !ok {
			t.Fatal("a voteless poll still picks a winner at random")
		}
		seen[winner]++
	}
	for _, opt := range []string{"A", "B", "C", "D"} {
		if seen[opt] == 0 {
			t.Fatalf("option %s never drawn from a voteless poll: %v", opt, seen)
		}
	}
}

func TestResolvePollGone(t *testing.T) {
	m := &fakeMessenger{stopErr: ErrPollGone}
	if _, ok := resolvePoll(context.Background(), m, rand.New(rand.NewSource(1)), 42); ok {
		t.Fatal("a vanished poll must yield no winner")
	}
}

func TestResolvePollTransportError(t *testing.T) {
	m := &fakeMessenger{stopErr: errors.New("connection reset")}
	if _, ok := resolvePoll(context.Background(), m, rand.New(rand.NewSource(1)), 42); ok {
		t.Fatal("a transport failure must yield no winner")
	}
}

func TestResolvePollEmptyOptions(t *testing.T) {
	m := &fakeMessenger{stopResults: []PollResult{}}
	if _, ok := resolvePoll(context.Background(), m, rand.New(rand.NewSource(1)), 42); ok {
		t.Fatal("a poll without options must yield no winner")
	}
}
