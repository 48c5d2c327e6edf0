// Package telegram adapts the Bot API to the story.Messenger contract.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pollstory/internal/story"
)

// Client posts story content to a single channel, addressed either by a
// numeric chat ID or an @username.
type Client struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	channel string
}

func New(token, channel string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	c := &Client{bot: bot}
	c.chatID, c.channel = parseChannel(channel)
	return c, nil
}

func parseChannel(channel string) (int64, string) {
	channel = strings.TrimSpace(channel)
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return id, ""
	}
	return 0, channel
}

func (c *Client) baseChat(replyTo int) tgbotapi.BaseChat {
	return tgbotapi.BaseChat{
		ChatID:           c.chatID,
		ChannelUsername:  c.channel,
		ReplyToMessageID: replyTo,
	}
}

// PostText implements story.Messenger.
func (c *Client) PostText(_ context.Context, text string, replyTo int) (int, error) {
	sent, err := c.bot.Send(tgbotapi.MessageConfig{
		BaseChat: c.baseChat(replyTo),
		Text:     text,
	})
	if err != nil {
		return 0, fmt.Errorf("telegram: send message: %w", err)
	}
	return sent.MessageID, nil
}

// PostPhoto implements story.Messenger.
func (c *Client) PostPhoto(_ context.Context, photo []byte, replyTo int) (int, error) {
	sent, err := c.bot.Send(tgbotapi.PhotoConfig{
		BaseFile: tgbotapi.BaseFile{
			BaseChat: c.baseChat(replyTo),
			File:     tgbotapi.FileBytes{Name: "illustration.png", Bytes: photo},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("telegram: send photo: %w", err)
	}
	return sent.MessageID, nil
}

// PostAudio implements story.Messenger.
func (c *Client) PostAudio(_ context.Context, audio []byte, replyTo int) (int, error) {
	sent, err := c.bot.Send(tgbotapi.AudioConfig{
		BaseFile: tgbotapi.BaseFile{
			BaseChat: c.baseChat(replyTo),
			File:     tgbotapi.FileBytes{Name: "narration.wav", Bytes: audio},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("telegram: send audio: %w", err)
	}
	return sent.MessageID, nil
}

// PostPoll implements story.Messenger. Polls are anonymous, single-choice.
func (c *Client) PostPoll(_ context.Context, question string, options []string, replyTo int) (int, error) {
	sent, err := c.bot.Send(tgbotapi.SendPollConfig{
		BaseChat:    c.baseChat(replyTo),
		Question:    question,
		Options:     options,
		IsAnonymous: true,
	})
	if err != nil {
		return 0, fmt.Errorf("telegram: send poll: %w", err)
	}
	return sent.MessageID, nil
}

// StopPoll implements story.Messenger. An already-closed or deleted poll is
// reported as story.ErrPollGone so the resolver can treat it as "no winner".
func (c *Client) StopPoll(_ context.Context, messageID int) ([]story.PollResult, error) {
	poll, err := c.bot.StopPoll(tgbotapi.StopPollConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:          c.chatID,
			ChannelUsername: c.channel,
			MessageID:       messageID,
		},
	})
	if err != nil {
		return nil, classifyStopPollError(err)
	}

	results := make([]story.PollResult, 0, len(poll.Options))
	for _, opt := range poll.Options {
		results = append(results, story.PollResult{Text: opt.Text, Votes: opt.VoterCount})
	}
	return results, nil
}

func classifyStopPollError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "poll has already been closed") ||
		strings.Contains(msg, "message to stop poll not found") ||
		strings.Contains(msg, "message not found") {
		return fmt.Errorf("%w: %v", story.ErrPollGone, err)
	}
	return fmt.Errorf("telegram: stop poll: %w", err)
}
