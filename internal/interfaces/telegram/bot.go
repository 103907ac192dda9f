// Package telegram is the chat front-end: every text message is recorded as a
// quick expense through the same entry engine the web form uses.
package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
}

type Bot struct {
	api     API
	replier *Replier
	cfg     Config
}

// Connect authenticates token against the Telegram API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	log.Printf("Authorized on telegram as @%s", api.Self.UserName)
	return api, nil
}

func NewBot(api API, replier *Replier, cfg Config) *Bot {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60
	}
	return &Bot{api: api, replier: replier, cfg: cfg}
}

// Run polls for updates until ctx is cancelled, then drains queued replies.
func (b *Bot) Run(ctx context.Context) error {
	pool := newWorkerPool(b.cfg.Workers, b.cfg.QueueSize, b.cfg.JobTimeout)
	pool.Start()
	defer pool.ShutdownWithTimeout(b.cfg.JobTimeout)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	log.Println("Bot is running")
	for {
		select {
		case <-ctx.Done():
			log.Println("Bot shutting down...")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			if err := pool.Submit(&replyJob{bot: b, msg: msg}); err != nil {
				log.Printf("Error queueing message %d: %v", msg.MessageID, err)
			}
		}
	}
}

// replyJob answers one incoming message.
type replyJob struct {
	bot *Bot
	msg *tgbotapi.Message
}

func (j *replyJob) Execute(ctx context.Context) error {
	text := j.bot.replier.respond(ctx, j.msg.Text, j.msg.IsCommand())

	reply := tgbotapi.NewMessage(j.msg.Chat.ID, text)
	reply.ReplyToMessageID = j.msg.MessageID
	if _, err := j.bot.api.Send(reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (j *replyJob) Description() string {
	return fmt.Sprintf("message %d in chat %d", j.msg.MessageID, j.msg.Chat.ID)
}
