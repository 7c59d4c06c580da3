// Package bot is the Telegram surface: a long-polling update loop, a small
// per-user dialogue machine for credential entry, and the report rendering.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptovision/internal/app/port"
	"cryptovision/internal/config"
	"cryptovision/pkg/metrics"
)

// Bot wires the Telegram API to the application services.
type Bot struct {
	api       *tgbotapi.BotAPI
	repo      port.AccountRepository
	portfolio port.PortfolioService
	advisor   port.Advisor
	drafts    *DraftStore
	logger    *zap.Logger

	pollTimeout int
}

// New authenticates against the Telegram API and builds the bot. advisor may
// be nil, in which case the advice flow reports itself as unconfigured.
func New(
	cfg config.TelegramConfig,
	repo port.AccountRepository,
	portfolio port.PortfolioService,
	adv port.Advisor,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:         api,
		repo:        repo,
		portfolio:   portfolio,
		advisor:     adv,
		drafts:      NewDraftStore(time.Duration(cfg.DraftTTLMinutes) * time.Minute),
		logger:      logger.Named("Bot"),
		pollTimeout: cfg.PollTimeoutSeconds,
	}, nil
}

// Run polls for updates until ctx is cancelled. Each update is handled on its
// own goroutine so one slow aggregation does not stall the queue.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			metrics.BotUpdates.Inc()
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// reply sends a Markdown message and returns its id for later edits. markup
// may be nil. Send failures are logged, not surfaced; there is nobody to
// surface them to.
func (b *Bot) reply(chatID int64, text string, markup interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text, nil)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// deleteMessage removes a user message carrying a secret from the chat
// history. Best effort, the bot may lack delete rights in some chats.
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("failed to delete message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Debug("failed to answer callback", zap.Error(err))
	}
}
