package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptovision/internal/advisor"
	"cryptovision/internal/domain/entity"
	"cryptovision/internal/exchange"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.handleStart(ctx, msg)
			return
		}
		b.reply(msg.Chat.ID, "Unknown command. Use the keyboard below.", mainKeyboard())
		return
	}

	// Dialogue buttons work from any state.
	switch text {
	case btnCancelAdd:
		b.drafts.Clear(userID)
		b.reply(msg.Chat.ID, "Cancelled.", mainKeyboard())
		return
	case btnBack:
		b.drafts.Clear(userID)
		b.reply(msg.Chat.ID, "Okay, nothing was deleted.", mainKeyboard())
		return
	}

	if draft := b.drafts.Get(userID); draft.State != StateIdle {
		b.continueDialogue(ctx, msg, draft)
		return
	}

	switch text {
	case btnBalance:
		b.handleBalance(ctx, msg)
	case btnProfile:
		b.handleProfile(ctx, msg)
	case btnAddEx:
		b.startAddFlow(msg.Chat.ID, userID)
	case btnAdvice:
		b.startAdviceFlow(msg.Chat.ID, userID)
	case btnResetAll:
		b.reply(msg.Chat.ID, "⚠️ Are you sure? This removes every linked exchange and your profile.", confirmResetKeyboard())
	case btnConfirm:
		b.handleResetAll(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "I did not understand that. Use the keyboard below.", mainKeyboard())
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.repo.EnsureUser(ctx, msg.From.ID, msg.From.UserName); err != nil {
		b.logger.Error("failed to ensure user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Something went wrong, please try again later.", nil)
		return
	}
	b.reply(msg.Chat.ID, "🛡 CryptoVision AI is up!\nI am ready to watch your assets.", mainKeyboard())
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	status := b.reply(msg.Chat.ID, "⏳ Collecting data from exchanges...", nil)

	portfolio, err := b.portfolio.Aggregate(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error("aggregation failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.edit(msg.Chat.ID, status, "❌ Could not read your accounts, please try again later.")
		return
	}

	if errText := RenderErrors(portfolio); errText != "" {
		b.reply(msg.Chat.ID, errText, nil)
	}
	b.edit(msg.Chat.ID, status, RenderReport(portfolio))
}

func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message) {
	accounts, err := b.repo.ListAccounts(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error("failed to list accounts", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Could not load your profile.", nil)
		return
	}
	if len(accounts) == 0 {
		b.reply(msg.Chat.ID, "🔌 No exchanges linked yet.", mainKeyboard())
		return
	}
	b.reply(msg.Chat.ID, RenderProfile(accounts), profileKeyboard(accounts))
}

func (b *Bot) handleResetAll(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.repo.DeleteAllUserData(ctx, msg.From.ID); err != nil {
		b.logger.Error("failed to delete user data", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Deletion failed, please try again.", mainKeyboard())
		return
	}
	b.drafts.Clear(msg.From.ID)
	b.reply(msg.Chat.ID, "💨 All data removed. Send /start to begin again.", tgbotapi.NewRemoveKeyboard(false))
}

func (b *Bot) startAddFlow(chatID, userID int64) {
	b.drafts.Put(userID, Draft{State: StateAwaitingExchange})
	b.reply(chatID, "Pick an exchange:", exchangeKeyboard())
}

func (b *Bot) startAdviceFlow(chatID, userID int64) {
	if b.advisor == nil {
		b.reply(chatID, "🤖 Advice is not configured on this installation.", mainKeyboard())
		return
	}
	b.drafts.Put(userID, Draft{State: StateAwaitingQuestion})
	b.reply(chatID, "🤖 Ask your question (for example, 'Should I buy BTC now?'):", cancelKeyboard())
}

// continueDialogue advances the FSM by one step from the user's reply.
func (b *Bot) continueDialogue(ctx context.Context, msg *tgbotapi.Message, draft Draft) {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	switch draft.State {
	case StateAwaitingExchange:
		name := strings.ToLower(text)
		if !exchange.IsSupported(name) {
			b.reply(msg.Chat.ID, "❌ Pick an exchange from the buttons below!", exchangeKeyboard())
			return
		}
		draft.Exchange = name
		draft.State = StateAwaitingMode
		b.drafts.Put(userID, draft)
		b.reply(msg.Chat.ID, "Pick the connection mode:", modeKeyboard())

	case StateAwaitingMode:
		draft.Demo = strings.Contains(text, "Demo")
		draft.State = StateAwaitingAPIKey
		b.drafts.Put(userID, draft)
		mode := "REAL TRADING"
		if draft.Demo {
			mode = "Sandbox/Demo"
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Mode: %s\n\nEnter your API Key:", mode), cancelKeyboard())

	case StateAwaitingAPIKey:
		draft.APIKey = text
		draft.State = StateAwaitingAPISecret
		b.drafts.Put(userID, draft)
		b.deleteMessage(msg.Chat.ID, msg.MessageID)
		b.reply(msg.Chat.ID, "Enter your API Secret:", cancelKeyboard())

	case StateAwaitingAPISecret:
		draft.APISecret = text
		draft.State = StateAwaitingPassphrase
		b.drafts.Put(userID, draft)
		b.deleteMessage(msg.Chat.ID, msg.MessageID)
		b.reply(msg.Chat.ID, "Enter the passphrase (if any, or press 'Skip'):", skipKeyboard())

	case StateAwaitingPassphrase:
		if !isSkip(text) {
			draft.Passphrase = text
			b.deleteMessage(msg.Chat.ID, msg.MessageID)
		}
		b.commitDraft(ctx, msg.Chat.ID, userID, draft)

	case StateAwaitingQuestion:
		b.drafts.Clear(userID)
		b.handleQuestion(ctx, msg, text)
	}
}

func (b *Bot) commitDraft(ctx context.Context, chatID, userID int64, draft Draft) {
	b.drafts.Clear(userID)

	err := b.repo.AddAccount(ctx, entity.Account{
		OwnerID:    userID,
		Exchange:   draft.Exchange,
		APIKey:     draft.APIKey,
		APISecret:  draft.APISecret,
		Passphrase: draft.Passphrase,
		Demo:       draft.Demo,
	})
	if err != nil {
		b.logger.Error("failed to add account",
			zap.Int64("user_id", userID), zap.String("exchange", draft.Exchange), zap.Error(err))
		b.reply(chatID, "❌ Could not save the exchange, please try again.", mainKeyboard())
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ Exchange %s linked!", strings.ToUpper(draft.Exchange)), mainKeyboard())
}

func (b *Bot) handleQuestion(ctx context.Context, msg *tgbotapi.Message, question string) {
	status := b.reply(msg.Chat.ID, "🧠 Analyzing your portfolio...", nil)

	portfolio, err := b.portfolio.Aggregate(ctx, msg.From.ID)
	if err != nil {
		// Advice still works on an empty snapshot when the store is down.
		b.logger.Warn("aggregation for advice failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		portfolio = entity.NewPortfolio()
	}

	answer, err := b.advisor.Advise(ctx, question, advisor.Summarize(portfolio))
	if err != nil {
		b.logger.Error("advisor call failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.edit(msg.Chat.ID, status, "❌ Could not reach the AI, please try again later.")
		return
	}
	b.edit(msg.Chat.ID, status, "📜 Analysis:\n\n"+answer)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		b.answerCallback(cb.ID, "")
		return
	}
	data := cb.Data

	switch {
	case data == "add_new":
		b.answerCallback(cb.ID, "")
		b.startAddFlow(cb.Message.Chat.ID, cb.From.ID)

	case strings.HasPrefix(data, "del_ex_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "del_ex_"), 10, 64)
		if err != nil {
			b.answerCallback(cb.ID, "Malformed request")
			return
		}
		if err := b.repo.DeleteAccount(ctx, id, cb.From.ID); err != nil {
			b.logger.Warn("account deletion failed",
				zap.Int64("user_id", cb.From.ID), zap.Int64("account_id", id), zap.Error(err))
			b.answerCallback(cb.ID, "Deletion failed")
			return
		}
		b.answerCallback(cb.ID, "Deleted!")
		b.edit(cb.Message.Chat.ID, cb.Message.MessageID, "✅ Exchange removed.")

	default:
		b.answerCallback(cb.ID, "")
	}
}

func isSkip(text string) bool {
	switch strings.ToLower(text) {
	case strings.ToLower(btnSkip), "skip", "no", "none":
		return true
	}
	return false
}
