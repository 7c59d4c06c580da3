package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cryptovision/internal/domain/entity"
)

// Reply-keyboard button texts. Handlers match on these verbatim.
const (
	btnBalance   = "📊 My Balance"
	btnAddEx     = "🔌 Add Exchange"
	btnAdvice    = "🤖 AI Advice"
	btnProfile   = "👤 Profile"
	btnResetAll  = "🗑 Reset All Data"
	btnCancelAdd = "❌ Cancel"
	btnSkip      = "➡️ Skip (if not needed)"
	btnRealMode  = "✅ Real Trading"
	btnDemoMode  = "🧪 Demo / Sandbox"
	btnConfirm   = "❌ Yes, delete everything"
	btnBack      = "🔙 Back"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBalance)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAddEx)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAdvice)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnProfile)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnResetAll)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func exchangeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Binance"),
			tgbotapi.NewKeyboardButton("Bybit"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("OKX"),
			tgbotapi.NewKeyboardButton("KuCoin"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Bitget"),
			tgbotapi.NewKeyboardButton(btnCancelAdd),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func modeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRealMode),
			tgbotapi.NewKeyboardButton(btnDemoMode),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelAdd)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelAdd)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func confirmResetKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// profileKeyboard builds one delete button per linked account plus an add
// button. Callback data carries the account id, ownership is re-checked on
// the delete itself.
func profileKeyboard(accounts []entity.Account) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(accounts)+1)
	for _, acc := range accounts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 Delete %s (%s)", strings.ToUpper(acc.Exchange), MaskKey(acc.APIKey)),
				fmt.Sprintf("del_ex_%d", acc.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Add another", "add_new"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
