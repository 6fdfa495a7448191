package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const callbackBackup = "backup"

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	kind, arg, ok := strings.Cut(cb.Data, ":")
	if !ok || kind != callbackBackup {
		return
	}
	action, err := ParseBackupAction(arg)
	if err != nil {
		return
	}

	b.log.Info("callback",
		"action", arg,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	b.runBackupAction(ctx, chatID, userKey(cb.From.ID), action)
}

func backupKeyboard(enabled bool) tgbotapi.InlineKeyboardMarkup {
	toggle := tgbotapi.NewInlineKeyboardButtonData("Turn on", callbackBackup+":"+string(BackupOn))
	if enabled {
		toggle = tgbotapi.NewInlineKeyboardButtonData("Turn off", callbackBackup+":"+string(BackupOff))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			toggle,
			tgbotapi.NewInlineKeyboardButtonData("Backup now", callbackBackup+":"+string(BackupNow)),
		),
	)
}
