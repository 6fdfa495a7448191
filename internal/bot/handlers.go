package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mindvault/internal/archive"
	"mindvault/internal/intake"
)

const (
	replySaveFailed   = "❌ Error saving. Please try again."
	replyNothingSaved = "Send me a link or some text to save. Media without a caption is not stored."
	exportCaption     = "📦 Your MindVault export"
	backupCaption     = "💾 Your MindVault backup"
)

func (b *Bot) handleStart(chatID int64, firstName string) {
	b.reply(chatID, fmt.Sprintf(`🧠 Welcome to MindVault, %s!

I help you save and organize:
• URLs (articles, videos, blogs)
• Text notes
• Forwarded messages

Just send me any content and I'll extract metadata, pick a filename, tag it and keep it for export.

Use /help to see all commands.`, firstName))
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/start — start the bot
/help — show this help
/save <content> — save a URL or text
/export — export everything as a Markdown ZIP
/backup now — create a backup right away
/backup on — enable daily backups
/backup off — disable daily backups
/backup status — check backup status

Usage:
• Send any URL to save it
• Send text notes directly
• Forward messages to save them`)
}

func (b *Bot) handleSave(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	if args == "" {
		b.reply(chatID, "Usage: /save <URL or text>")
		return
	}

	b.chatAction(chatID, tgbotapi.ChatTyping)
	sum, err := b.svc.Save(ctx, originOf(msg), args)
	b.replySaved(chatID, sum, err)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	in := intake.Message{
		Origin:        originOf(msg),
		Text:          msg.Text,
		Caption:       msg.Caption,
		MediaType:     MediaType(msg),
		ForwardedFrom: ForwardedFrom(msg),
	}

	b.chatAction(msg.Chat.ID, tgbotapi.ChatTyping)
	sum, err := b.svc.SaveMessage(ctx, in)
	b.replySaved(msg.Chat.ID, sum, err)
}

func (b *Bot) replySaved(chatID int64, sum *intake.Summary, err error) {
	switch {
	case errors.Is(err, intake.ErrNothingToSave):
		b.reply(chatID, replyNothingSaved)
	case err != nil:
		b.log.Error("save", "chat_id", chatID, "error", err)
		b.reply(chatID, replySaveFailed)
	default:
		b.reply(chatID, FormatSaved(sum))
	}
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, userID string) {
	b.chatAction(chatID, tgbotapi.ChatUploadDocument)
	a, err := b.svc.Export(ctx, userID)
	if errors.Is(err, archive.ErrNoItems) {
		b.reply(chatID, "📭 No items to export")
		return
	}
	if err != nil {
		b.reply(chatID, "❌ Export failed. Please try again.")
		return
	}
	b.sendArchive(chatID, a, archive.LabelExport, exportCaption)
}

func (b *Bot) handleBackup(ctx context.Context, chatID int64, userID, args string) {
	action, err := ParseBackupAction(args)
	if err != nil {
		b.reply(chatID, `Backup commands:
/backup now — create a backup now
/backup on — enable daily backups
/backup off — disable daily backups
/backup status — check status`)
		return
	}
	b.runBackupAction(ctx, chatID, userID, action)
}

func (b *Bot) runBackupAction(ctx context.Context, chatID int64, userID string, action BackupAction) {
	switch action {
	case BackupNow:
		b.chatAction(chatID, tgbotapi.ChatUploadDocument)
		a, err := b.svc.Backup(ctx, userID)
		if errors.Is(err, archive.ErrNoItems) {
			b.reply(chatID, "📭 No items to backup")
			return
		}
		if err != nil {
			b.reply(chatID, "❌ Backup failed. Please try again.")
			return
		}
		b.sendArchive(chatID, a, archive.LabelBackup, backupCaption)

	case BackupOn, BackupOff:
		enabled := action == BackupOn
		if err := b.svc.SetBackupEnabled(ctx, userID, enabled); err != nil {
			b.log.Error("set backup enabled", "user_id", userID, "error", err)
			b.reply(chatID, "❌ Could not update settings. Please try again.")
			return
		}
		if enabled {
			b.reply(chatID, "✅ Daily backups enabled!")
		} else {
			b.reply(chatID, "❌ Daily backups disabled")
		}

	case BackupStatus:
		st, err := b.svc.BackupStatus(ctx, userID)
		if err != nil {
			b.log.Error("backup status", "user_id", userID, "error", err)
			b.reply(chatID, "❌ Could not read settings. Please try again.")
			return
		}
		msg := tgbotapi.NewMessage(chatID, FormatBackupStatus(st))
		msg.ReplyMarkup = backupKeyboard(st.Enabled)
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("send backup status", "chat_id", chatID, "error", err)
		}
	}
}

func (b *Bot) sendArchive(chatID int64, a *archive.Archive, label, caption string) {
	data, err := a.Zip()
	if err != nil {
		b.log.Error("zip archive", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Could not build the archive. Please try again.")
		return
	}
	if err := b.SendDocument(chatID, a.Name(label), data, caption); err != nil {
		b.log.Error("send archive", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Could not send the archive. Please try again.")
	}
}
