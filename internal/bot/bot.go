// Package bot is the Telegram transport and command dispatcher.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mindvault/internal/archive"
	"mindvault/internal/config"
	"mindvault/internal/intake"
	"mindvault/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Intake is the part of the intake service the bot dispatches to.
type Intake interface {
	Save(ctx context.Context, origin model.Origin, content string) (*intake.Summary, error)
	SaveMessage(ctx context.Context, msg intake.Message) (*intake.Summary, error)
	Export(ctx context.Context, userID string) (*archive.Archive, error)
	Backup(ctx context.Context, userID string) (*archive.Archive, error)
	BackupStatus(ctx context.Context, userID string) (intake.Status, error)
	SetBackupEnabled(ctx context.Context, userID string, enabled bool) error
}

// Bot receives Telegram updates and sends replies and documents.
type Bot struct {
	api telegramAPI
	svc Intake
	cfg *config.Config
	log *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(token string, svc Intake, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api: api,
		svc: svc,
		cfg: cfg,
		log: log.With("component", "bot"),
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if update.CallbackQuery.From == nil || !b.cfg.IsUserAllowed(update.CallbackQuery.From.ID) {
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.cfg.IsUserAllowed(msg.From.ID) {
		b.reply(msg.Chat.ID, "Access denied.")
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleMessage(ctx, msg)
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

// SendDocument uploads data as a file named name.
func (b *Bot) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

// chatAction shows "typing…" and similar indicators; failures only matter for looks.
func (b *Bot) chatAction(chatID int64, action string) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		b.log.Debug("send chat action", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "chat_id", chatID, "user_id", msg.From.ID)

	switch cmd {
	case "start":
		b.handleStart(chatID, msg.From.FirstName)
	case "help":
		b.handleHelp(chatID)
	case "save":
		b.handleSave(ctx, msg, args)
	case "export":
		b.handleExport(ctx, chatID, userKey(msg.From.ID))
	case "backup":
		b.handleBackup(ctx, chatID, userKey(msg.From.ID), args)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
