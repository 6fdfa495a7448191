package bot

import (
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mindvault/internal/model"
)

// BackupAction is a /backup subcommand.
type BackupAction string

const (
	BackupNow    BackupAction = "now"
	BackupOn     BackupAction = "on"
	BackupOff    BackupAction = "off"
	BackupStatus BackupAction = "status"
)

var errUnknownAction = errors.New("unknown backup action")

// ParseBackupAction parses the argument of /backup. Only the first word counts.
func ParseBackupAction(args string) (BackupAction, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", errUnknownAction
	}
	switch a := BackupAction(strings.ToLower(fields[0])); a {
	case BackupNow, BackupOn, BackupOff, BackupStatus:
		return a, nil
	}
	return "", errUnknownAction
}

// MediaType names the attachment carried by msg, or "" for plain text.
func MediaType(msg *tgbotapi.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return "photo"
	case msg.Video != nil:
		return "video"
	case msg.Audio != nil:
		return "audio"
	case msg.Voice != nil:
		return "voice"
	case msg.Animation != nil:
		return "animation"
	case msg.Document != nil:
		return "document"
	case msg.Sticker != nil:
		return "sticker"
	}
	return ""
}

// ForwardedFrom names the original author of a forwarded message.
func ForwardedFrom(msg *tgbotapi.Message) string {
	switch {
	case msg.ForwardFrom != nil:
		name := strings.TrimSpace(msg.ForwardFrom.FirstName + " " + msg.ForwardFrom.LastName)
		if name == "" {
			name = msg.ForwardFrom.UserName
		}
		return name
	case msg.ForwardFromChat != nil:
		return msg.ForwardFromChat.Title
	}
	return msg.ForwardSenderName
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func originOf(msg *tgbotapi.Message) model.Origin {
	return model.Origin{
		UserID:    userKey(msg.From.ID),
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		MessageID: strconv.Itoa(msg.MessageID),
	}
}
