// Package model defines the domain types used across the application.
package model

import "time"

// SavedItem is one piece of content a user asked the bot to keep.
// Once appended to a user's log it is never modified.
type SavedItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ChatID      string    `json:"chat_id"`
	MessageID   string    `json:"message_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Filename    string    `json:"filename"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// IsTextOnly reports whether the item was saved without a source URL.
func (i SavedItem) IsTextOnly() bool {
	return i.URL == ""
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	UserID             string     `json:"user_id"`
	DailyBackupEnabled bool       `json:"daily_backup_enabled"`
	LastBackup         *time.Time `json:"last_backup,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DefaultSettings returns the settings a user has before ever changing them.
func DefaultSettings(userID string, now time.Time) UserSettings {
	return UserSettings{
		UserID:             userID,
		DailyBackupEnabled: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Origin identifies where a piece of content came from on the chat platform.
// The identifiers are opaque to everything except the transport.
type Origin struct {
	UserID    string
	ChatID    string
	MessageID string
}

// Metadata is the title and description extracted for a URL.
type Metadata struct {
	Title       string
	Description string
}

// Fallback metadata values used when nothing better can be extracted.
const (
	UntitledContent     = "Untitled Content"
	NoDescriptionOnFile = "No description available"
)
