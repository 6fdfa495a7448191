// Package intake turns user submitted content into saved items and
// assembles export and backup archives.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mindvault/internal/archive"
	"mindvault/internal/links"
	"mindvault/internal/model"
	"mindvault/internal/slug"
	"mindvault/internal/tagging"
)

const (
	maxTitleRunes       = 100
	maxDescriptionRunes = 200
)

// ErrNothingToSave is returned for messages without text or caption.
var ErrNothingToSave = errors.New("nothing to save")

// StoreError reports a failure of the durable store during a save.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return "store item: " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// ItemStore is the persistence the service needs.
type ItemStore interface {
	Append(ctx context.Context, userID string, item model.SavedItem) (model.SavedItem, error)
	GetSettings(ctx context.Context, userID string) (model.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, fn func(*model.UserSettings) error) (model.UserSettings, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// MetadataFetcher extracts a title and description for a URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (model.Metadata, error)
}

// ArchiveBuilder assembles a user's archive.
type ArchiveBuilder interface {
	Build(ctx context.Context, userID string) (*archive.Archive, error)
}

// Options configures a Service.
type Options struct {
	// SaveTagger tags content submitted through /save.
	SaveTagger tagging.Strategy
	// MessageTagger tags free-form messages.
	MessageTagger tagging.Strategy
	Now           func() time.Time
}

// Service is the intake orchestrator.
type Service struct {
	store   ItemStore
	fetcher MetadataFetcher
	builder ArchiveBuilder

	saveTagger    tagging.Strategy
	messageTagger tagging.Strategy
	now           func() time.Time

	log *slog.Logger
}

// NewService wires the intake pipeline. Missing taggers default to the
// simple strategy for /save and the weighted one for messages.
func NewService(store ItemStore, fetcher MetadataFetcher, builder ArchiveBuilder, opts Options, log *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SaveTagger == nil {
		opts.SaveTagger = tagging.NewSimple(opts.Now)
	}
	if opts.MessageTagger == nil {
		opts.MessageTagger = tagging.NewWeighted()
	}
	return &Service{
		store:         store,
		fetcher:       fetcher,
		builder:       builder,
		saveTagger:    opts.SaveTagger,
		messageTagger: opts.MessageTagger,
		now:           opts.Now,
		log:           log.With("component", "intake"),
	}
}

// Summary describes a stored item to the user.
type Summary struct {
	ID       string
	Title    string
	Filename string
	Tags     []string
	URL      string
}

// Message is a free-form chat message.
type Message struct {
	Origin  model.Origin
	Text    string
	Caption string
	// MediaType is the kind of attachment, e.g. "photo" or "video".
	MediaType string
	// ForwardedFrom names the original sender or chat of a forwarded message.
	ForwardedFrom string
}

// draft is the derived part of an item before tagging.
type draft struct {
	url         string
	title       string
	description string
	// extracted values before fallbacks, used for tagging
	rawTitle       string
	rawDescription string
}

// Save stores content sent with /save. Content is a URL only when it
// starts with http:// or https://; unsafe URLs are saved as text.
func (s *Service) Save(ctx context.Context, origin model.Origin, content string) (*Summary, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNothingToSave
	}

	c := links.Classify(content)
	var d draft
	if c.IsURL && links.IsSafe(c.URL) {
		d = s.describeURL(ctx, links.Clean(c.URL))
	} else {
		d = describeText(content)
	}

	in := tagging.Input{Title: d.rawTitle, Description: d.rawDescription, URL: d.url}
	if d.url == "" {
		in.Content = content
	} else {
		in.Content = d.rawDescription
	}
	return s.persist(ctx, origin, content, d, s.saveTagger.Generate(in))
}

// SaveMessage stores a free-form message. The first safe URL in the text
// decides whether it is saved as a link; everything else is a note.
func (s *Service) SaveMessage(ctx context.Context, msg Message) (*Summary, error) {
	content := msg.Text
	if strings.TrimSpace(content) == "" {
		content = msg.Caption
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrNothingToSave
	}
	if msg.ForwardedFrom != "" {
		content += "\n\nForwarded from: " + msg.ForwardedFrom
	}

	in := tagging.Input{MediaType: msg.MediaType}
	var d draft
	if u, ok := links.Extract(content); ok {
		d = s.describeURL(ctx, u)
		in.Caption = links.StripURLs(content)
		in.Content = d.rawDescription
	} else {
		d = describeText(content)
		in.Caption = content
		in.Content = content
	}
	in.Title, in.Description, in.URL = d.rawTitle, d.rawDescription, d.url

	return s.persist(ctx, msg.Origin, content, d, s.messageTagger.Generate(in))
}

func (s *Service) persist(ctx context.Context, origin model.Origin, content string, d draft, tags []string) (*Summary, error) {
	now := s.now().UTC()
	item := model.SavedItem{
		ChatID:      origin.ChatID,
		MessageID:   origin.MessageID,
		Title:       d.title,
		Description: d.description,
		Filename:    slug.Filename(d.title, now),
		Tags:        tags,
		URL:         d.url,
		Content:     content,
		Timestamp:   now,
	}

	saved, err := s.store.Append(ctx, origin.UserID, item)
	if err != nil {
		s.log.Error("save item", "user_id", origin.UserID, "error", err)
		return nil, &StoreError{Err: err}
	}

	s.log.Info("item saved", "user_id", origin.UserID, "id", saved.ID, "url", saved.URL, "tags", len(saved.Tags))
	return &Summary{
		ID:       saved.ID,
		Title:    saved.Title,
		Filename: saved.Filename,
		Tags:     saved.Tags,
		URL:      saved.URL,
	}, nil
}

// describeURL fetches metadata and fills the gaps: the title falls back to
// one derived from the URL and then to UntitledContent.
func (s *Service) describeURL(ctx context.Context, u string) draft {
	md, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		s.log.Warn("fetch metadata", "url", u, "error", err)
	}

	d := draft{url: u, rawTitle: md.Title, rawDescription: md.Description}
	if d.rawTitle == "" {
		d.rawTitle = links.TitleFromURL(u)
	}

	d.title = d.rawTitle
	if d.title == "" {
		d.title = model.UntitledContent
	}
	d.description = md.Description
	if d.description == "" {
		d.description = model.NoDescriptionOnFile
	}
	return d
}

// describeText uses the first line as title and the rest as description.
func describeText(content string) draft {
	first, rest, _ := strings.Cut(strings.TrimSpace(content), "\n")
	d := draft{
		rawTitle:       truncate(strings.TrimSpace(first), maxTitleRunes),
		rawDescription: truncate(strings.TrimSpace(rest), maxDescriptionRunes),
	}
	d.title = d.rawTitle
	if d.title == "" {
		d.title = model.UntitledContent
	}
	d.description = d.rawDescription
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Export builds the user's archive. archive.ErrNoItems means the user has
// nothing saved yet.
func (s *Service) Export(ctx context.Context, userID string) (*archive.Archive, error) {
	a, err := s.builder.Build(ctx, userID)
	if err != nil {
		if !errors.Is(err, archive.ErrNoItems) {
			s.log.Error("build archive", "user_id", userID, "error", err)
		}
		return nil, err
	}
	return a, nil
}

// Backup is Export under another name.
func (s *Service) Backup(ctx context.Context, userID string) (*archive.Archive, error) {
	return s.Export(ctx, userID)
}

// Status is the user's backup configuration.
type Status struct {
	Enabled    bool
	LastBackup *time.Time
}

// BackupStatus reports whether daily backups are on and when the last one ran.
func (s *Service) BackupStatus(ctx context.Context, userID string) (Status, error) {
	st, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return Status{}, fmt.Errorf("get settings: %w", err)
	}
	return Status{Enabled: st.DailyBackupEnabled, LastBackup: st.LastBackup}, nil
}

// SetBackupEnabled turns the daily backup on or off.
func (s *Service) SetBackupEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := s.store.UpdateSettings(ctx, userID, func(st *model.UserSettings) error {
		st.DailyBackupEnabled = enabled
		return nil
	})
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// RecordBackup stores the time a backup was delivered.
func (s *Service) RecordBackup(ctx context.Context, userID string, at time.Time) error {
	at = at.UTC()
	_, err := s.store.UpdateSettings(ctx, userID, func(st *model.UserSettings) error {
		st.LastBackup = &at
		return nil
	})
	if err != nil {
		return fmt.Errorf("record backup: %w", err)
	}
	return nil
}
