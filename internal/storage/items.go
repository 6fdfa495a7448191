package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mindvault/internal/model"
)

const lockShards = 64

// ErrInvalidUser is returned for user ids that cannot be used as a key.
var ErrInvalidUser = errors.New("invalid user id")

var userIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store keeps one append-only item log and one settings record per user.
//
// Read-modify-write sequences for a user run under that user's lock. Locks
// are striped over a fixed number of shards, so unrelated users may share
// one without affecting correctness.
type Store struct {
	blobs Blobs
	now   func() time.Time

	shards [lockShards]sync.Mutex
	lastID atomic.Int64
}

// NewStore wraps blobs. A nil clock uses time.Now.
func NewStore(blobs Blobs, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{blobs: blobs, now: now}
}

// Close closes the underlying byte store.
func (s *Store) Close() error {
	return s.blobs.Close()
}

func (s *Store) lock(userID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	m := &s.shards[h.Sum32()%lockShards]
	m.Lock()
	return m.Unlock
}

// nextID returns a process-wide strictly increasing nanosecond stamp.
func (s *Store) nextID() int64 {
	for {
		prev := s.lastID.Load()
		n := s.now().UnixNano()
		if n <= prev {
			n = prev + 1
		}
		if s.lastID.CompareAndSwap(prev, n) {
			return n
		}
	}
}

func checkUser(userID string) error {
	if !userIDRe.MatchString(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

// Append assigns an id to item, appends it to the user's log and returns
// the stored item once the log is durably written.
func (s *Store) Append(ctx context.Context, userID string, item model.SavedItem) (model.SavedItem, error) {
	if err := checkUser(userID); err != nil {
		return model.SavedItem{}, err
	}

	unlock := s.lock(userID)
	defer unlock()

	items, err := s.readItems(ctx, userID)
	if err != nil {
		return model.SavedItem{}, err
	}

	item.UserID = userID
	item.ID = userID + "_" + strconv.FormatInt(s.nextID(), 10)
	items = append(items, item)

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return model.SavedItem{}, fmt.Errorf("encode items: %w", err)
	}
	if err := s.blobs.Put(ctx, ItemsPrefix+userID, data); err != nil {
		return model.SavedItem{}, err
	}
	return item, nil
}

// List returns the user's items in insertion order. Unknown users have none.
func (s *Store) List(ctx context.Context, userID string) ([]model.SavedItem, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	return s.readItems(ctx, userID)
}

func (s *Store) readItems(ctx context.Context, userID string) ([]model.SavedItem, error) {
	data, err := s.blobs.Get(ctx, ItemsPrefix+userID)
	if errors.Is(err, ErrNotFound) {
		return []model.SavedItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := []model.SavedItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", userID, err)
	}
	return items, nil
}

// GetSettings returns the stored settings, or defaults without persisting them.
func (s *Store) GetSettings(ctx context.Context, userID string) (model.UserSettings, error) {
	if err := checkUser(userID); err != nil {
		return model.UserSettings{}, err
	}
	return s.readSettings(ctx, userID)
}

func (s *Store) readSettings(ctx context.Context, userID string) (model.UserSettings, error) {
	data, err := s.blobs.Get(ctx, UsersPrefix+userID)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultSettings(userID, s.now().UTC()), nil
	}
	if err != nil {
		return model.UserSettings{}, err
	}

	var st model.UserSettings
	if err := json.Unmarshal(data, &st); err != nil {
		return model.UserSettings{}, fmt.Errorf("decode settings of %s: %w", userID, err)
	}
	return st, nil
}

// PutSettings upserts the user's settings and stamps UpdatedAt.
func (s *Store) PutSettings(ctx context.Context, userID string, st model.UserSettings) (model.UserSettings, error) {
	if err := checkUser(userID); err != nil {
		return model.UserSettings{}, err
	}

	unlock := s.lock(userID)
	defer unlock()

	return s.writeSettings(ctx, userID, st)
}

// UpdateSettings applies fn to the current settings and stores the result.
// Nothing is written when fn returns an error.
func (s *Store) UpdateSettings(ctx context.Context, userID string, fn func(*model.UserSettings) error) (model.UserSettings, error) {
	if err := checkUser(userID); err != nil {
		return model.UserSettings{}, err
	}

	unlock := s.lock(userID)
	defer unlock()

	st, err := s.readSettings(ctx, userID)
	if err != nil {
		return model.UserSettings{}, err
	}
	if err := fn(&st); err != nil {
		return model.UserSettings{}, err
	}
	return s.writeSettings(ctx, userID, st)
}

func (s *Store) writeSettings(ctx context.Context, userID string, st model.UserSettings) (model.UserSettings, error) {
	now := s.now().UTC()
	st.UserID = userID
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.blobs.Put(ctx, UsersPrefix+userID, data); err != nil {
		return model.UserSettings{}, err
	}
	return st, nil
}

// ListUsers returns every user with a persisted item log.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	keys, err := s.blobs.List(ctx, ItemsPrefix)
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		users = append(users, strings.TrimPrefix(k, ItemsPrefix))
	}
	return users, nil
}
