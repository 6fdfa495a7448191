package intake

import (
	"context"
	"errors"
	"fmt"

	"mindvault/internal/archive"
)

// OutcomeKind classifies the result of one user's scheduled backup.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeBuilt   OutcomeKind = "built"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeEmpty   OutcomeKind = "empty"
	OutcomeFailed  OutcomeKind = "failed"
)

// BackupOutcome is the result for one user. Archive is set for OutcomeBuilt
// and Err for OutcomeFailed.
type BackupOutcome struct {
	UserID  string
	Kind    OutcomeKind
	Archive *archive.Archive
	Err     error
}

// RunScheduledBackups builds an archive for every user with daily backups
// enabled and passes each outcome to handle before moving to the next
// user, so at most one archive is held at a time. A failure for one user
// does not stop the others. Only a failure to enumerate users or a
// cancelled context is returned as an error.
func (s *Service) RunScheduledBackups(ctx context.Context, handle func(BackupOutcome)) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		handle(s.backupUser(ctx, uid))
	}
	return nil
}

func (s *Service) backupUser(ctx context.Context, userID string) BackupOutcome {
	out := BackupOutcome{UserID: userID}

	st, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		s.log.Error("scheduled backup: get settings", "user_id", userID, "error", err)
		out.Kind, out.Err = OutcomeFailed, err
		return out
	}
	if !st.DailyBackupEnabled {
		out.Kind = OutcomeSkipped
		return out
	}

	a, err := s.builder.Build(ctx, userID)
	switch {
	case errors.Is(err, archive.ErrNoItems):
		out.Kind = OutcomeEmpty
	case err != nil:
		s.log.Error("scheduled backup: build archive", "user_id", userID, "error", err)
		out.Kind, out.Err = OutcomeFailed, err
	default:
		out.Kind, out.Archive = OutcomeBuilt, a
	}
	return out
}
