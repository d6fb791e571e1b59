package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopsync/internal/domain"
	"shopsync/internal/remote"
	"shopsync/pkg/utils"
)

// Users handles account flows. Login and register are remote-first with the
// same business checks replicated locally, so the visible outcome does not
// depend on reachability. Pending account rows are flushed back before every
// remote read, like any other entity.
type Users struct {
	repo   domain.UserRepository
	remote *remote.Users
	locks  *keyLock
	log    *zap.Logger
}

func NewUsers(repo domain.UserRepository, ru *remote.Users, log *zap.Logger) *Users {
	return &Users{repo: repo, remote: ru, locks: newKeyLock(), log: log}
}

// Login verifies credentials against the remote, caching the account locally;
// when the remote is unreachable it verifies against the local bcrypt hash.
// A credential mismatch is the same error either way.
func (s *Users) Login(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "sync.Users.Login"

	s.Flush(ctx)

	u, err := s.remote.Login(ctx, email, password)
	observeRemote("user", "login", err)
	switch {
	case err == nil:
		u.Pending = false
		u.PasswordHash = utils.HashPassword(password)
		if uerr := s.repo.Upsert(ctx, u); uerr != nil {
			return nil, fmt.Errorf("%s: %w", op, uerr)
		}
		return u, nil
	case remote.IsRejection(err):
		return nil, domain.ErrInvalidCredentials
	}

	localFallbacks.WithLabelValues("user", "login").Inc()
	local, lerr := s.repo.FindByEmail(ctx, email)
	if lerr != nil {
		return nil, fmt.Errorf("%s: %w", op, lerr)
	}
	if local == nil || !utils.CheckPassword(password, local.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return local, nil
}

// Register creates the account remote-first. A duplicate email is rejected
// identically whether the remote or the local uniqueness check catches it;
// other remote rejections propagate untouched. An offline registration keeps
// the opaque password on the pending row so the flush can replay it.
func (s *Users) Register(ctx context.Context, u *domain.User) (*domain.User, error) {
	const op = "sync.Users.Register"

	if u.ID == "" {
		u.ID = utils.NewID()
	}
	password := u.Password

	unlock := s.locks.Lock("user-email/" + u.Email)
	defer unlock()

	out, err := s.remote.Register(ctx, u)
	observeRemote("user", "register", err)
	switch {
	case err == nil:
		out.Pending = false
	case remote.IsConflict(err):
		return nil, domain.ErrEmailTaken
	case remote.IsRejection(err):
		return nil, err
	default:
		localFallbacks.WithLabelValues("user", "register").Inc()
		s.log.Warn("register applied locally, remote unreachable", zap.Error(err))
		existing, lerr := s.repo.FindByEmail(ctx, u.Email)
		if lerr != nil {
			return nil, fmt.Errorf("%s: %w", op, lerr)
		}
		if existing != nil {
			return nil, domain.ErrEmailTaken
		}
		u.Pending = true
		u.PendingPassword = password
		out = u
	}

	out.Password = ""
	out.PasswordHash = utils.HashPassword(password)
	if uerr := s.repo.Upsert(ctx, out); uerr != nil {
		return nil, fmt.Errorf("%s: %w", op, uerr)
	}
	return out, nil
}

func (s *Users) Get(ctx context.Context, id string) (*domain.User, error) {
	const op = "sync.Users.Get"

	s.Flush(ctx)

	u, err := s.remote.Get(ctx, id)
	observeRemote("user", "get", err)
	if err == nil {
		u.Pending = false
		if local, _ := s.repo.FindByID(ctx, id); local != nil {
			if local.Pending {
				return local, nil
			}
			u.PasswordHash = local.PasswordHash
		}
		if uerr := s.repo.Upsert(ctx, u); uerr != nil {
			return nil, fmt.Errorf("%s: %w", op, uerr)
		}
		return u, nil
	}

	local, lerr := s.repo.FindByID(ctx, id)
	if lerr != nil {
		return nil, fmt.Errorf("%s: %w", op, lerr)
	}
	if local == nil {
		return nil, domain.ErrNotFound
	}
	return local, nil
}

// Update pushes profile changes remote-first; offline edits stay pending on
// the local row.
func (s *Users) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	const op = "sync.Users.Update"

	unlock := s.locks.Lock("user/" + u.ID)
	defer unlock()

	prior, lerr := s.repo.FindByID(ctx, u.ID)
	if lerr != nil {
		return nil, fmt.Errorf("%s: %w", op, lerr)
	}

	out, err := s.remote.Update(ctx, u.ID, u)
	observeRemote("user", "update", err)
	switch {
	case err == nil:
		out.Pending = false
	case remote.IsRejection(err):
		if remote.IsNotFound(err) && prior == nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	default:
		localFallbacks.WithLabelValues("user", "update").Inc()
		u.Pending = true
		out = u
	}

	if prior != nil && out.PasswordHash == "" {
		out.PasswordHash = prior.PasswordHash
	}
	if prior != nil && out.PendingPassword == "" {
		out.PendingPassword = prior.PendingPassword
	}
	if uerr := s.repo.Upsert(ctx, out); uerr != nil {
		return nil, fmt.Errorf("%s: %w", op, uerr)
	}
	return out, nil
}

// Flush pushes pending account rows to the remote: profile edits as absolute
// updates, offline registrations replayed once the remote confirms the email
// is still free. Rows that still fail stay pending.
func (s *Users) Flush(ctx context.Context) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		s.log.Warn("listing pending accounts failed", zap.Error(err))
		return
	}
	for i := range rows {
		u := &rows[i]
		unlock := s.locks.Lock("user/" + u.ID)

		out, err := s.push(ctx, u)
		if err != nil {
			pendingFlushed.WithLabelValues("user", "error").Inc()
			unlock()
			if remote.IsUnavailable(err) {
				break
			}
			s.log.Warn("pending account rejected by remote",
				zap.String("email", u.Email), zap.Error(err))
			continue
		}
		out.Pending = false
		out.Password = ""
		out.PasswordHash = u.PasswordHash
		out.PendingPassword = ""
		if uerr := s.repo.Upsert(ctx, out); uerr != nil {
			s.log.Warn("storing flushed account failed", zap.Error(uerr))
		} else {
			pendingFlushed.WithLabelValues("user", "ok").Inc()
		}
		unlock()
	}
}

// push tries the absolute update first; an account the remote has never seen
// is re-registered, unless its email has been taken there in the meantime.
func (s *Users) push(ctx context.Context, u *domain.User) (*domain.User, error) {
	out, err := s.remote.Update(ctx, u.ID, u)
	if !remote.IsNotFound(err) {
		return out, err
	}
	if _, gerr := s.remote.GetByEmail(ctx, u.Email); gerr == nil {
		// Someone else registered the email while we were offline; the local
		// account cannot be replayed.
		return nil, err
	} else if !remote.IsNotFound(gerr) {
		return nil, gerr
	}
	reg := *u
	reg.Password = u.PendingPassword
	return s.remote.Register(ctx, &reg)
}
