package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopsync/internal/domain"
	"shopsync/internal/remote"
)

type userServer struct {
	mu        gosync.Mutex
	accounts  map[string]domain.User // by email
	passwords map[string]string
	srv       *httptest.Server
}

func newUserServer() *userServer {
	s := &userServer{accounts: map[string]domain.User{}, passwords: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", s.handleLogin)
	mux.HandleFunc("/api/users/register", s.handleRegister)
	mux.HandleFunc("/api/users/", s.handleUsers)
	s.srv = httptest.NewServer(mux)
	return s
}

func (s *userServer) seed(u domain.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.Email] = u
	s.passwords[u.Email] = password
}

func (s *userServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	u, ok := s.accounts[in.Email]
	pass := s.passwords[in.Email]
	s.mu.Unlock()
	if !ok || pass != in.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(u)
}

func (s *userServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in domain.User
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[in.Email]; ok {
		http.Error(w, "email taken", http.StatusConflict)
		return
	}
	pass := in.Password
	in.Password = ""
	s.accounts[in.Email] = in
	s.passwords[in.Email] = pass
	_ = json.NewEncoder(w).Encode(in)
}

func (s *userServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")

	if email, ok := strings.CutPrefix(rest, "email/"); ok {
		s.mu.Lock()
		u, found := s.accounts[email]
		s.mu.Unlock()
		if !found {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(u)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for email, u := range s.accounts {
		if u.ID != rest {
			continue
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(u)
		case http.MethodPut:
			var in domain.User
			_ = json.NewDecoder(r.Body).Decode(&in)
			in.ID = u.ID
			in.Password = ""
			s.accounts[email] = in
			_ = json.NewEncoder(w).Encode(in)
		default:
			http.NotFound(w, r)
		}
		return
	}
	http.NotFound(w, r)
}

func (s *userServer) account(email string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.accounts[email]
	return u, ok
}

func usersOver(repo domain.UserRepository, baseURL string) *Users {
	ru := remote.NewUsers(remote.New(baseURL, 2*time.Second, zap.NewNop()))
	return NewUsers(repo, ru, zap.NewNop())
}

func TestLoginOnlineCachesCredentialsForOffline(t *testing.T) {
	ctx := context.Background()
	srv := newUserServer()
	defer srv.srv.Close()
	srv.seed(domain.User{ID: "u1", Email: "demo@shop.local", Name: "Demo"}, "demo1234")
	repo := newMemUserRepo()

	online := usersOver(repo, srv.srv.URL)
	u, err := online.Login(ctx, "demo@shop.local", "demo1234")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	// The agent is offline now; the cached hash still verifies the password.
	offline := usersOver(repo, deadURL(t))
	u, err = offline.Login(ctx, "demo@shop.local", "demo1234")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = offline.Login(ctx, "demo@shop.local", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = offline.Login(ctx, "stranger@shop.local", "demo1234")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRemoteRejectionDoesNotFallBack(t *testing.T) {
	ctx := context.Background()
	srv := newUserServer()
	defer srv.srv.Close()
	srv.seed(domain.User{ID: "u1", Email: "demo@shop.local"}, "demo1234")
	repo := newMemUserRepo()
	// Local copy with a different password; the remote answer must win while
	// the remote is reachable.
	require.NoError(t, repo.Upsert(ctx, &domain.User{ID: "u1", Email: "demo@shop.local"}))

	users := usersOver(repo, srv.srv.URL)
	_, err := users.Login(ctx, "demo@shop.local", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterOfflineStaysPendingAndKeepsEmailsUnique(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	users := usersOver(repo, deadURL(t))

	u, err := users.Register(ctx, &domain.User{Email: "new@shop.local", Password: "secret12", Name: "New"})
	require.NoError(t, err)
	assert.True(t, u.Pending)
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.Password, "the opaque password never persists")
	assert.NotEmpty(t, u.PasswordHash)

	// The offline account can log in right away.
	got, err := users.Login(ctx, "new@shop.local", "secret12")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.Register(ctx, &domain.User{Email: "new@shop.local", Password: "other", Name: "Dup"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterRemoteConflict(t *testing.T) {
	ctx := context.Background()
	srv := newUserServer()
	defer srv.srv.Close()
	srv.seed(domain.User{ID: "u1", Email: "taken@shop.local"}, "pw")

	users := usersOver(newMemUserRepo(), srv.srv.URL)
	_, err := users.Register(ctx, &domain.User{Email: "taken@shop.local", Password: "secret12"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

// An account registered offline must reach the remote once it is back: the
// next remote read replays the registration, after which the remote itself
// can authenticate the user.
func TestOfflineRegistrationFlushesOnReconnect(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()

	offline := usersOver(repo, deadURL(t))
	u, err := offline.Register(ctx, &domain.User{Email: "new@shop.local", Password: "secret12", Name: "New"})
	require.NoError(t, err)
	require.True(t, u.Pending)

	srv := newUserServer()
	defer srv.srv.Close()
	online := usersOver(repo, srv.srv.URL)

	got, err := online.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending)

	remoteAcct, ok := srv.account("new@shop.local")
	require.True(t, ok, "the flush must replay the registration")
	assert.Equal(t, u.ID, remoteAcct.ID)

	local, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.False(t, local.Pending)
	assert.Empty(t, local.PendingPassword)

	// A fresh install can now log in against the remote directly.
	fresh := usersOver(newMemUserRepo(), srv.srv.URL)
	logged, err := fresh.Login(ctx, "new@shop.local", "secret12")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
}

func TestOfflineProfileEditFlushesOnLogin(t *testing.T) {
	ctx := context.Background()
	srv := newUserServer()
	defer srv.srv.Close()
	srv.seed(domain.User{ID: "u1", Email: "demo@shop.local", Name: "Old Name"}, "demo1234")
	repo := newMemUserRepo()

	online := usersOver(repo, srv.srv.URL)
	_, err := online.Login(ctx, "demo@shop.local", "demo1234")
	require.NoError(t, err)

	offline := usersOver(repo, deadURL(t))
	edited, err := offline.Update(ctx, &domain.User{ID: "u1", Email: "demo@shop.local", Name: "New Name"})
	require.NoError(t, err)
	require.True(t, edited.Pending)

	// The next reachable login flushes the edit before authenticating.
	u, err := online.Login(ctx, "demo@shop.local", "demo1234")
	require.NoError(t, err)
	assert.False(t, u.Pending)
	assert.Equal(t, "New Name", u.Name)

	remoteAcct, ok := srv.account("demo@shop.local")
	require.True(t, ok)
	assert.Equal(t, "New Name", remoteAcct.Name)
}

func TestFlushLeavesRowPendingWhenEmailTakenMeanwhile(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()

	offline := usersOver(repo, deadURL(t))
	u, err := offline.Register(ctx, &domain.User{Email: "new@shop.local", Password: "secret12"})
	require.NoError(t, err)

	// Someone else grabbed the email before the agent came back.
	srv := newUserServer()
	defer srv.srv.Close()
	srv.seed(domain.User{ID: "other", Email: "new@shop.local"}, "otherpass")

	online := usersOver(repo, srv.srv.URL)
	online.Flush(ctx)

	local, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.True(t, local.Pending, "a conflicting registration must not be silently dropped")

	remoteAcct, _ := srv.account("new@shop.local")
	assert.Equal(t, "other", remoteAcct.ID, "the remote account must stay untouched")
}

func TestRegisterRemoteValidationErrorPropagates(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "password too short", http.StatusBadRequest)
	}))
	defer srv.Close()
	repo := newMemUserRepo()

	users := usersOver(repo, srv.URL)
	_, err := users.Register(ctx, &domain.User{Email: "new@shop.local", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmailTaken)
	assert.True(t, remote.IsRejection(err))

	local, lerr := repo.FindByEmail(ctx, "new@shop.local")
	require.NoError(t, lerr)
	assert.Nil(t, local, "a rejected registration must not reach the local store")
}

func TestUpdateOfflinePreservesPasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	users := usersOver(repo, deadURL(t))

	u, err := users.Register(ctx, &domain.User{Email: "new@shop.local", Password: "secret12", Name: "Old Name"})
	require.NoError(t, err)

	updated, err := users.Update(ctx, &domain.User{ID: u.ID, Email: u.Email, Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.True(t, updated.Pending)
	assert.Equal(t, u.PasswordHash, updated.PasswordHash)

	// Offline login keeps working after the profile edit.
	_, err = users.Login(ctx, "new@shop.local", "secret12")
	assert.NoError(t, err)
}
