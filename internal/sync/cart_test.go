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

// cartServer fakes the remote cart endpoints over an in-memory map, with the
// same accumulate-on-add behavior as the real service.
type cartServer struct {
	mu   gosync.Mutex
	rows map[string]domain.CartItem
	srv  *httptest.Server
}

func newCartServer() *cartServer {
	s := &cartServer{rows: map[string]domain.CartItem{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart", s.handleAdd)
	mux.HandleFunc("/api/cart/", s.handleKeyed)
	s.srv = httptest.NewServer(mux)
	return s
}

func (s *cartServer) handleAdd(w http.ResponseWriter, r *http.Request) {
	var in domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	k := in.Key().String()
	if cur, ok := s.rows[k]; ok {
		cur.Quantity += in.Quantity
		s.rows[k] = cur
		in = cur
	} else {
		s.rows[k] = in
	}
	s.mu.Unlock()
	_ = json.NewEncoder(w).Encode(in)
}

func (s *cartServer) handleKeyed(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/cart/")

	if userID, ok := strings.CutPrefix(rest, "clear/"); ok {
		s.mu.Lock()
		for k, row := range s.rows {
			if row.UserID == userID {
				delete(s.rows, k)
			}
		}
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if userID, ok := strings.CutPrefix(rest, "user/"); ok {
		s.mu.Lock()
		out := []domain.CartItem{}
		for _, row := range s.rows {
			if row.UserID == userID {
				out = append(out, row)
			}
		}
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(out)
		return
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		http.NotFound(w, r)
		return
	}
	key := parts[0] + "/" + parts[1] + "/" + parts[2]

	switch r.Method {
	case http.MethodPut:
		var in struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		row, ok := s.rows[key]
		if !ok {
			s.mu.Unlock()
			http.NotFound(w, r)
			return
		}
		row.Quantity = in.Quantity
		s.rows[key] = row
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(row)
	case http.MethodDelete:
		s.mu.Lock()
		delete(s.rows, key)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (s *cartServer) get(k domain.CartKey) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[k.String()]
	return row, ok
}

func cartOver(repo domain.CartRepository, baseURL string) *Cart {
	rc := remote.NewCart(remote.New(baseURL, 2*time.Second, zap.NewNop()))
	return NewCart(repo, rc, zap.NewNop())
}

// deadURL points at a server that has already been shut down.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	return srv.URL
}

func item(userID, productID, size string, qty int, price float64) *domain.CartItem {
	return &domain.CartItem{
		UserID: userID, ProductID: productID, SelectedSize: size,
		ProductName: "Hoodie", ProductPrice: price, Quantity: qty,
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	cart := cartOver(newMemCartRepo(), deadURL(t))
	_, err := cart.Add(context.Background(), item("u1", "p1", "M", 0, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = cart.Add(context.Background(), item("u1", "p1", "M", -2, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddAccumulatesLocallyWhileOffline(t *testing.T) {
	ctx := context.Background()
	repo := newMemCartRepo()
	cart := cartOver(repo, deadURL(t))

	first, err := cart.Add(ctx, item("u1", "p1", "M", 2, 19.99))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)
	assert.True(t, first.Pending)

	// Same key accumulates; the snapshot price stays frozen at first add even
	// though the caller passes a newer one.
	second, err := cart.Add(ctx, item("u1", "p1", "M", 1, 24.99))
	require.NoError(t, err)
	assert.Equal(t, 3, second.Quantity)
	assert.Equal(t, 19.99, second.ProductPrice)
	assert.True(t, second.Pending)

	// A different size is a different row.
	other, err := cart.Add(ctx, item("u1", "p1", "L", 1, 19.99))
	require.NoError(t, err)
	assert.Equal(t, 1, other.Quantity)

	items, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 4, Count(items))
}

func TestAddOnlineMirrorsServerRow(t *testing.T) {
	ctx := context.Background()
	srv := newCartServer()
	defer srv.srv.Close()
	repo := newMemCartRepo()
	cart := cartOver(repo, srv.srv.URL)

	_, err := cart.Add(ctx, item("u1", "p1", "M", 2, 19.99))
	require.NoError(t, err)
	out, err := cart.Add(ctx, item("u1", "p1", "M", 3, 19.99))
	require.NoError(t, err)
	assert.Equal(t, 5, out.Quantity)
	assert.False(t, out.Pending)

	local, err := repo.FindByKey(ctx, domain.CartKey{UserID: "u1", ProductID: "p1", Size: "M"})
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, 5, local.Quantity)
	assert.False(t, local.Pending)
}

func TestSetQuantityIsAbsolute(t *testing.T) {
	ctx := context.Background()
	srv := newCartServer()
	defer srv.srv.Close()
	cart := cartOver(newMemCartRepo(), srv.srv.URL)

	_, err := cart.Add(ctx, item("u1", "p1", "M", 5, 19.99))
	require.NoError(t, err)

	k := domain.CartKey{UserID: "u1", ProductID: "p1", Size: "M"}
	out, err := cart.SetQuantity(ctx, k, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Quantity)

	onServer, ok := srv.get(k)
	require.True(t, ok)
	assert.Equal(t, 2, onServer.Quantity)
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	srv := newCartServer()
	defer srv.srv.Close()
	repo := newMemCartRepo()
	cart := cartOver(repo, srv.srv.URL)

	_, err := cart.Add(ctx, item("u1", "p1", "M", 5, 19.99))
	require.NoError(t, err)

	k := domain.CartKey{UserID: "u1", ProductID: "p1", Size: "M"}
	out, err := cart.SetQuantity(ctx, k, 0)
	require.NoError(t, err)
	assert.Nil(t, out)

	local, err := repo.FindByKey(ctx, k)
	require.NoError(t, err)
	assert.Nil(t, local)
	_, ok := srv.get(k)
	assert.False(t, ok)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	cart := cartOver(newMemCartRepo(), deadURL(t))
	k := domain.CartKey{UserID: "u1", ProductID: "ghost", Size: "M"}
	assert.NoError(t, cart.Remove(context.Background(), k))
	assert.NoError(t, cart.Remove(context.Background(), k))
}

func TestClearWorksOffline(t *testing.T) {
	ctx := context.Background()
	repo := newMemCartRepo()
	cart := cartOver(repo, deadURL(t))

	_, err := cart.Add(ctx, item("u1", "p1", "M", 2, 19.99))
	require.NoError(t, err)
	_, err = cart.Add(ctx, item("u1", "p2", "L", 1, 59.90))
	require.NoError(t, err)

	require.NoError(t, cart.Clear(ctx, "u1"))
	items, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

// The reconnect scenario: a quantity accumulated offline must win over the
// stale remote row once the agent is back online, not be reverted by the pull.
func TestOfflineAccumulationSurvivesReconnect(t *testing.T) {
	ctx := context.Background()
	srv := newCartServer()
	defer srv.srv.Close()
	repo := newMemCartRepo()
	k := domain.CartKey{UserID: "u1", ProductID: "p1", Size: "M"}

	// Synced state: one unit on both sides.
	online := cartOver(repo, srv.srv.URL)
	_, err := online.Add(ctx, item("u1", "p1", "M", 1, 19.99))
	require.NoError(t, err)

	// Offline: two more units accumulate locally.
	offline := cartOver(repo, deadURL(t))
	out, err := offline.Add(ctx, item("u1", "p1", "M", 2, 19.99))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Quantity)
	assert.True(t, out.Pending)

	// Back online: the read flushes the absolute quantity before pulling.
	items, err := online.Items(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.False(t, items[0].Pending)

	onServer, ok := srv.get(k)
	require.True(t, ok)
	assert.Equal(t, 3, onServer.Quantity, "remote must converge on the accumulated value")
}

// An online add onto a key whose local row is still pending must converge
// both sides on local + added, not let the remote's stale count win.
func TestAddOntoPendingRowConvergesBothSides(t *testing.T) {
	ctx := context.Background()
	srv := newCartServer()
	defer srv.srv.Close()
	repo := newMemCartRepo()
	k := domain.CartKey{UserID: "u1", ProductID: "p1", Size: "M"}

	online := cartOver(repo, srv.srv.URL)
	_, err := online.Add(ctx, item("u1", "p1", "M", 1, 19.99))
	require.NoError(t, err)

	offline := cartOver(repo, deadURL(t))
	_, err = offline.Add(ctx, item("u1", "p1", "M", 2, 19.99))
	require.NoError(t, err)

	// Local 3 (pending) vs remote 1; adding 1 online must yield 4 everywhere.
	out, err := online.Add(ctx, item("u1", "p1", "M", 1, 19.99))
	require.NoError(t, err)
	assert.Equal(t, 4, out.Quantity)
	assert.False(t, out.Pending)

	onServer, ok := srv.get(k)
	require.True(t, ok)
	assert.Equal(t, 4, onServer.Quantity)

	local, err := repo.FindByKey(ctx, k)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, 4, local.Quantity)
	assert.False(t, local.Pending)
}

// The same add while still offline keeps accumulating onto the pending row.
func TestAddOntoPendingRowOfflineKeepsAccumulating(t *testing.T) {
	ctx := context.Background()
	repo := newMemCartRepo()
	cart := cartOver(repo, deadURL(t))

	_, err := cart.Add(ctx, item("u1", "p1", "M", 2, 19.99))
	require.NoError(t, err)
	out, err := cart.Add(ctx, item("u1", "p1", "M", 3, 19.99))
	require.NoError(t, err)
	assert.Equal(t, 5, out.Quantity)
	assert.True(t, out.Pending)
}

func TestTotalAndCount(t *testing.T) {
	items := []domain.CartItem{
		{ProductPrice: 19.99, Quantity: 2},
		{ProductPrice: 59.90, Quantity: 1},
	}
	assert.InDelta(t, 99.88, Total(items), 1e-9)
	assert.Equal(t, 3, Count(items))
	assert.Zero(t, Total(nil))
	assert.Zero(t, Count(nil))
}
