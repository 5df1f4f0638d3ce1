package store

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidequest_portal/internal/models"
)

func TestResource_Transitions(t *testing.T) {
	r := idle[[]int]()
	assert.Equal(t, StatusIdle, r.Status)

	r = r.Pending()
	assert.Equal(t, StatusLoading, r.Status)

	r = r.Fulfilled([]int{1, 2})
	assert.True(t, r.Loaded())
	assert.Equal(t, []int{1, 2}, r.Data)

	r = r.Pending().Rejected("boom")
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "boom", r.Error)
	assert.Equal(t, []int{1, 2}, r.Data, "rejected keeps last data")

	r = r.Pending()
	assert.Empty(t, r.Error, "pending clears error")
	assert.Equal(t, []int{1, 2}, r.Data)

	r = r.Fulfilled([]int{3})
	assert.Equal(t, []int{3}, r.Data, "fulfilled replaces wholesale")
}

func TestReduceSubscriptions_CurrentDefaultsToFirst(t *testing.T) {
	s := NewState().Subscriptions
	list := []models.UserSubscription{{ID: 1, Status: "ACTIVE"}, {ID: 2}}

	s = ReduceSubscriptions(s, list)
	require.NotNil(t, s.Current)
	assert.Equal(t, int64(1), s.Current.ID)
	assert.Equal(t, list, s.List.Data)

	s.Current = &models.UserSubscription{ID: 2}
	s = ReduceSubscriptions(s, []models.UserSubscription{{ID: 1}, {ID: 2, Status: "CANCELLED"}})
	assert.Equal(t, int64(2), s.Current.ID)
	assert.Equal(t, models.SubscriptionStatusCancelled, s.Current.Status)

	s = ReduceSubscriptions(s, nil)
	assert.Nil(t, s.Current)
}

func TestReduceSubscriptions_Idempotent(t *testing.T) {
	list := []models.UserSubscription{{ID: 1, AvailableCredit: 3}}
	a := ReduceSubscriptions(NewState().Subscriptions, list)
	b := ReduceSubscriptions(a, list)
	assert.Equal(t, a, b)
}

func TestReduceRedeemPage(t *testing.T) {
	s := NewState().Redeem
	full := make([]models.RedeemItem, RedeemPerPage)
	for i := range full {
		full[i].ID = int64(i + 1)
	}

	s = ReduceRedeemPage(s, 0, full)
	assert.True(t, s.HasMore)
	assert.Len(t, s.Items.Data, 5)

	s = ReduceRedeemPage(s, 1, []models.RedeemItem{{ID: 6}})
	assert.False(t, s.HasMore)
	assert.Equal(t, 1, s.Page)
	assert.Len(t, s.Items.Data, 6)

	s = ReduceRedeemPage(s, 2, nil)
	assert.False(t, s.HasMore)
	assert.Equal(t, 1, s.Page)
	assert.Len(t, s.Items.Data, 6)

	s = ReduceRedeemPage(s, 0, []models.RedeemItem{{ID: 9}})
	assert.Equal(t, []models.RedeemItem{{ID: 9}}, s.Items.Data)
	assert.Equal(t, 0, s.Page)
}

func TestReduceNavigation(t *testing.T) {
	s := NewNavigation()
	assert.Equal(t, models.NavTabPlans, s.ActiveTab)

	s = ReduceNavigation(s, NavAction{Type: NavSetTab, Tab: models.NavTabSchedule})
	s = ReduceNavigation(s, NavAction{Type: NavSetPage, Page: "/schedule"})
	s = ReduceNavigation(s, NavAction{Type: NavToggleSidebar})
	assert.Equal(t, NavigationState{CurrentPage: "/schedule", SidebarOpen: true, ActiveTab: models.NavTabSchedule}, s)

	s = ReduceNavigation(s, NavAction{Type: NavCloseSidebar})
	assert.False(t, s.SidebarOpen)
	s = ReduceNavigation(s, NavAction{Type: NavOpenSidebar})
	assert.True(t, s.SidebarOpen)
	assert.Equal(t, NewNavigation(), ReduceNavigation(s, NavAction{Type: NavReset}))
}

func TestAggregates(t *testing.T) {
	subs := []models.UserSubscription{
		{Status: "ACTIVE", AvailableCredit: 2, GiftCredit: 1},
		{Status: "CANCELLED", AvailableCredit: 3},
	}
	assert.Equal(t, CreditTotals{Available: 5, Gift: 1, Total: 6}, SumCredits(subs))
	assert.Len(t, ActiveSubscriptions(subs), 1)
	assert.True(t, HasActiveSubscription(subs))
	assert.False(t, HasActiveSubscription(subs[1:]))

	counts := CountRedeem([]models.AdminRedeemRequest{
		{Status: models.RedeemStatusPending}, {Status: models.RedeemStatusPending}, {Status: models.RedeemStatusApproved},
	})
	assert.Equal(t, RedeemCounts{Pending: 2, Approved: 1}, counts)
}

func TestManager_SharesAndPersists(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(time.Hour)
	m := NewManager(repo)

	a, err := m.Acquire(ctx, "k")
	require.NoError(t, err)
	b, err := m.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.Same(t, a, b)

	a.Update(func(s State) State { return ReduceLogin(s, "admin") })
	require.NoError(t, m.Release(ctx, a))
	assert.Zero(t, repo.Len(), "still in use")

	require.NoError(t, m.Release(ctx, b))
	assert.Equal(t, 1, repo.Len())

	c, err := m.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Snapshot().Auth.Role)
	require.NoError(t, m.Release(ctx, c))
}

func TestManager_AnonymousNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(time.Hour)
	m := NewManager(repo)

	c, err := m.Acquire(ctx, "")
	require.NoError(t, err)
	c.Update(func(s State) State { s.Navigation.SidebarOpen = true; return s })
	require.NoError(t, m.Release(ctx, c))
	assert.Zero(t, repo.Len())
}

func TestManager_Drop(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(time.Hour)
	m := NewManager(repo)
	require.NoError(t, repo.Save(ctx, "k", ReduceLogin(NewState(), "client")))

	require.NoError(t, m.Drop(ctx, "k"))
	_, found, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestManager_StoreUnderNewKey(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(time.Hour)
	m := NewManager(repo)

	anon, err := m.Acquire(ctx, "")
	require.NoError(t, err)
	anon.Update(func(s State) State { return ReduceLogin(s, "admin") })

	require.NoError(t, m.Store(ctx, "new", anon.Snapshot()))
	require.NoError(t, m.Store(ctx, "", anon.Snapshot()))
	assert.Equal(t, 1, repo.Len())

	c, err := m.Acquire(ctx, "new")
	require.NoError(t, err)
	assert.True(t, c.Snapshot().Auth.Authenticated)
	require.NoError(t, m.Release(ctx, c))
}

// gatedRepo задерживает Load или Save одного ключа, пока не закрыт gate
type gatedRepo struct {
	*MemoryRepository
	key       string
	blockLoad bool
	blockSave bool
	entered   chan struct{}
	gate      chan struct{}
	loads     atomic.Int32
}

func newGatedRepo(key string) *gatedRepo {
	return &gatedRepo{
		MemoryRepository: NewMemoryRepository(time.Hour),
		key:              key,
		entered:          make(chan struct{}, 8),
		gate:             make(chan struct{}),
	}
}

func (r *gatedRepo) Load(ctx context.Context, key string) (State, bool, error) {
	if key == r.key {
		r.loads.Add(1)
		if r.blockLoad {
			r.entered <- struct{}{}
			<-r.gate
		}
	}
	return r.MemoryRepository.Load(ctx, key)
}

func (r *gatedRepo) Save(ctx context.Context, key string, s State) error {
	if key == r.key && r.blockSave {
		r.entered <- struct{}{}
		<-r.gate
	}
	return r.MemoryRepository.Save(ctx, key, s)
}

func waitEntered(t *testing.T, r *gatedRepo) {
	t.Helper()
	select {
	case <-r.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("repository call did not start")
	}
}

func TestManager_SlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	repo := newGatedRepo("slow")
	repo.blockLoad = true
	m := NewManager(repo)

	slow := make(chan *Container, 1)
	go func() {
		c, _ := m.Acquire(ctx, "slow")
		slow <- c
	}()
	waitEntered(t, repo)

	done := make(chan struct{})
	go func() {
		c, err := m.Acquire(ctx, "fast")
		assert.NoError(t, err)
		assert.NoError(t, m.Release(ctx, c))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire of another session waited for slow Load")
	}

	close(repo.gate)
	c := <-slow
	require.NotNil(t, c)
	require.NoError(t, m.Release(ctx, c))
}

func TestManager_ConcurrentAcquireLoadsOnce(t *testing.T) {
	ctx := context.Background()
	repo := newGatedRepo("k")
	repo.blockLoad = true
	m := NewManager(repo)

	got := make(chan *Container, 2)
	go func() {
		c, _ := m.Acquire(ctx, "k")
		got <- c
	}()
	waitEntered(t, repo)
	go func() {
		c, _ := m.Acquire(ctx, "k")
		got <- c
	}()

	close(repo.gate)
	a, b := <-got, <-got
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, int32(1), repo.loads.Load())
	require.NoError(t, m.Release(ctx, a))
	require.NoError(t, m.Release(ctx, b))
}

func TestManager_AcquireDuringSaveGetsLiveContainer(t *testing.T) {
	ctx := context.Background()
	repo := newGatedRepo("k")
	m := NewManager(repo)

	a, err := m.Acquire(ctx, "k")
	require.NoError(t, err)
	a.Update(func(s State) State { return ReduceLogin(s, "admin") })

	repo.blockSave = true
	released := make(chan error, 1)
	go func() { released <- m.Release(ctx, a) }()
	waitEntered(t, repo)

	// 1. Второй запрос той же сессии, пока первый еще пишет
	b, err := m.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "admin", b.Snapshot().Auth.Role)
	assert.Equal(t, int32(1), repo.loads.Load(), "no reload from repository")

	// 2. Его изменения записываются после первого Save
	b.Update(func(s State) State { s.Navigation.SidebarOpen = true; return s })
	releasedB := make(chan error, 1)
	go func() { releasedB <- m.Release(ctx, b) }()

	close(repo.gate)
	require.NoError(t, <-released)
	require.NoError(t, <-releasedB)

	saved, found, err := repo.MemoryRepository.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "admin", saved.Auth.Role)
	assert.True(t, saved.Navigation.SidebarOpen)
}

func TestManager_AcquireCancelledWhileLoading(t *testing.T) {
	repo := newGatedRepo("k")
	repo.blockLoad = true
	m := NewManager(repo)

	first := make(chan *Container, 1)
	go func() {
		c, _ := m.Acquire(context.Background(), "k")
		first <- c
	}()
	waitEntered(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)

	close(repo.gate)
	c := <-first
	require.NotNil(t, c)
	c.Update(func(s State) State { return ReduceLogin(s, "client") })
	require.NoError(t, m.Release(context.Background(), c))
	assert.Equal(t, 1, repo.Len())
}

func TestContainer_ConcurrentUpdates(t *testing.T) {
	c := NewContainer("k", NewState())
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(s State) State { s.Redeem.Page++; return s })
			_ = c.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Snapshot().Redeem.Page)
}

func TestMemoryRepository_TTL(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.Save(ctx, "k", NewState()))

	_, found, _ := repo.Load(ctx, "k")
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, _ = repo.Load(ctx, "k")
	assert.False(t, found)
}

func TestMemoryRepository_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.Save(ctx, "old", NewState()))

	now = now.Add(30 * time.Second)
	require.NoError(t, repo.Save(ctx, "fresh", NewState()))

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, repo.Sweep())
	assert.Equal(t, 1, repo.Len())
	_, found, _ := repo.Load(ctx, "fresh")
	assert.True(t, found)
}

func TestRedisRepository_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	repo := NewRedisRepository(rdb, time.Minute)
	s := ReduceSubscriptions(NewState().Subscriptions, []models.UserSubscription{{ID: 5, Status: "ACTIVE"}})
	state := NewState()
	state.Subscriptions = s

	require.NoError(t, repo.Save(ctx, "test-roundtrip", state))
	got, found, err := repo.Load(ctx, "test-roundtrip")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(5), got.Subscriptions.Current.ID)
	require.NoError(t, repo.Delete(ctx, "test-roundtrip"))
}
