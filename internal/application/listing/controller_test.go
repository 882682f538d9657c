package listing

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves integer rows 1..total and records every query it receives
type fakeSource struct {
	mu    sync.Mutex
	total int
	calls []shared.Query
	err   error
	// block, when set for a call index, holds that call until the channel is closed
	block map[int]chan struct{}
	ctxs  []context.Context
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{total: total, block: map[int]chan struct{}{}}
}

func (f *fakeSource) fetch(ctx context.Context, q shared.Query) (shared.PageResult[int], error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, q)
	f.ctxs = append(f.ctxs, ctx)
	gate := f.block[idx]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return shared.PageResult[int]{}, err
	}

	items := []int{}
	for i := (q.Page-1)*q.PageSize + 1; i <= q.Page*q.PageSize && i <= f.total; i++ {
		items = append(items, i)
	}
	return shared.PageResult[int]{
		Items:      items,
		TotalCount: f.total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: shared.TotalPagesFor(f.total, q.PageSize),
	}, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func settle(t *testing.T, c *Controller[int]) State[int] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
	return c.State()
}

func TestController_StartFetchesFirstPage(t *testing.T) {
	src := newFakeSource(37)
	c := NewController(src.fetch)
	defer c.Close()

	assert.Equal(t, 0, src.callCount(), "nothing is fetched before Start")
	c.Start(context.Background())

	st := settle(t, c)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.Len(t, st.Data, 20)
	assert.Equal(t, 1, st.Data[0])
	assert.Equal(t, 37, st.TotalCount)
	assert.Equal(t, 2, st.TotalPages)
}

func TestController_QueryChangesResetPage(t *testing.T) {
	src := newFakeSource(100)
	c := NewController(src.fetch)
	defer c.Close()
	c.Start(context.Background())

	c.SetPage(3)
	assert.Equal(t, 3, settle(t, c).Query.Page)

	c.SetSearch("arroz")
	st := settle(t, c)
	assert.Equal(t, 1, st.Query.Page)
	assert.Equal(t, "arroz", st.Query.Search)

	c.SetPage(2)
	c.SetFilter("lowStock", true)
	assert.Equal(t, 1, settle(t, c).Query.Page)

	c.SetPage(4)
	c.SetPageSize(50)
	st = settle(t, c)
	assert.Equal(t, 1, st.Query.Page)
	assert.Equal(t, 50, st.Query.PageSize)

	c.SetPage(2)
	c.ClearFilters()
	st = settle(t, c)
	assert.Equal(t, 1, st.Query.Page)
	assert.Empty(t, st.Query.Search)
	assert.Empty(t, st.Query.Filters)
}

func TestController_PageResetProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		src := newFakeSource(500)
		c := NewController(src.fetch)
		c.Start(context.Background())

		lastResets := false
		for step := 0; step < 12; step++ {
			switch rng.Intn(3) {
			case 0:
				c.SetPage(rng.Intn(20) + 2)
				lastResets = false
			case 1:
				c.SetSearch([]string{"", "a", "ab"}[rng.Intn(3)])
				lastResets = true
			case 2:
				c.SetFilter("status", []string{"", "active"}[rng.Intn(2)])
				lastResets = true
			}
		}
		st := settle(t, c)
		if lastResets {
			assert.Equal(t, 1, st.Query.Page, "round %d", round)
		}
		c.Close()
	}
}

func TestController_SameQueryDoesNotRefetch(t *testing.T) {
	src := newFakeSource(10)
	c := NewController(src.fetch)
	defer c.Close()
	c.Start(context.Background())
	settle(t, c)

	c.SetFilter("status", "active")
	settle(t, c)
	calls := src.callCount()

	c.SetFilter("status", "active")
	c.SetPage(1)
	c.SetSearch("")
	settle(t, c)
	assert.Equal(t, calls, src.callCount())

	c.Refetch()
	settle(t, c)
	assert.Equal(t, calls+1, src.callCount())
	assert.True(t, src.calls[calls].Equal(src.calls[calls-1]), "refetch keeps the query")
}

func TestController_LastRequestWins(t *testing.T) {
	src := newFakeSource(100)
	slow := make(chan struct{})
	src.block[1] = slow

	c := NewController(src.fetch)
	defer c.Close()
	c.Start(context.Background())
	settle(t, c)

	c.SetPage(2) // call 1, held
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)
	c.SetPage(3) // call 2, returns immediately

	require.Eventually(t, func() bool { return src.callCount() == 3 }, time.Second, time.Millisecond)
	assert.Error(t, src.ctxs[1].Err(), "the superseded request is cancelled")

	close(slow)
	st := settle(t, c)
	assert.Equal(t, 3, st.Query.Page)
	assert.Equal(t, 41, st.Data[0], "the late page-2 response never overwrites page 3")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 41, c.State().Data[0])
}

func TestController_LoadingOnlyWhileInFlight(t *testing.T) {
	src := newFakeSource(5)
	gate := make(chan struct{})
	src.block[0] = gate

	c := NewController(src.fetch)
	defer c.Close()

	var mu sync.Mutex
	var seen []bool
	c.Subscribe(func(s State[int]) {
		mu.Lock()
		seen = append(seen, s.Loading)
		mu.Unlock()
	})

	c.Start(context.Background())
	assert.True(t, c.State().Loading)
	close(gate)
	assert.False(t, settle(t, c).Loading)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[0])
	assert.False(t, seen[len(seen)-1])
}

func TestController_ErrorPreservesData(t *testing.T) {
	src := newFakeSource(30)
	c := NewController(src.fetch)
	defer c.Close()
	c.Start(context.Background())
	before := settle(t, c)
	require.Len(t, before.Data, 20)

	src.setErr(errors.New("gateway timeout"))
	c.SetPage(2)
	st := settle(t, c)
	assert.Equal(t, "gateway timeout", st.ErrorMessage())
	assert.Equal(t, before.Data, st.Data, "data is kept on failure")
	assert.Equal(t, 2, st.Query.Page)

	src.setErr(errors.New(""))
	c.Refetch()
	assert.Equal(t, DefaultErrorMessage, settle(t, c).ErrorMessage())

	src.setErr(nil)
	c.Refetch()
	st = settle(t, c)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.ErrorMessage())
	assert.Len(t, st.Data, 10)
}

func TestController_CloseCancelsInFlight(t *testing.T) {
	src := newFakeSource(5)
	gate := make(chan struct{})
	src.block[0] = gate
	c := NewController(src.fetch)
	c.Start(context.Background())

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	go func() {
		<-src.ctxs[0].Done()
		close(gate)
	}()
	c.Close()

	assert.False(t, c.State().Loading)
	c.SetPage(2)
	c.Refetch()
	assert.Equal(t, 1, src.callCount(), "a closed controller issues nothing")
}

func TestController_WaitHonoursContext(t *testing.T) {
	src := newFakeSource(5)
	gate := make(chan struct{})
	src.block[0] = gate
	c := NewController(src.fetch)
	c.Start(context.Background())
	defer func() {
		close(gate)
		c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
}

func TestController_InitialQuery(t *testing.T) {
	src := newFakeSource(100)
	q := shared.NewQuery()
	q.PageSize = 50
	q.Filters.Set("storeCode", "T001")

	c := NewController(src.fetch, WithQuery(q), WithResource("inventory"))
	defer c.Close()
	c.Start(context.Background())
	settle(t, c)

	require.Equal(t, 1, src.callCount())
	assert.Equal(t, 50, src.calls[0].PageSize)
	assert.Equal(t, "T001", src.calls[0].Filters["storeCode"])
}
