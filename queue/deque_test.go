package queue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanrat/parsort/queue"
)

func TestDequeEmpty(t *testing.T) {
	d := queue.NewDeque[int](0)
	require.Equal(t, 0, d.Len())

	_, ok := d.PopBottom()
	assert.False(t, ok, "PopBottom on empty deque")
	_, ok = d.StealTop()
	assert.False(t, ok, "StealTop on empty deque")
}

func TestDequeOwnerLIFO(t *testing.T) {
	d := queue.NewDeque[int](4)
	for i := 1; i <= 20; i++ {
		d.PushBottom(i)
	}
	require.Equal(t, 20, d.Len())

	for i := 20; i > 0; i-- {
		x, ok := d.PopBottom()
		require.True(t, ok)
		if x != i {
			t.Errorf("%d.th pop got %d; want %d", 21-i, x, i)
		}
	}
	assert.Equal(t, 0, d.Len())
}

func TestDequeThiefFIFO(t *testing.T) {
	d := queue.NewDeque[int](4)
	for i := 1; i <= 100; i++ {
		d.PushBottom(i)
	}
	for i := 1; i <= 100; i++ {
		x, ok := d.StealTop()
		require.True(t, ok)
		if x != i {
			t.Errorf("%d.th steal got %d; want %d", i, x, i)
		}
	}
	assert.Equal(t, 0, d.Len())
}

func TestDequeMixed(t *testing.T) {
	d := queue.NewDeque[int](0)
	for i := 1; i <= 80; i++ {
		d.PushBottom(i)
	}
	// steal enough to trigger compaction, then keep using both ends
	for i := 1; i <= 50; i++ {
		x, _ := d.StealTop()
		require.Equal(t, i, x)
	}
	d.PushBottom(81)
	x, ok := d.PopBottom()
	require.True(t, ok)
	assert.Equal(t, 81, x)
	x, ok = d.StealTop()
	require.True(t, ok)
	assert.Equal(t, 51, x)
	assert.Equal(t, 29, d.Len())
}

func TestDequeConcurrent(t *testing.T) {
	const n = 10000
	d := queue.NewDeque[int](n)
	for i := 0; i < n; i++ {
		d.PushBottom(i)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int]int, n)
	)
	take := func(pop func() (int, bool)) {
		defer wg.Done()
		for {
			x, ok := pop()
			if !ok {
				return
			}
			mu.Lock()
			seen[x]++
			mu.Unlock()
		}
	}
	wg.Add(4)
	go take(d.PopBottom)
	go take(d.StealTop)
	go take(d.StealTop)
	go take(d.StealTop)
	wg.Wait()

	require.Len(t, seen, n)
	for x, c := range seen {
		if c != 1 {
			t.Fatalf("item %d taken %d times", x, c)
		}
	}
}
