package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/services"
)

func newRoom(code string) *models.Room {
	return models.NewRoom(code, "id-"+code, models.ModeQuick, 2)
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := services.NewRegistry(services.NewMetrics())

	calls := 0
	room, created := r.GetOrCreate("AAAA", func() *models.Room {
		calls++
		return newRoom("AAAA")
	})
	require.True(t, created)
	require.NotNil(t, room)

	again, created := r.GetOrCreate("AAAA", func() *models.Room {
		calls++
		return newRoom("AAAA")
	})
	assert.False(t, created)
	assert.Same(t, room, again, "same code resolves to the same room")
	assert.Equal(t, 1, calls, "create runs only for the first caller")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Delete(t *testing.T) {
	r := services.NewRegistry(services.NewMetrics())
	r.GetOrCreate("AAAA", func() *models.Room { return newRoom("AAAA") })

	r.Delete("AAAA")
	_, ok := r.Get("AAAA")
	assert.False(t, ok)
	assert.Zero(t, r.Len())

	// Deleting twice must not underflow anything.
	r.Delete("AAAA")
	assert.Zero(t, r.Len())
}

func TestRegistry_Stale(t *testing.T) {
	r := services.NewRegistry(services.NewMetrics())
	old, _ := r.GetOrCreate("OLDR", func() *models.Room { return newRoom("OLDR") })
	fresh, _ := r.GetOrCreate("NEWR", func() *models.Room { return newRoom("NEWR") })

	old.Mu.Lock()
	old.LastActivity = time.Now().Add(-time.Hour)
	old.Mu.Unlock()
	fresh.Touch()

	stale := r.Stale(30 * time.Minute)
	require.Len(t, stale, 1)
	assert.Equal(t, "OLDR", stale[0].Code)
}

func TestRegistry_RunSweeper(t *testing.T) {
	r := services.NewRegistry(services.NewMetrics())
	room, _ := r.GetOrCreate("GONE", func() *models.Room { return newRoom("GONE") })
	room.Mu.Lock()
	room.LastActivity = time.Now().Add(-time.Hour)
	room.Mu.Unlock()

	evicted := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.RunSweeper(ctx, 10*time.Millisecond, 30*time.Minute, func(rm *models.Room) {
		evicted <- rm.Code
	})

	select {
	case code := <-evicted:
		assert.Equal(t, "GONE", code)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never evicted the stale room")
	}

	require.Eventually(t, func() bool {
		_, ok := r.Get("GONE")
		return !ok
	}, 2*time.Second, 5*time.Millisecond, "stale room must be removed after eviction")
}
