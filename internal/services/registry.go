package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
)

// Registry owns the room-code → Room map. It is constructor-injected into
// the coordinator (no process-wide singleton) so multiple coordinators can
// be tested in isolation.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*models.Room
	metrics *Metrics
}

func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		rooms:   make(map[string]*models.Room),
		metrics: metrics,
	}
}

// Get returns the room for a code if it exists.
func (r *Registry) Get(code string) (*models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// GetOrCreate returns the existing room or lazily creates one via create.
// The second return reports whether the room was created by this call.
func (r *Registry) GetOrCreate(code string, create func() *models.Room) (*models.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[code]; ok {
		return room, false
	}
	room := create()
	r.rooms[code] = room
	if r.metrics != nil {
		r.metrics.IncrementRooms()
	}
	return room, true
}

// Delete removes the room for a code.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; ok {
		delete(r.rooms, code)
		if r.metrics != nil {
			r.metrics.DecrementRooms()
		}
	}
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Stale returns rooms whose last activity is older than ttl.
func (r *Registry) Stale(ttl time.Duration) []*models.Room {
	now := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []*models.Room
	for _, room := range r.rooms {
		room.Mu.RLock()
		idle := now.Sub(room.LastActivity)
		room.Mu.RUnlock()
		if idle > ttl {
			stale = append(stale, room)
		}
	}
	return stale
}

// RunSweeper periodically evicts rooms idle longer than ttl, invoking
// onEvict (notification fan-out) before removal. Independent of move
// processing; it never takes a room's move guard.
func (r *Registry) RunSweeper(ctx context.Context, interval, ttl time.Duration, onEvict func(*models.Room)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, room := range r.Stale(ttl) {
				log.Printf("⚠️  Sweeping stale room %s (idle > %s)", room.Code, ttl)
				if onEvict != nil {
					onEvict(room)
				}
				r.Delete(room.Code)
			}
		case <-ctx.Done():
			return
		}
	}
}
