// Package events keeps a bounded in-memory log of device events for the
// local status page and the live status stream.
package events

import (
	"sync"
	"time"
)

// EventType classifies a device event.
type EventType string

const (
	EventWifi     EventType = "wifi"
	EventBus      EventType = "bus"
	EventCommand  EventType = "command"
	EventTrial    EventType = "trial"
	EventRegister EventType = "register"
	EventUpdate   EventType = "update"
	EventReset    EventType = "reset"
	EventError    EventType = "error"
)

// Event is one entry in the device event log.
type Event struct {
	ID        int64     `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Details   string    `json:"details,omitempty"`
}

// Store holds events in memory with a fixed capacity (ring buffer).
type Store struct {
	mu      sync.RWMutex
	events  []Event
	maxSize int
	nextID  int64
}

// NewStore creates an event store with the given capacity.
func NewStore(maxSize int) *Store {
	return &Store{
		events:  make([]Event, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an event, evicting the oldest entry when full.
func (s *Store) Add(eventType EventType, success bool, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	event := Event{
		ID:        s.nextID,
		Type:      eventType,
		Timestamp: time.Now(),
		Success:   success,
		Details:   details,
	}

	if len(s.events) >= s.maxSize {
		s.events = s.events[1:]
	}
	s.events = append(s.events, event)
}

// GetAll returns all events, newest first.
func (s *Store) GetAll() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Event, len(s.events))
	for i, e := range s.events {
		result[len(s.events)-1-i] = e
	}
	return result
}

// GetSince returns events newer than the given ID, newest first.
func (s *Store) GetSince(lastID int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ID > lastID {
			result = append(result, s.events[i])
		} else {
			break
		}
	}
	return result
}

// LastID returns the ID of the most recent event.
func (s *Store) LastID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Count returns the number of retained events.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
