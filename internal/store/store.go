package store

import (
	"errors"
	"fmt"
	"time"

	"uk.co.dudmesh.groupchat/internal/model"
)

// Log is one group's append-only message sequence. Implementations must make
// Append and Snapshot atomic with respect to each other.
type Log interface {
	Append(message model.Message) error
	Snapshot() ([]model.Message, error)
	Len() (int, error)
	Close() error
}

// Backend opens a fresh, empty log for a group.
type Backend func(groupID model.GroupID) (Log, error)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

func BackendFor(name string) (Backend, error) {
	switch name {
	case BackendMemory, "":
		return MemoryBackend, nil
	case BackendSQLite:
		return SQLiteBackend, nil
	}
	return nil, fmt.Errorf("unknown store backend: %s", name)
}

// Store holds one log per group. The group set, and so the map, is fixed at
// construction; each log carries its own lock so groups never contend.
type Store struct {
	logs map[model.GroupID]Log
	now  func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New opens a log for every group and seeds it with the welcome message.
func New(groupIDs []model.GroupID, backend Backend, welcome model.Message, opts ...Option) (*Store, error) {
	s := &Store{
		logs: make(map[model.GroupID]Log, len(groupIDs)),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, id := range groupIDs {
		log, err := backend(id)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("opening log for group %s: %w", id, err)
		}
		s.logs[id] = log
		if _, err := s.Append(id, welcome); err != nil {
			s.Close()
			return nil, fmt.Errorf("seeding group %s: %w", id, err)
		}
	}
	return s, nil
}

// Append commits message to the tail of the group's log, assigning its ID and
// creation time.
func (s *Store) Append(groupID model.GroupID, message model.Message) (model.Message, error) {
	log, ok := s.logs[groupID]
	if !ok {
		return model.Message{}, model.ErrorInvalidGroup
	}

	message.ID = model.MessageID(model.CreateID())
	message.CreatedAt = s.now().Format(model.TimeLayout)

	if err := log.Append(message); err != nil {
		return model.Message{}, fmt.Errorf("appending to group %s: %w", groupID, err)
	}
	return message, nil
}

// Snapshot returns a copy of the group's full log in insertion order.
func (s *Store) Snapshot(groupID model.GroupID) ([]model.Message, error) {
	log, ok := s.logs[groupID]
	if !ok {
		return nil, model.ErrorInvalidGroup
	}
	messages, err := log.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("reading group %s: %w", groupID, err)
	}
	return messages, nil
}

func (s *Store) Len(groupID model.GroupID) (int, error) {
	log, ok := s.logs[groupID]
	if !ok {
		return 0, model.ErrorInvalidGroup
	}
	return log.Len()
}

func (s *Store) Close() error {
	var errs []error
	for id, log := range s.logs {
		if err := log.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing group %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
