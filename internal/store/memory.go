package store

import (
	"sync"

	"uk.co.dudmesh.groupchat/internal/model"
)

type memoryLog struct {
	mu       sync.RWMutex
	messages []model.Message
}

func MemoryBackend(model.GroupID) (Log, error) {
	return &memoryLog{}, nil
}

func (l *memoryLog) Append(message model.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
	return nil
}

func (l *memoryLog) Snapshot() ([]model.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out, nil
}

func (l *memoryLog) Len() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages), nil
}

func (l *memoryLog) Close() error {
	return nil
}
