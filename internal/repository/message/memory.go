package repository

import (
	"context"
	"sync"
	"time"

	"github.com/aniladanir/portfolio-contact-service/internal/domain"
)

type memoryRepo struct {
	mtx      sync.RWMutex
	messages map[string]domain.ContactMessage
	now      func() time.Time
}

// NewMemoryMessageRepository returns a process-local store. Nothing survives a restart.
func NewMemoryMessageRepository() Repository {
	return &memoryRepo{
		messages: make(map[string]domain.ContactMessage),
		now:      time.Now,
	}
}

func (r *memoryRepo) Insert(_ context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	stored := prepareInsert(msg, r.now())

	r.mtx.Lock()
	r.messages[stored.ID] = *stored
	r.mtx.Unlock()

	return stored, nil
}

func (r *memoryRepo) ListAll(_ context.Context) ([]domain.ContactMessage, error) {
	r.mtx.RLock()
	messages := make([]domain.ContactMessage, 0, len(r.messages))
	for _, m := range r.messages {
		messages = append(messages, m)
	}
	r.mtx.RUnlock()

	sortNewestFirst(messages)

	return messages, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.ContactMessage, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, patch domain.MessagePatch) (*domain.ContactMessage, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	msg.Apply(patch, r.now())
	r.messages[id] = msg

	return &msg, nil
}

func (r *memoryRepo) DeleteByID(_ context.Context, id string) (*domain.ContactMessage, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.messages, id)

	return &msg, nil
}
