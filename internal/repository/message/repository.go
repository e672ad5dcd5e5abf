package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aniladanir/portfolio-contact-service/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the message store. Implementations return domain.ErrNotFound
// for unknown ids and wrap any other failure with domain.ErrStorage.
type Repository interface {
	Insert(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error)
	ListAll(ctx context.Context) ([]domain.ContactMessage, error)
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.ContactMessage, error)
	DeleteByID(ctx context.Context, id string) (*domain.ContactMessage, error)
}

type repo struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) Repository {
	return &repo{db: db}
}

// Insert assigns a fresh id and timestamps and persists the message
func (r *repo) Insert(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	stored := prepareInsert(msg, time.Now())
	if err := r.db.WithContext(ctx).Create(stored).Error; err != nil {
		return nil, storageErr(err)
	}
	return stored, nil
}

// ListAll returns every message, newest first
func (r *repo) ListAll(ctx context.Context) ([]domain.ContactMessage, error) {
	messages := make([]domain.ContactMessage, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return messages, nil
}

func (r *repo) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		return nil, storageErr(err)
	}
	return &msg, nil
}

// Update merges the patch into the stored row. The row is locked for the
// duration of the transaction so concurrent writes to the same id serialize.
func (r *repo) Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&msg, "id = ?", id).Error; err != nil {
			return err
		}

		msg.Apply(patch, time.Now())

		return tx.Save(&msg).Error
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return &msg, nil
}

// DeleteByID removes the row and returns it as it was before removal
func (r *repo) DeleteByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&msg, "id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&domain.ContactMessage{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return &msg, nil
}

// prepareInsert copies msg and stamps the store-owned fields
func prepareInsert(msg *domain.ContactMessage, now time.Time) *domain.ContactMessage {
	stored := *msg
	stored.ID = uuid.NewString()
	if stored.Status == "" {
		stored.Status = domain.StatusNew
	}
	now = domain.Timestamp(now)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return &stored
}

func storageErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
