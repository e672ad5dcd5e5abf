package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aniladanir/portfolio-contact-service/internal/domain"
	messageRepo "github.com/aniladanir/portfolio-contact-service/internal/repository/message"
	"github.com/google/uuid"
)

type ContactService interface {
	Create(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
	List(ctx context.Context) ([]domain.ContactMessage, error)
	Get(ctx context.Context, id string) (*domain.ContactMessage, error)
	Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.ContactMessage, error)
	Delete(ctx context.Context, id string) (*domain.ContactMessage, error)
}

type service struct {
	messageRepo messageRepo.Repository
	logger      *slog.Logger
}

func NewContactService(messageRepo messageRepo.Repository, logger *slog.Logger) ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// Create validates the submission and stores it with status 'new'
func (s *service) Create(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	msg, err := domain.NewContactMessage(name, email, subject, message)
	if err != nil {
		return nil, err
	}

	stored, err := s.messageRepo.Insert(ctx, msg)
	if err != nil {
		s.logFault("failed to save contact message", err)
		return nil, err
	}

	s.logger.Info("contact message received", slog.String("id", stored.ID))
	return stored, nil
}

// List returns all messages, newest first
func (s *service) List(ctx context.Context) ([]domain.ContactMessage, error) {
	msgs, err := s.messageRepo.ListAll(ctx)
	if err != nil {
		s.logFault("failed to fetch messages", err)
		return nil, err
	}
	return msgs, nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}

	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		s.logFault("failed to fetch message", err, slog.String("id", id))
		return nil, err
	}
	return msg, nil
}

// Update validates the patch before touching the store, so an invalid status
// never reaches the stored record
func (s *service) Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.ContactMessage, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}

	msg, err := s.messageRepo.Update(ctx, id, patch)
	if err != nil {
		s.logFault("failed to update message", err, slog.String("id", id))
		return nil, err
	}
	return msg, nil
}

func (s *service) Delete(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}

	msg, err := s.messageRepo.DeleteByID(ctx, id)
	if err != nil {
		s.logFault("failed to delete message", err, slog.String("id", id))
		return nil, err
	}

	s.logger.Info("contact message deleted", slog.String("id", id))
	return msg, nil
}

// logFault logs storage faults only; not-found is an expected outcome
func (s *service) logFault(msg string, err error, attrs ...any) {
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	s.logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
}

// validID reports whether id matches the store's key format
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
