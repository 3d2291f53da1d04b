package service

import (
	"context"
	"errors"

	"github.com/Dan9191/user-service/internal/models"
	"github.com/Dan9191/user-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// ErrEmailExists reports a write rejected by the unique email constraint
var ErrEmailExists = errors.New("Email already exists")

// UserStore is the storage the service drives
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.Row, error)
	CreateUser(ctx context.Context, fields map[string]any) (int64, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
	FindUserByID(ctx context.Context, id any) (models.Row, error)
}

// Service handles business logic
type Service struct {
	repo UserStore
	log  *logrus.Logger
}

// NewService initializes a new service
func NewService(repo UserStore, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListUsers returns all users as stored, password included
func (s *Service) ListUsers(ctx context.Context) ([]models.Row, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to list users")
		return nil, err
	}
	return users, nil
}

// CreateUser inserts fields, reads the new row back and strips the password
func (s *Service) CreateUser(ctx context.Context, fields map[string]any) (models.Row, error) {
	id, err := s.repo.CreateUser(ctx, fields)
	if err != nil {
		// Matches on the message, not StorageError.Code, so driver errors
		// never take this branch and duplicates on create surface as 500.
		if err.Error() == repository.CodeDuplicateEntry {
			return nil, ErrEmailExists
		}
		s.log.WithError(err).Error("Failed to create user")
		return nil, err
	}

	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Failed to read back created user")
		return nil, err
	}

	s.log.WithField("id", id).Info("User created")
	return user.WithoutPassword(), nil
}

// UpdateUser overwrites the row with the given id, reads it back and strips the password
func (s *Service) UpdateUser(ctx context.Context, id string, fields map[string]any) (models.Row, error) {
	if err := s.repo.UpdateUser(ctx, id, fields); err != nil {
		var se *repository.StorageError
		if errors.As(err, &se) && se.Code == repository.CodeDuplicateEntry {
			return nil, ErrEmailExists
		}
		s.log.WithError(err).WithField("id", id).Error("Failed to update user")
		return nil, err
	}

	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Failed to read back updated user")
		return nil, err
	}

	s.log.WithField("id", id).Info("User updated")
	return user.WithoutPassword(), nil
}
