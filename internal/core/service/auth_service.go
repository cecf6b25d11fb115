package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

const msgMissingCredentials = "Please provide both username and birthdate."

// AuthService implements registration and login against the users collection.
// Credentials are compared as plain strings; there is no hashing.
type AuthService struct {
	store  ports.DocumentStore
	ids    IDSource
	logger zerolog.Logger
}

func NewAuthService(store ports.DocumentStore, ids IDSource, logger zerolog.Logger) *AuthService {
	return &AuthService{store: store, ids: ids, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, name, birthdate string) (*domain.User, error) {
	if name == "" || birthdate == "" {
		return nil, domain.NewValidationError("name", msgMissingCredentials)
	}

	doc, err := s.store.LoadForWrite(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("register failed")
		return nil, domain.NewUpstreamError(domain.StageLoad, err)
	}
	if _, exists := doc.FindUserByCredentials(name, birthdate); exists {
		return nil, domain.ErrUserExists
	}

	user := domain.User{ID: s.ids.NextID(), Name: name, Birthdate: birthdate}
	doc.Users = append(doc.Users, user)
	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("register failed")
		return nil, domain.NewUpstreamError(domain.StageSave, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, name, birthdate string) (*domain.User, error) {
	if name == "" || birthdate == "" {
		return nil, domain.NewValidationError("name", msgMissingCredentials)
	}

	doc := s.store.Load(ctx)
	user, ok := doc.FindUserByCredentials(name, birthdate)
	if !ok {
		s.logger.Info().Str("name", name).Msg("login failed: invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	found := *user
	s.logger.Info().Str("user_id", found.ID).Msg("user logged in")
	return &found, nil
}
