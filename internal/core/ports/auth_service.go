package ports

import (
	"context"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// AuthService registers users and checks name/birthdate credentials.
type AuthService interface {
	Register(ctx context.Context, name, birthdate string) (*domain.User, error)
	Login(ctx context.Context, name, birthdate string) (*domain.User, error)
}
