package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/models"
)

type authServiceImpl struct {
	logger   zerolog.Logger
	validate *validator.Validate
	delay    time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	delay time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		delay:    delay,
	}
}

// credentials mirrors AuthParams with validation tags. The min rule on
// Password counts runes, so "🙂🙂🙂" is three characters long.
type credentials struct {
	Mode     AuthMode `validate:"required,oneof=login register"`
	Email    string   `validate:"required"`
	Password string   `validate:"required,min=6"`
	Name     string   `validate:"required_if=Mode register"`
}

func (s *authServiceImpl) Authenticate(ctx context.Context, params AuthParams) (*models.User, error) {
	err := s.validateCredentials(params)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("mode", string(params.Mode)).
			Msg("credentials rejected")
		return nil, err
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.logger.Warn().
			Err(ctx.Err()).
			Str("email", params.Email).
			Msg("authentication cancelled")
		return nil, ctx.Err()
	case <-timer.C:
	}

	user := &models.User{
		Email: params.Email,
		Name:  params.Name,
	}
	if params.Mode == AuthModeLogin {
		user.Name = displayName(params.Email)
	}

	s.logger.Info().
		Str("email", user.Email).
		Str("mode", string(params.Mode)).
		Msg("authenticated")
	return user, nil
}

// validateCredentials reports missing fields before a short password,
// whatever order the fields fail in.
func (s *authServiceImpl) validateCredentials(params AuthParams) error {
	err := s.validate.Struct(credentials(params))
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate credentials: %w", err)
	}

	var tooShort, badMode bool
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			return ErrMissingFields
		case "min":
			tooShort = true
		case "oneof":
			badMode = true
		}
	}
	if badMode {
		return ErrInvalidAuthMode
	}
	if tooShort {
		return ErrPasswordTooShort
	}
	return err
}

// displayName returns the local part of an email address, or the whole
// string when it has no "@".
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
