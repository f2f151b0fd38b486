package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/dashboard"
	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/store"
)

type sessionServiceImpl struct {
	logger     zerolog.Logger
	store      *store.Store
	auth       AuthService
	issuer     string
	signingKey []byte
	seedDemo   bool
}

func NewSessionService(
	logger zerolog.Logger,
	sessionStore *store.Store,
	authService AuthService,
	issuer string,
	signingKey []byte,
	seedDemo bool,
) SessionService {
	return &sessionServiceImpl{
		logger:     logger,
		store:      sessionStore,
		auth:       authService,
		issuer:     issuer,
		signingKey: signingKey,
		seedDemo:   seedDemo,
	}
}

func (s *sessionServiceImpl) Start(ctx context.Context) (*StartResult, error) {
	sessionUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, err
	}
	sessionID := sessionUUID.String()

	err = s.store.Insert(sessionID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to insert session")
		return nil, err
	}

	token, err := s.signToken(sessionID)
	if err != nil {
		s.store.Remove(sessionID)
		s.logger.Error().
			Err(err).
			Msg("failed to sign session token")
		return nil, err
	}

	var session models.Session
	_ = s.store.With(sessionID, func(e *store.Entry) error {
		session = e.Snapshot()
		return nil
	})

	s.logger.Debug().
		Str("session_id", sessionID).
		Msg("started session")
	return &StartResult{
		Session: session,
		Token:   token,
	}, nil
}

func (s *sessionServiceImpl) Resolve(ctx context.Context, token string) (*models.Session, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected session token")
		return nil, err
	}

	var session models.Session
	err = s.store.With(sessionID, func(e *store.Entry) error {
		session = e.Snapshot()
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, sessionID)
	}
	return &session, nil
}

func (s *sessionServiceImpl) Login(ctx context.Context, sessionID string, params AuthParams) (*models.User, error) {
	var epoch uint64
	err := s.store.With(sessionID, func(e *store.Entry) error {
		switch {
		case e.User != nil:
			return ErrAlreadySignedIn
		case e.Pending:
			return ErrAuthPending
		}
		e.Pending = true
		epoch = e.AuthEpoch
		return nil
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("login rejected")
		return nil, s.mapStoreError(err, sessionID)
	}

	user, authErr := s.auth.Authenticate(ctx, params)

	err = s.store.With(sessionID, func(e *store.Entry) error {
		e.Pending = false
		if authErr != nil {
			return nil
		}
		if e.AuthEpoch != epoch {
			return ErrAuthSuperseded
		}
		e.User = user
		e.Board = s.newBoard()
		return nil
	})
	if authErr != nil {
		return nil, authErr
	}
	if errors.Is(err, ErrAuthSuperseded) {
		s.logger.Info().
			Str("session_id", sessionID).
			Msg("discarded authentication finished after logout")
		return nil, err
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("session vanished during authentication")
		return nil, s.mapStoreError(err, sessionID)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("email", user.Email).
		Msg("logged in")
	return user, nil
}

func (s *sessionServiceImpl) Logout(ctx context.Context, sessionID string) error {
	err := s.store.With(sessionID, func(e *store.Entry) error {
		e.User = nil
		e.Board = dashboard.Board{}
		e.AuthEpoch++
		return nil
	})
	if err != nil {
		return s.mapStoreError(err, sessionID)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Msg("logged out")
	return nil
}

func (s *sessionServiceImpl) Notify(ctx context.Context, sessionID string, notices ...models.Notice) error {
	err := s.store.With(sessionID, func(e *store.Entry) error {
		e.Notices = append(e.Notices, notices...)
		return nil
	})
	return s.mapStoreError(err, sessionID)
}

func (s *sessionServiceImpl) TakeNotices(ctx context.Context, sessionID string) ([]models.Notice, error) {
	var notices []models.Notice
	err := s.store.With(sessionID, func(e *store.Entry) error {
		notices, e.Notices = e.Notices, nil
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, sessionID)
	}
	return notices, nil
}

func (s *sessionServiceImpl) newBoard() dashboard.Board {
	if s.seedDemo {
		return dashboard.Demo()
	}
	return dashboard.New()
}

func (s *sessionServiceImpl) mapStoreError(err error, sessionID string) error {
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug().
			Str("session_id", sessionID).
			Msg("session not found")
		return ErrSessionNotFound
	}
	return err
}

func (s *sessionServiceImpl) signToken(sessionID string) (string, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       tokenUUID.String(),
		Issuer:   s.issuer,
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *sessionServiceImpl) parseToken(token string) (string, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSessionJWT, err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidSessionJWT
	}
	return claims.Subject, nil
}
