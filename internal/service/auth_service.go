package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lms-be/internal/config"
	"lms-be/internal/dto"
	"lms-be/internal/entity"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/mailer"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/contract"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionId string) error
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	SessionAlive(ctx context.Context, sessionId string) (bool, error)
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	sessions     contract.SessionRepository
	emailService mailer.IEmailService
	publisher    events.Publisher
	logger       logger.ILogger
	cfg          config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	sessions contract.SessionRepository,
	emailService mailer.IEmailService,
	publisher events.Publisher,
	log logger.ILogger,
	cfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		sessions:     sessions,
		emailService: emailService,
		publisher:    publisher,
		logger:       log,
		cfg:          cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.ErrConflict("username already taken")
	}

	// The first account administers the platform.
	count, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	role := entity.UserRoleUser
	if count == 0 {
		role = entity.UserRoleAdmin
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, serverutils.ErrConflict("username already taken")
		}
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{
		"user_id": user.Id.String(),
		"role":    string(user.Role),
	})
	s.publish(ctx, events.UserRegistered(user.Id, user.Username, string(user.Role)))

	if user.Email != nil {
		go func(email, name string) {
			if err := s.emailService.SendWelcome(email, name); err != nil && !errors.Is(err, mailer.ErrMailerDisabled) {
				s.logger.Warn("AUTH", "Welcome mail failed", map[string]interface{}{"error": err.Error()})
			}
		}(*user.Email, user.Username)
	}

	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.ErrUnauthorized(ErrInvalidCredentials.Error())
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.ErrUnauthorized(ErrInvalidCredentials.Error())
	}

	now := time.Now()
	session := &entity.Session{
		Id:        uuid.NewString(),
		UserId:    user.Id,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := serverutils.GenerateToken(s.cfg.JwtSecret, serverutils.Claims{
		UserID:    user.Id.String(),
		Role:      string(user.Role),
		SessionID: session.Id,
	}, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserLoggedIn(user.Id, session.Id))

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		User:        *toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionId string) error {
	if sessionId == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionId)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.ErrNotFound("user not found")
	}
	return toUserResponse(user), nil
}

func (s *authService) SessionAlive(ctx context.Context, sessionId string) (bool, error) {
	if sessionId == "" {
		return false, nil
	}
	session, err := s.sessions.Get(ctx, sessionId)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

func (s *authService) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("AUTH", "Event publish failed", map[string]interface{}{
			"event": ev.EventType(),
			"error": err.Error(),
		})
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
