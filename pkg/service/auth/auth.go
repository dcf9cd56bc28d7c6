// Package auth handles user registration and login. Password hashing happens
// here, at the registration boundary; the rest of the core only ever compares
// credentials as supplied.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/bankbr/baas/pkg/repository"
	"github.com/bankbr/baas/pkg/utils"
	"github.com/go-playground/validator"
)

// RegisterInput is the validated registration request.
type RegisterInput struct {
	Email    string `validate:"required,email"`
	CPF      string `validate:"required,len=11,numeric"`
	Password string `validate:"required,min=8"`
}

// Service registers users and verifies their credentials.
type Service struct {
	uow      repository.UnitOfWork
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates an auth Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{
		uow:      uow,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register creates a user with a bcrypt-hashed password. Email and CPF must
// be unique; violations surface domain.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, input RegisterInput) (u *user.User, err error) {
	log := s.logger.With("context", "Register", "email", input.Email)
	if err = s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid registration input: %w", err)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		taken, err := users.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email already in use: %w", domain.ErrAlreadyExists)
		}
		taken, err = users.ExistsByCPF(ctx, input.CPF)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("cpf already in use: %w", domain.ErrAlreadyExists)
		}
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			return err
		}
		u, err = user.New(input.Email, input.CPF, hash)
		if err != nil {
			return err
		}
		return users.Create(ctx, u)
	})
	if err != nil {
		u = nil
		log.Error("registration failed", "error", err)
		return
	}
	log.Info("user registered", "userID", u.ID)
	return
}

// Login verifies the email/password pair against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, email, password string) (u *user.User, err error) {
	log := s.logger.With("context", "Login", "email", email)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if !utils.CheckPasswordHash(password, u.PasswordHash) {
			return domain.ErrInvalidCredential
		}
		return nil
	})
	if err != nil {
		u = nil
		log.Error("login failed", "error", err)
		return
	}
	log.Info("login successful", "userID", u.ID)
	return
}
