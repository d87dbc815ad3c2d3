package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"bulletinboard/internal/model"
	"bulletinboard/internal/repository"
	"bulletinboard/internal/validation"
)

// UserService handles business logic for member accounts
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// ValidationError carries the readable validator message of a rejected
// request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Register creates a new member account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, &ValidationError{Message: validation.FormatValidationError(err)}
	}

	exists, err := s.repo.ExistsByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}
	if exists {
		return nil, model.ErrNicknameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Nickname:       req.Nickname,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
		PhoneNumber:    req.PhoneNumber,
		ZipCode:        req.ZipCode,
		AddressBase:    req.AddressBase,
		AddressDetail:  req.AddressDetail,
		AddressExtra:   req.AddressExtra,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] Registered user %d (%s)", user.ID, user.Nickname)
	return user, nil
}

// Login authenticates a member with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a member by id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// NicknameAvailable reports whether nickname can still be registered.
func (s *UserService) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	if !validation.IsValidNickname(nickname) {
		return false, nil
	}
	exists, err := s.repo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// EmailAvailable reports whether email can still be registered.
func (s *UserService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	if !validation.IsValidEmail(email) {
		return false, nil
	}
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
