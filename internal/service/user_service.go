package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type SignupInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password1 string
	Password2 string
}

// ErrInvalidCredentials is returned for an unknown username or a wrong password.
var ErrInvalidCredentials = models.NewUnauthorizedError(
	"Please enter a correct username and password. Note that both fields may be case-sensitive.")

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Signup validates the registration form and creates the account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fields := models.FormErrors{}
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields.Add("username", err.Error())
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			fields.Add("email", err.Error())
		}
	}
	if len(in.FirstName) > 150 {
		fields.Add("first_name", "Ensure this value has at most 150 characters.")
	}
	if len(in.LastName) > 150 {
		fields.Add("last_name", "Ensure this value has at most 150 characters.")
	}
	switch {
	case in.Password1 == "":
		fields.Add("password1", validation.ErrRequired.Error())
	case in.Password1 != in.Password2:
		fields.Add("password2", "The two password fields didn't match.")
	default:
		if err := validation.ValidatePassword(in.Password1, in.Username); err != nil {
			fields.Add("password2", err.Error())
		}
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password1), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
