package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every authentication failure so the
// caller cannot tell an unknown email from a wrong password.
var ErrInvalidCredentials = apperr.Auth("invalid credentials")

// dummyHash keeps the miss path of Authenticate doing a bcrypt comparison,
// so timing does not reveal whether the email exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Bio       string
	AvatarURL string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	store store.UserStore
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(st store.UserStore, log zerolog.Logger) *UserService {
	return &UserService{store: st, log: log}
}

// Register creates a new user account, hashing the password. The existence
// pre-checks give a friendly error for the common case; the store's unique
// constraints remain authoritative, so two racing registrations with the
// same email still resolve to one winner and one constraint violation.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := validateRegisterInput(in); err != nil {
		return models.User{}, err
	}

	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return models.User{}, apperr.Constraint("username", "username already taken")
	} else if !apperr.IsNotFound(err) {
		return models.User{}, err
	}
	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return models.User{}, apperr.Constraint("email", "email already registered")
	} else if !apperr.IsNotFound(err) {
		return models.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashed),
		FullName:     in.FullName,
		Bio:          in.Bio,
		AvatarURL:    in.AvatarURL,
		IsActive:     true,
	}
	if err := s.store.InsertUser(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown email and wrong
// password produce the identical error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Update applies a partial update. Only non-nil fields change; a supplied
// password is re-hashed before it is persisted, never stored as given.
func (s *UserService) Update(ctx context.Context, id int64, upd models.UserUpdate) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if upd.Username != nil {
		if l := len(*upd.Username); l < models.UsernameMinLen || l > models.UsernameMaxLen {
			return models.User{}, apperr.Validation("username must be %d-%d characters", models.UsernameMinLen, models.UsernameMaxLen)
		}
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		if l := len(*upd.Email); l < models.EmailMinLen || l > models.EmailMaxLen {
			return models.User{}, apperr.Validation("email must be %d-%d characters", models.EmailMinLen, models.EmailMaxLen)
		}
		user.Email = *upd.Email
	}
	if upd.FullName != nil {
		if len(*upd.FullName) > models.FullNameMaxLen {
			return models.User{}, apperr.Validation("full name must be at most %d characters", models.FullNameMaxLen)
		}
		user.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		if len(*upd.Bio) > models.BioMaxLen {
			return models.User{}, apperr.Validation("bio must be at most %d characters", models.BioMaxLen)
		}
		user.Bio = *upd.Bio
	}
	if upd.AvatarURL != nil {
		if len(*upd.AvatarURL) > models.AvatarURLMaxLen {
			return models.User{}, apperr.Validation("avatar url must be at most %d characters", models.AvatarURLMaxLen)
		}
		user.AvatarURL = *upd.AvatarURL
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.Password != nil {
		if len(*upd.Password) < models.PasswordMinLen {
			return models.User{}, apperr.Validation("password must be at least %d characters", models.PasswordMinLen)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.store.UpdateUser(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.log.Info().Int64("user_id", id).Msg("User updated")

	user.PasswordHash = ""
	return user, nil
}

// Delete removes a user account and cascades to their tasks. Deleting an
// absent user reports false, not an error.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Int64("user_id", id).Msg("User deleted")
	}
	return deleted, nil
}

func validateRegisterInput(in RegisterInput) error {
	if l := len(in.Username); l < models.UsernameMinLen || l > models.UsernameMaxLen {
		return apperr.Validation("username must be %d-%d characters", models.UsernameMinLen, models.UsernameMaxLen)
	}
	if l := len(in.Email); l < models.EmailMinLen || l > models.EmailMaxLen {
		return apperr.Validation("email must be %d-%d characters", models.EmailMinLen, models.EmailMaxLen)
	}
	if in.Password == "" {
		return apperr.Validation("password must not be empty")
	}
	if len(in.FullName) > models.FullNameMaxLen {
		return apperr.Validation("full name must be at most %d characters", models.FullNameMaxLen)
	}
	if len(in.Bio) > models.BioMaxLen {
		return apperr.Validation("bio must be at most %d characters", models.BioMaxLen)
	}
	if len(in.AvatarURL) > models.AvatarURLMaxLen {
		return apperr.Validation("avatar url must be at most %d characters", models.AvatarURLMaxLen)
	}
	return nil
}
