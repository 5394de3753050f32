package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gun2717/StudentManagement/internal/storage"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/validation"
)

// AuthService verifies credentials and manages accounts. Passwords are
// stored as bcrypt hashes only.
type AuthService struct {
	users storage.UserStorage
	log   *slog.Logger
	cost  int

	// dummyHash is compared against when the username is unknown, so an
	// unknown user costs as much time as a wrong password.
	dummyHash []byte
}

// NewAuthService wires an AuthService using bcrypt.DefaultCost.
func NewAuthService(users storage.UserStorage, log *slog.Logger) *AuthService {
	return newAuthService(users, log, bcrypt.DefaultCost)
}

func newAuthService(users storage.UserStorage, log *slog.Logger, cost int) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		panic("service: bcrypt: " + err.Error())
	}
	return &AuthService{users: users, log: log, cost: cost, dummyHash: dummy}
}

func invalidCredentials(op string) error {
	return types.NewDomainError(op, types.ErrInvalidCredentials, "invalid username or password")
}

// Authenticate checks username and password without recording a login.
// Unknown users and wrong passwords both yield types.ErrInvalidCredentials;
// a correct password on a disabled account yields types.ErrAccountLocked.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !types.IsNotFound(err) {
			return types.User{}, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return types.User{}, invalidCredentials("Authenticate")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return types.User{}, invalidCredentials("Authenticate")
		}
		return types.User{}, err
	}

	if !u.Active {
		return types.User{}, types.NewDomainError("Authenticate", types.ErrAccountLocked, "account is locked")
	}
	return u, nil
}

// Login authenticates and stamps the account's last login time.
func (s *AuthService) Login(ctx context.Context, username, password string) (types.User, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.log.Warn("login failed", slog.String("username", username), slog.String("error", err.Error()))
		return types.User{}, err
	}
	if err := s.users.UpdateLastLogin(ctx, username); err != nil {
		return types.User{}, err
	}

	// Re-read so the returned user carries the new last login.
	u, err = s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return types.User{}, err
	}
	s.log.Info("user logged in", slog.String("username", username))
	return u, nil
}

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Role     types.Role `json:"role"`
}

// Register creates an active account. A taken username is a
// types.ErrAlreadyExists domain error.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (types.User, error) {
	u := types.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Active:   true,
	}
	if err := validation.ValidateUser(u); err != nil {
		return types.User{}, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return types.User{}, err
	}
	u.PasswordHash = string(hash)

	id, err := s.users.AddUser(ctx, u)
	if err != nil {
		return types.User{}, err
	}
	s.log.Info("user registered", slog.String("username", u.Username), slog.String("role", string(u.Role)))
	return s.users.GetUserByID(ctx, id)
}

// ChangePassword replaces the password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, username, oldPassword); err != nil {
		return err
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	if err := s.users.ChangePassword(ctx, username, string(hash)); err != nil {
		return err
	}
	s.log.Info("password changed", slog.String("username", username))
	return nil
}

// HasPermission reports whether u may perform perm. Disabled accounts
// hold no permissions.
func (s *AuthService) HasPermission(u types.User, perm string) bool {
	return u.Active && u.HasPermission(perm)
}

// EnsureAdmin creates an admin account named username unless one with
// that name already exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !types.IsNotFound(err) {
		return false, err
	}

	_, err = s.Register(ctx, RegisterRequest{
		Username: username,
		Password: password,
		FullName: "Administrator",
		Role:     types.RoleAdmin,
	})
	if err != nil {
		// Lost a race against another process creating the same account.
		if types.IsAlreadyExists(err) {
			return false, nil
		}
		return false, err
	}
	s.log.Warn("created default admin account, change its password", slog.String("username", username))
	return true, nil
}
