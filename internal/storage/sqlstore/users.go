package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gun2717/StudentManagement/internal/types"
)

const userColumns = "id, username, password_hash, full_name, email, role, active, last_login, created_at"

func scanUser(row rowScanner) (types.User, error) {
	var (
		u         types.User
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FullName,
		&u.Email,
		&role,
		&u.Active,
		&lastLogin,
		&u.CreatedAt,
	)
	if err != nil {
		return types.User{}, err
	}
	u.Role = types.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		u.LastLogin = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func userIDNotFound(op string, id int64) error {
	return types.NewDomainError(op, types.ErrNotFound, "user not found: %d", id)
}

// AddUser inserts an account and returns its id. CreatedAt defaults to now.
func (s *SQLStore) AddUser(ctx context.Context, u types.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}

	var id int64
	err := s.queryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, email, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		u.Username,
		u.PasswordHash,
		u.FullName,
		u.Email,
		string(u.Role),
		u.Active,
		u.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, types.UserExists("AddUser", u.Username)
		}
		return 0, fmt.Errorf("AddUser: insert: %w", err)
	}
	return id, nil
}

// UpdateUser changes full name, email, role and active flag.
func (s *SQLStore) UpdateUser(ctx context.Context, u types.User) error {
	found, err := s.execOne(ctx,
		"UPDATE users SET full_name = ?, email = ?, role = ?, active = ? WHERE id = ?",
		u.FullName, u.Email, string(u.Role), u.Active, u.ID)
	if err != nil {
		return fmt.Errorf("UpdateUser: exec: %w", err)
	}
	if !found {
		return userIDNotFound("UpdateUser", u.ID)
	}
	return nil
}

// DeleteUser removes an account.
func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	found, err := s.execOne(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteUser: exec: %w", err)
	}
	if !found {
		return userIDNotFound("DeleteUser", id)
	}
	return nil
}

// GetUserByID fetches one account.
func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	u, err := scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, userIDNotFound("GetUserByID", id)
		}
		return types.User{}, fmt.Errorf("GetUserByID: scan: %w", err)
	}
	return u, nil
}

// GetUserByUsername fetches one account by login name.
func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (types.User, error) {
	u, err := scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, types.UserNotFound("GetUserByUsername", username)
		}
		return types.User{}, fmt.Errorf("GetUserByUsername: scan: %w", err)
	}
	return u, nil
}

// GetUsers lists every account by username.
func (s *SQLStore) GetUsers(ctx context.Context) ([]types.User, error) {
	return s.listUsers(ctx, "GetUsers", "SELECT "+userColumns+" FROM users ORDER BY username")
}

// GetUsersByRole lists the accounts holding role.
func (s *SQLStore) GetUsersByRole(ctx context.Context, role types.Role) ([]types.User, error) {
	return s.listUsers(ctx, "GetUsersByRole",
		"SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY username", string(role))
}

// UpdateLastLogin stamps the account with the current time.
func (s *SQLStore) UpdateLastLogin(ctx context.Context, username string) error {
	found, err := s.execOne(ctx,
		"UPDATE users SET last_login = ? WHERE username = ?", s.now().UTC(), username)
	if err != nil {
		return fmt.Errorf("UpdateLastLogin: exec: %w", err)
	}
	if !found {
		return types.UserNotFound("UpdateLastLogin", username)
	}
	return nil
}

// ChangePassword stores a new password hash.
func (s *SQLStore) ChangePassword(ctx context.Context, username, passwordHash string) error {
	found, err := s.execOne(ctx,
		"UPDATE users SET password_hash = ? WHERE username = ?", passwordHash, username)
	if err != nil {
		return fmt.Errorf("ChangePassword: exec: %w", err)
	}
	if !found {
		return types.UserNotFound("ChangePassword", username)
	}
	return nil
}

func (s *SQLStore) listUsers(ctx context.Context, op, query string, args ...any) ([]types.User, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return users, nil
}
