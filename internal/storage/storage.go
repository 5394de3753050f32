// Package storage defines the contracts any persistence backend must
// satisfy to work with this application.
//
// WHY INTERFACES?
// ───────────────
// Services (and through them the HTTP layer) should not know or care
// which backend they are talking to. Two backends ship today:
//
//   - filestore: the whole collection serialised to one JSON file
//   - sqlstore:  relational tables through database/sql (SQLite/PostgreSQL)
//
// Which one is used is decided once, in main, at startup.
//
// ERRORS
// ──────
// Every method either succeeds or returns one of two classes of error:
// a *types.DomainError (types.ErrNotFound, types.ErrAlreadyExists) that
// the caller can act on, or a wrapped infrastructure error.
package storage

import (
	"context"

	"github.com/Gun2717/StudentManagement/internal/types"
)

// Storage is the student contract.
type Storage interface {
	// AddStudent inserts a new student. Fails with types.ErrAlreadyExists
	// when the id is taken.
	AddStudent(ctx context.Context, student types.Student) error

	// UpdateStudent replaces the stored record with the same id. Fails
	// with types.ErrNotFound when there is none.
	UpdateStudent(ctx context.Context, student types.Student) error

	// DeleteStudent removes a student. Fails with types.ErrNotFound when
	// there is none.
	DeleteStudent(ctx context.Context, id string) error

	// GetStudentByID fetches one student. Fails with types.ErrNotFound
	// when there is none.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// GetStudents returns every student in the store.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// SearchByName returns students whose full name contains name,
	// ignoring case.
	SearchByName(ctx context.Context, name string) ([]types.Student, error)

	// SearchByMajor returns students whose major contains major,
	// ignoring case.
	SearchByMajor(ctx context.Context, major string) ([]types.Student, error)

	// GetStudentsByGPAAbove returns students with GPA >= minGPA, highest
	// GPA first.
	GetStudentsByGPAAbove(ctx context.Context, minGPA float64) ([]types.Student, error)
}

// GradeStorage is the grade contract. Grade ids are assigned by the store.
type GradeStorage interface {
	// AddGrade stores g and returns its new id.
	AddGrade(ctx context.Context, g types.Grade) (int64, error)
	UpdateGrade(ctx context.Context, g types.Grade) error
	DeleteGrade(ctx context.Context, id int64) error
	GetGradeByID(ctx context.Context, id int64) (types.Grade, error)
	GetGradesByStudent(ctx context.Context, studentID string) ([]types.Grade, error)
	GetGradesByCourse(ctx context.Context, courseCode string) ([]types.Grade, error)
	GetGradesBySemester(ctx context.Context, semester string) ([]types.Grade, error)
	GetGrades(ctx context.Context) ([]types.Grade, error)
}

// UserStorage is the account contract. Usernames are unique.
type UserStorage interface {
	// AddUser stores u and returns its new id. Fails with
	// types.ErrAlreadyExists when the username is taken.
	AddUser(ctx context.Context, u types.User) (int64, error)
	UpdateUser(ctx context.Context, u types.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetUserByID(ctx context.Context, id int64) (types.User, error)
	GetUserByUsername(ctx context.Context, username string) (types.User, error)
	GetUsers(ctx context.Context) ([]types.User, error)
	GetUsersByRole(ctx context.Context, role types.Role) ([]types.User, error)
	UpdateLastLogin(ctx context.Context, username string) error
	ChangePassword(ctx context.Context, username, passwordHash string) error
}

// Store is a complete backend: every record kind plus lifecycle.
type Store interface {
	Storage
	GradeStorage
	UserStorage

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
