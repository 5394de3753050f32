// Package filestore provides a flat-file implementation of storage.Store.
//
// HOW IT WORKS
// ────────────
// The whole data set (students, grades, users and the id counters) lives
// in one JSON document on disk. Every write is a load → mutate → save of
// the entire document under the write half of a sync.RWMutex, so
// concurrent writers are totally ordered: two goroutines adding the same
// student id can never both succeed.
//
// Reads hold the read half: they run alongside each other but wait for a
// write in progress, and then see its result. Saves are atomic (write to a
// temp file, then rename over the original), so another process reading
// the file sees either the old document or the new one, never half of each.
//
// This is meant for the data sizes of a single desktop user. Every call
// costs a full read of the file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Gun2717/StudentManagement/internal/query"
	"github.com/Gun2717/StudentManagement/internal/types"
)

// document is the on-disk layout.
type document struct {
	Students    []types.Student `json:"students"`
	Grades      []types.Grade   `json:"grades"`
	Users       []userRecord    `json:"users"`
	NextGradeID int64           `json:"next_grade_id"`
	NextUserID  int64           `json:"next_user_id"`
}

// userRecord persists the password hash that types.User keeps out of JSON.
type userRecord struct {
	types.User
	PasswordHash string `json:"password_hash"`
}

func (r userRecord) toUser() types.User {
	u := r.User
	u.PasswordHash = r.PasswordHash
	return u
}

func newUserRecord(u types.User) userRecord {
	return userRecord{User: u, PasswordHash: u.PasswordHash}
}

// FileStore is the concrete implementation of storage.Store.
type FileStore struct {
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

// New returns a FileStore backed by the file at path. The file does not
// need to exist yet: a missing file is an empty data set and is created
// on the first write. The parent directory is created if needed.
func New(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("filestore.New: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("filestore.New: create dir: %w", err)
	}
	return &FileStore{path: path, now: time.Now}, nil
}

// Path returns the data file location.
func (f *FileStore) Path() string {
	return f.path
}

// ─────────────────────────────────────────────────────────────────────────────
// load / save / the two critical-section helpers
// ─────────────────────────────────────────────────────────────────────────────

func (f *FileStore) load() (*document, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", f.path, err)
	}

	var doc document
	if len(data) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w", f.path, err)
	}
	return &doc, nil
}

func (f *FileStore) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp: %w", err)
	}
	// Remove is a no-op once the rename below has succeeded.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", f.path, err)
	}
	return nil
}

// mutate runs fn on the current document and saves the result, all while
// holding the write lock. Nothing is saved when fn fails.
func (f *FileStore) mutate(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return f.save(doc)
}

// snapshot loads the current document for reading.
func (f *FileStore) snapshot(ctx context.Context) (*document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.load()
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

func indexOfStudent(students []types.Student, id string) int {
	for i, s := range students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// AddStudent appends a new student; duplicate ids are rejected.
func (f *FileStore) AddStudent(ctx context.Context, student types.Student) error {
	return f.mutate(ctx, func(doc *document) error {
		if indexOfStudent(doc.Students, student.ID) >= 0 {
			return types.StudentExists("AddStudent", student.ID)
		}
		doc.Students = append(doc.Students, student)
		return nil
	})
}

// UpdateStudent replaces the student in place, keeping its position.
func (f *FileStore) UpdateStudent(ctx context.Context, student types.Student) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfStudent(doc.Students, student.ID)
		if i < 0 {
			return types.StudentNotFound("UpdateStudent", student.ID)
		}
		doc.Students[i] = student
		return nil
	})
}

// DeleteStudent removes the student. Its grades are left alone: a grade
// references a student, it is not owned by one.
func (f *FileStore) DeleteStudent(ctx context.Context, id string) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfStudent(doc.Students, id)
		if i < 0 {
			return types.StudentNotFound("DeleteStudent", id)
		}
		doc.Students = append(doc.Students[:i], doc.Students[i+1:]...)
		return nil
	})
}

// GetStudentByID fetches one student.
func (f *FileStore) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return types.Student{}, err
	}
	i := indexOfStudent(doc.Students, id)
	if i < 0 {
		return types.Student{}, types.StudentNotFound("GetStudentByID", id)
	}
	return doc.Students[i], nil
}

// GetStudents returns all students in insertion order.
func (f *FileStore) GetStudents(ctx context.Context) ([]types.Student, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Students == nil {
		return make([]types.Student, 0), nil
	}
	return doc.Students, nil
}

// SearchByName filters on full name, ignoring case.
func (f *FileStore) SearchByName(ctx context.Context, name string) ([]types.Student, error) {
	all, err := f.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	return query.SearchByName(all, name), nil
}

// SearchByMajor filters on major, ignoring case.
func (f *FileStore) SearchByMajor(ctx context.Context, major string) ([]types.Student, error) {
	all, err := f.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	return query.SearchByMajor(all, major), nil
}

// GetStudentsByGPAAbove returns GPA >= minGPA, highest first.
func (f *FileStore) GetStudentsByGPAAbove(ctx context.Context, minGPA float64) ([]types.Student, error) {
	all, err := f.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	return query.TopByGPA(all, minGPA), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

func indexOfGrade(grades []types.Grade, id int64) int {
	for i, g := range grades {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// AddGrade assigns the next id and appends the grade.
func (f *FileStore) AddGrade(ctx context.Context, g types.Grade) (int64, error) {
	var id int64
	err := f.mutate(ctx, func(doc *document) error {
		doc.NextGradeID++
		id = doc.NextGradeID
		g.ID = id
		doc.Grades = append(doc.Grades, g)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateGrade replaces the grade with the same id.
func (f *FileStore) UpdateGrade(ctx context.Context, g types.Grade) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfGrade(doc.Grades, g.ID)
		if i < 0 {
			return types.GradeNotFound("UpdateGrade", g.ID)
		}
		doc.Grades[i] = g
		return nil
	})
}

// DeleteGrade removes a grade.
func (f *FileStore) DeleteGrade(ctx context.Context, id int64) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfGrade(doc.Grades, id)
		if i < 0 {
			return types.GradeNotFound("DeleteGrade", id)
		}
		doc.Grades = append(doc.Grades[:i], doc.Grades[i+1:]...)
		return nil
	})
}

// GetGradeByID fetches one grade.
func (f *FileStore) GetGradeByID(ctx context.Context, id int64) (types.Grade, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return types.Grade{}, err
	}
	i := indexOfGrade(doc.Grades, id)
	if i < 0 {
		return types.Grade{}, types.GradeNotFound("GetGradeByID", id)
	}
	return doc.Grades[i], nil
}

// GetGradesByStudent returns a student's grades, latest semester first.
func (f *FileStore) GetGradesByStudent(ctx context.Context, studentID string) ([]types.Grade, error) {
	out, err := f.filterGrades(ctx, func(g types.Grade) bool { return g.StudentID == studentID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Semester != out[j].Semester {
			return out[i].Semester > out[j].Semester
		}
		return out[i].ExamDate.After(out[j].ExamDate.Time)
	})
	return out, nil
}

// GetGradesByCourse returns a course's grades ordered by student id.
func (f *FileStore) GetGradesByCourse(ctx context.Context, courseCode string) ([]types.Grade, error) {
	out, err := f.filterGrades(ctx, func(g types.Grade) bool { return g.CourseCode == courseCode })
	if err != nil {
		return nil, err
	}
	sortByStudent(out)
	return out, nil
}

// GetGradesBySemester returns a semester's grades ordered by student id.
func (f *FileStore) GetGradesBySemester(ctx context.Context, semester string) ([]types.Grade, error) {
	out, err := f.filterGrades(ctx, func(g types.Grade) bool { return g.Semester == semester })
	if err != nil {
		return nil, err
	}
	sortByStudent(out)
	return out, nil
}

// GetGrades returns every grade ordered by student, latest semester first.
func (f *FileStore) GetGrades(ctx context.Context) ([]types.Grade, error) {
	out, err := f.filterGrades(ctx, func(types.Grade) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].Semester > out[j].Semester
	})
	return out, nil
}

func (f *FileStore) filterGrades(ctx context.Context, keep func(types.Grade) bool) ([]types.Grade, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Grade, 0, len(doc.Grades))
	for _, g := range doc.Grades {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func sortByStudent(grades []types.Grade) {
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].StudentID < grades[j].StudentID
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

func indexOfUsername(users []userRecord, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

func indexOfUserID(users []userRecord, id int64) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// AddUser assigns the next id and stores the account.
func (f *FileStore) AddUser(ctx context.Context, u types.User) (int64, error) {
	var id int64
	err := f.mutate(ctx, func(doc *document) error {
		if indexOfUsername(doc.Users, u.Username) >= 0 {
			return types.UserExists("AddUser", u.Username)
		}
		doc.NextUserID++
		id = doc.NextUserID
		u.ID = id
		if u.CreatedAt.IsZero() {
			u.CreatedAt = f.now().UTC()
		}
		doc.Users = append(doc.Users, newUserRecord(u))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateUser changes the profile fields of an account: full name, email,
// role and active flag. Username and password are changed elsewhere.
func (f *FileStore) UpdateUser(ctx context.Context, u types.User) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfUserID(doc.Users, u.ID)
		if i < 0 {
			return types.NewDomainError("UpdateUser", types.ErrNotFound, "user not found: %d", u.ID)
		}
		rec := &doc.Users[i]
		rec.FullName = u.FullName
		rec.Email = u.Email
		rec.Role = u.Role
		rec.Active = u.Active
		return nil
	})
}

// DeleteUser removes an account.
func (f *FileStore) DeleteUser(ctx context.Context, id int64) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfUserID(doc.Users, id)
		if i < 0 {
			return types.NewDomainError("DeleteUser", types.ErrNotFound, "user not found: %d", id)
		}
		doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
		return nil
	})
}

// GetUserByID fetches one account.
func (f *FileStore) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return types.User{}, err
	}
	i := indexOfUserID(doc.Users, id)
	if i < 0 {
		return types.User{}, types.NewDomainError("GetUserByID", types.ErrNotFound, "user not found: %d", id)
	}
	return doc.Users[i].toUser(), nil
}

// GetUserByUsername fetches one account by its login name.
func (f *FileStore) GetUserByUsername(ctx context.Context, username string) (types.User, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return types.User{}, err
	}
	i := indexOfUsername(doc.Users, username)
	if i < 0 {
		return types.User{}, types.UserNotFound("GetUserByUsername", username)
	}
	return doc.Users[i].toUser(), nil
}

// GetUsers returns every account ordered by username.
func (f *FileStore) GetUsers(ctx context.Context) ([]types.User, error) {
	return f.filterUsers(ctx, func(types.User) bool { return true })
}

// GetUsersByRole returns the accounts with the given role.
func (f *FileStore) GetUsersByRole(ctx context.Context, role types.Role) ([]types.User, error) {
	return f.filterUsers(ctx, func(u types.User) bool { return u.Role == role })
}

func (f *FileStore) filterUsers(ctx context.Context, keep func(types.User) bool) ([]types.User, error) {
	doc, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.User, 0, len(doc.Users))
	for _, rec := range doc.Users {
		if u := rec.toUser(); keep(u) {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// UpdateLastLogin stamps the account with the current time.
func (f *FileStore) UpdateLastLogin(ctx context.Context, username string) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfUsername(doc.Users, username)
		if i < 0 {
			return types.UserNotFound("UpdateLastLogin", username)
		}
		now := f.now().UTC()
		doc.Users[i].LastLogin = &now
		return nil
	})
}

// ChangePassword replaces the stored password hash.
func (f *FileStore) ChangePassword(ctx context.Context, username, passwordHash string) error {
	return f.mutate(ctx, func(doc *document) error {
		i := indexOfUsername(doc.Users, username)
		if i < 0 {
			return types.UserNotFound("ChangePassword", username)
		}
		doc.Users[i].PasswordHash = passwordHash
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Ping checks that the data file can be read (or does not exist yet).
func (f *FileStore) Ping(ctx context.Context) error {
	_, err := f.snapshot(ctx)
	return err
}

// Close is a no-op: nothing is held open between calls.
func (f *FileStore) Close() error {
	return nil
}
