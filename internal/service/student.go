// Package service is the application core: every outer surface (HTTP
// handlers today) talks to these types and never to a store directly.
//
// The services own validation, the mapping of "absent" to a plain
// boolean for lookups, aggregation through the query package and the
// background worker pool. They keep no state between calls: every read
// goes to the store.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Gun2717/StudentManagement/internal/query"
	"github.com/Gun2717/StudentManagement/internal/storage"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/validation"
	"github.com/Gun2717/StudentManagement/internal/workerpool"
)

// DefaultShutdownGrace is how long Shutdown waits for background reads.
const DefaultShutdownGrace = 5 * time.Second

// StudentService is the façade over student records.
type StudentService struct {
	store storage.Storage
	pool  *workerpool.Pool
	log   *slog.Logger
	now   func() time.Time
	grace time.Duration

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option customises a StudentService.
type Option func(*StudentService)

// WithShutdownGrace overrides DefaultShutdownGrace.
func WithShutdownGrace(d time.Duration) Option {
	return func(s *StudentService) { s.grace = d }
}

// WithClock sets the clock used for derived fields such as age.
func WithClock(now func() time.Time) Option {
	return func(s *StudentService) { s.now = now }
}

// NewStudentService wires the façade. pool runs the *Async methods and
// is shut down by Shutdown.
func NewStudentService(store storage.Storage, pool *workerpool.Pool, log *slog.Logger, opts ...Option) *StudentService {
	if log == nil {
		log = slog.Default()
	}
	s := &StudentService{
		store: store,
		pool:  pool,
		log:   log,
		now:   time.Now,
		grace: DefaultShutdownGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStudent validates and stores a new student. A taken id comes back
// as a types.ErrAlreadyExists domain error. Gender is stored in its
// canonical form, so an empty one becomes male on every backend.
func (s *StudentService) AddStudent(ctx context.Context, student types.Student) error {
	student.Gender = types.ParseGender(string(student.Gender))
	if err := validation.ValidateStudent(student); err != nil {
		return err
	}
	if err := s.store.AddStudent(ctx, student); err != nil {
		return err
	}
	s.log.Info("student added", slog.String("id", student.ID))
	return nil
}

// UpdateStudent validates and replaces a stored student. There is no
// existence pre-check: the store reports types.ErrNotFound itself, so a
// concurrent delete cannot slip between a check and the write.
func (s *StudentService) UpdateStudent(ctx context.Context, student types.Student) error {
	student.Gender = types.ParseGender(string(student.Gender))
	if err := validation.ValidateStudent(student); err != nil {
		return err
	}
	if err := s.store.UpdateStudent(ctx, student); err != nil {
		return err
	}
	s.log.Info("student updated", slog.String("id", student.ID))
	return nil
}

// DeleteStudent removes a student.
func (s *StudentService) DeleteStudent(ctx context.Context, id string) error {
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.log.Info("student deleted", slog.String("id", id))
	return nil
}

// FindByID looks a student up. Absence is reported as found == false
// with a nil error; err is only set for infrastructure failures.
func (s *StudentService) FindByID(ctx context.Context, id string) (types.Student, bool, error) {
	student, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return types.Student{}, false, nil
		}
		return types.Student{}, false, err
	}
	return student, true, nil
}

func (s *StudentService) GetAll(ctx context.Context) ([]types.Student, error) {
	return s.store.GetStudents(ctx)
}

func (s *StudentService) SearchByName(ctx context.Context, name string) ([]types.Student, error) {
	return s.store.SearchByName(ctx, name)
}

func (s *StudentService) SearchByMajor(ctx context.Context, major string) ([]types.Student, error) {
	return s.store.SearchByMajor(ctx, major)
}

// TopByGPA returns students with GPA >= minGPA, highest first.
func (s *StudentService) TopByGPA(ctx context.Context, minGPA float64) ([]types.Student, error) {
	return s.store.GetStudentsByGPAAbove(ctx, minGPA)
}

// Search applies the first criterion that is set, in the order name,
// major, minGPA. With no criterion it returns everybody.
func (s *StudentService) Search(ctx context.Context, name, major string, minGPA *float64) ([]types.Student, error) {
	switch {
	case strings.TrimSpace(name) != "":
		return s.SearchByName(ctx, name)
	case strings.TrimSpace(major) != "":
		return s.SearchByMajor(ctx, major)
	case minGPA != nil:
		return s.TopByGPA(ctx, *minGPA)
	default:
		return s.GetAll(ctx)
	}
}

// CalculateStatistics aggregates the whole collection, read once.
func (s *StudentService) CalculateStatistics(ctx context.Context) (types.Statistics, error) {
	all, err := s.store.GetStudents(ctx)
	if err != nil {
		return types.Statistics{}, err
	}
	return query.Statistics(all), nil
}

// ClassificationReport counts students per GPA bucket, best first.
func (s *StudentService) ClassificationReport(ctx context.Context) ([]types.ClassificationCount, error) {
	all, err := s.store.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	return query.ClassificationCounts(all), nil
}

// View adds the derived fields to a student as of now.
func (s *StudentService) View(student types.Student) types.StudentView {
	return types.NewStudentView(student, s.now())
}

// Views is View over a slice. The result is never nil.
func (s *StudentService) Views(students []types.Student) []types.StudentView {
	today := s.now()
	out := make([]types.StudentView, 0, len(students))
	for _, st := range students {
		out = append(out, types.NewStudentView(st, today))
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Async variants
//
// They run on the worker pool with the pool's own context: the caller's
// context is not carried over, so a task runs to completion unless the
// pool is shut down underneath it.
// ─────────────────────────────────────────────────────────────────────────────

// GetAllAsync is GetAll on the worker pool.
func (s *StudentService) GetAllAsync() *workerpool.Future[[]types.Student] {
	return workerpool.Submit(s.pool, func(ctx context.Context) ([]types.Student, error) {
		return s.GetAll(ctx)
	})
}

// SearchByNameAsync is SearchByName on the worker pool.
func (s *StudentService) SearchByNameAsync(name string) *workerpool.Future[[]types.Student] {
	return workerpool.Submit(s.pool, func(ctx context.Context) ([]types.Student, error) {
		return s.SearchByName(ctx, name)
	})
}

// Shutdown stops the worker pool, letting queued work finish within the
// grace period. It is safe to call more than once and from any goroutine;
// every call returns the result of the first.
func (s *StudentService) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.pool.Shutdown(s.grace)
		if s.shutdownErr != nil {
			s.log.Warn("student service shutdown", slog.String("error", s.shutdownErr.Error()))
			return
		}
		s.log.Info("student service stopped")
	})
	return s.shutdownErr
}
