package service

import (
	"context"
	"log/slog"

	"github.com/Gun2717/StudentManagement/internal/query"
	"github.com/Gun2717/StudentManagement/internal/storage"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/validation"
)

// GradeService manages course results. Total score and letter grade are
// always recomputed from the component scores before a grade is stored,
// whatever the caller sent.
type GradeService struct {
	grades   storage.GradeStorage
	students storage.Storage
	log      *slog.Logger
}

// NewGradeService wires a GradeService. students is used to check that a
// grade refers to an existing student.
func NewGradeService(grades storage.GradeStorage, students storage.Storage, log *slog.Logger) *GradeService {
	if log == nil {
		log = slog.Default()
	}
	return &GradeService{grades: grades, students: students, log: log}
}

func (s *GradeService) prepare(ctx context.Context, g *types.Grade) error {
	g.Recompute()
	if err := validation.ValidateGrade(*g); err != nil {
		return err
	}
	// Fails with the store's "student not found" domain error.
	if _, err := s.students.GetStudentByID(ctx, g.StudentID); err != nil {
		return err
	}
	return nil
}

// AddGrade stores a new grade and returns it with its id and derived
// fields filled in.
func (s *GradeService) AddGrade(ctx context.Context, g types.Grade) (types.Grade, error) {
	if err := s.prepare(ctx, &g); err != nil {
		return types.Grade{}, err
	}
	id, err := s.grades.AddGrade(ctx, g)
	if err != nil {
		return types.Grade{}, err
	}
	g.ID = id

	s.log.Info("grade added",
		slog.Int64("id", id),
		slog.String("student_id", g.StudentID),
		slog.String("course_code", g.CourseCode),
	)
	return g, nil
}

// UpdateGrade replaces the grade with g.ID and returns what was stored.
func (s *GradeService) UpdateGrade(ctx context.Context, g types.Grade) (types.Grade, error) {
	if err := s.prepare(ctx, &g); err != nil {
		return types.Grade{}, err
	}
	if err := s.grades.UpdateGrade(ctx, g); err != nil {
		return types.Grade{}, err
	}
	s.log.Info("grade updated", slog.Int64("id", g.ID))
	return g, nil
}

func (s *GradeService) DeleteGrade(ctx context.Context, id int64) error {
	if err := s.grades.DeleteGrade(ctx, id); err != nil {
		return err
	}
	s.log.Info("grade deleted", slog.Int64("id", id))
	return nil
}

// FindByID reports absence as found == false, like StudentService.FindByID.
func (s *GradeService) FindByID(ctx context.Context, id int64) (types.Grade, bool, error) {
	g, err := s.grades.GetGradeByID(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return types.Grade{}, false, nil
		}
		return types.Grade{}, false, err
	}
	return g, true, nil
}

func (s *GradeService) All(ctx context.Context) ([]types.Grade, error) {
	return s.grades.GetGrades(ctx)
}

func (s *GradeService) ByStudent(ctx context.Context, studentID string) ([]types.Grade, error) {
	return s.grades.GetGradesByStudent(ctx, studentID)
}

func (s *GradeService) ByCourse(ctx context.Context, courseCode string) ([]types.Grade, error) {
	return s.grades.GetGradesByCourse(ctx, courseCode)
}

func (s *GradeService) BySemester(ctx context.Context, semester string) ([]types.Grade, error) {
	return s.grades.GetGradesBySemester(ctx, semester)
}

// StudentGPA is the credit-weighted GPA of a student's passed courses.
// An unknown student is a types.ErrNotFound domain error.
func (s *GradeService) StudentGPA(ctx context.Context, studentID string) (float64, error) {
	if _, err := s.students.GetStudentByID(ctx, studentID); err != nil {
		return 0, err
	}
	grades, err := s.grades.GetGradesByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return query.WeightedGPA(grades), nil
}
