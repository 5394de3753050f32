package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gun2717/StudentManagement/internal/types"
)

const gradeColumns = `id, student_id, course_code, course_name, credits,
	midterm_score, final_score, practice_score, total_score, letter_grade,
	exam_date, semester`

func scanGrade(row rowScanner) (types.Grade, error) {
	var g types.Grade
	err := row.Scan(
		&g.ID,
		&g.StudentID,
		&g.CourseCode,
		&g.CourseName,
		&g.Credits,
		&g.MidtermScore,
		&g.FinalScore,
		&g.PracticeScore,
		&g.TotalScore,
		&g.LetterGrade,
		&g.ExamDate,
		&g.Semester,
	)
	return g, err
}

// AddGrade inserts g and returns the id the database assigned.
func (s *SQLStore) AddGrade(ctx context.Context, g types.Grade) (int64, error) {
	var id int64
	err := s.queryRow(ctx,
		`INSERT INTO grades (student_id, course_code, course_name, credits,
		        midterm_score, final_score, practice_score, total_score,
		        letter_grade, exam_date, semester)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		g.StudentID,
		g.CourseCode,
		g.CourseName,
		g.Credits,
		g.MidtermScore,
		g.FinalScore,
		g.PracticeScore,
		g.TotalScore,
		g.LetterGrade,
		g.ExamDate,
		g.Semester,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("AddGrade: insert: %w", err)
	}
	return id, nil
}

// UpdateGrade overwrites the grade with g.ID.
func (s *SQLStore) UpdateGrade(ctx context.Context, g types.Grade) error {
	found, err := s.execOne(ctx,
		`UPDATE grades
		    SET student_id = ?, course_code = ?, course_name = ?, credits = ?,
		        midterm_score = ?, final_score = ?, practice_score = ?,
		        total_score = ?, letter_grade = ?, exam_date = ?, semester = ?
		  WHERE id = ?`,
		g.StudentID,
		g.CourseCode,
		g.CourseName,
		g.Credits,
		g.MidtermScore,
		g.FinalScore,
		g.PracticeScore,
		g.TotalScore,
		g.LetterGrade,
		g.ExamDate,
		g.Semester,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateGrade: exec: %w", err)
	}
	if !found {
		return types.GradeNotFound("UpdateGrade", g.ID)
	}
	return nil
}

// DeleteGrade removes one grade.
func (s *SQLStore) DeleteGrade(ctx context.Context, id int64) error {
	found, err := s.execOne(ctx, "DELETE FROM grades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteGrade: exec: %w", err)
	}
	if !found {
		return types.GradeNotFound("DeleteGrade", id)
	}
	return nil
}

// GetGradeByID fetches one grade.
func (s *SQLStore) GetGradeByID(ctx context.Context, id int64) (types.Grade, error) {
	g, err := scanGrade(s.queryRow(ctx,
		"SELECT "+gradeColumns+" FROM grades WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Grade{}, types.GradeNotFound("GetGradeByID", id)
		}
		return types.Grade{}, fmt.Errorf("GetGradeByID: scan: %w", err)
	}
	return g, nil
}

// GetGradesByStudent lists a student's grades, latest semester first.
func (s *SQLStore) GetGradesByStudent(ctx context.Context, studentID string) ([]types.Grade, error) {
	return s.listGrades(ctx, "GetGradesByStudent",
		"SELECT "+gradeColumns+` FROM grades WHERE student_id = ?
		  ORDER BY semester DESC, exam_date DESC, id`,
		studentID)
}

// GetGradesByCourse lists every result of one course by student.
func (s *SQLStore) GetGradesByCourse(ctx context.Context, courseCode string) ([]types.Grade, error) {
	return s.listGrades(ctx, "GetGradesByCourse",
		"SELECT "+gradeColumns+" FROM grades WHERE course_code = ? ORDER BY student_id, id",
		courseCode)
}

// GetGradesBySemester lists every result of one semester by student.
func (s *SQLStore) GetGradesBySemester(ctx context.Context, semester string) ([]types.Grade, error) {
	return s.listGrades(ctx, "GetGradesBySemester",
		"SELECT "+gradeColumns+" FROM grades WHERE semester = ? ORDER BY student_id, id",
		semester)
}

// GetGrades lists every grade.
func (s *SQLStore) GetGrades(ctx context.Context) ([]types.Grade, error) {
	return s.listGrades(ctx, "GetGrades",
		"SELECT "+gradeColumns+" FROM grades ORDER BY student_id, semester DESC, id")
}

func (s *SQLStore) listGrades(ctx context.Context, op, query string, args ...any) ([]types.Grade, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	grades, err := collect(rows, scanGrade)
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return grades, nil
}
