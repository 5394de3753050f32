package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gun2717/StudentManagement/internal/types"
)

// Explicit column list; the order must match scanStudent.
const studentColumns = "id, full_name, date_of_birth, gender, email, phone, address, major, gpa"

func scanStudent(row rowScanner) (types.Student, error) {
	var (
		st     types.Student
		gender string
	)
	err := row.Scan(
		&st.ID,
		&st.FullName,
		&st.DateOfBirth,
		&gender,
		&st.Email,
		&st.Phone,
		&st.Address,
		&st.Major,
		&st.GPA,
	)
	if err != nil {
		return types.Student{}, err
	}
	st.Gender = types.ParseGender(gender)
	return st, nil
}

// AddStudent inserts a new row. A taken id surfaces as types.ErrAlreadyExists.
func (s *SQLStore) AddStudent(ctx context.Context, student types.Student) error {
	_, err := s.exec(ctx,
		"INSERT INTO students ("+studentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		student.ID,
		student.FullName,
		student.DateOfBirth,
		string(student.Gender),
		student.Email,
		student.Phone,
		student.Address,
		student.Major,
		student.GPA,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.StudentExists("AddStudent", student.ID)
		}
		return fmt.Errorf("AddStudent: exec: %w", err)
	}
	return nil
}

// UpdateStudent overwrites every column except the id.
func (s *SQLStore) UpdateStudent(ctx context.Context, student types.Student) error {
	found, err := s.execOne(ctx,
		`UPDATE students
		    SET full_name = ?, date_of_birth = ?, gender = ?, email = ?,
		        phone = ?, address = ?, major = ?, gpa = ?
		  WHERE id = ?`,
		student.FullName,
		student.DateOfBirth,
		string(student.Gender),
		student.Email,
		student.Phone,
		student.Address,
		student.Major,
		student.GPA,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateStudent: exec: %w", err)
	}
	if !found {
		return types.StudentNotFound("UpdateStudent", student.ID)
	}
	return nil
}

// DeleteStudent removes the row with the given id.
func (s *SQLStore) DeleteStudent(ctx context.Context, id string) error {
	found, err := s.execOne(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudent: exec: %w", err)
	}
	if !found {
		return types.StudentNotFound("DeleteStudent", id)
	}
	return nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLStore) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	st, err := scanStudent(s.queryRow(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = ? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, types.StudentNotFound("GetStudentByID", id)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return st, nil
}

// GetStudents returns every student ordered by id.
func (s *SQLStore) GetStudents(ctx context.Context) ([]types.Student, error) {
	return s.listStudents(ctx, "GetStudents",
		"SELECT "+studentColumns+" FROM students ORDER BY id")
}

// SearchByName matches full names containing name, ignoring case.
func (s *SQLStore) SearchByName(ctx context.Context, name string) ([]types.Student, error) {
	return s.listStudents(ctx, "SearchByName",
		"SELECT "+studentColumns+` FROM students
		  WHERE LOWER(full_name) LIKE ? ESCAPE '\'
		  ORDER BY full_name, id`,
		likePattern(name))
}

// SearchByMajor matches majors containing major, ignoring case.
func (s *SQLStore) SearchByMajor(ctx context.Context, major string) ([]types.Student, error) {
	return s.listStudents(ctx, "SearchByMajor",
		"SELECT "+studentColumns+` FROM students
		  WHERE LOWER(major) LIKE ? ESCAPE '\'
		  ORDER BY major, full_name, id`,
		likePattern(major))
}

// GetStudentsByGPAAbove returns students with gpa >= minGPA, best first.
func (s *SQLStore) GetStudentsByGPAAbove(ctx context.Context, minGPA float64) ([]types.Student, error) {
	return s.listStudents(ctx, "GetStudentsByGPAAbove",
		"SELECT "+studentColumns+" FROM students WHERE gpa >= ? ORDER BY gpa DESC, id",
		minGPA)
}

func (s *SQLStore) listStudents(ctx context.Context, op, query string, args ...any) ([]types.Student, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	students, err := collect(rows, scanStudent)
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return students, nil
}
