// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, services, storage and the query layer can all import types
// without depending on each other.
package types

import (
	"strings"
	"time"

	"github.com/Gun2717/StudentManagement/internal/grading"
)

// ─────────────────────────────────────────────────────────────────────────────
// Gender is the enumerated gender of a student.
//
// Parsing is forgiving: matching is case-insensitive, the legacy display
// names ("Nam", "Nữ", "Khác") are accepted, and anything unrecognised
// falls back to GenderMale.
// ─────────────────────────────────────────────────────────────────────────────
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender converts free text into a Gender.
func ParseGender(text string) Gender {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "female", "nữ", "nu", "f":
		return GenderFemale
	case "other", "khác", "khac":
		return GenderOther
	default:
		return GenderMale
	}
}

// UnmarshalText lets JSON and config decoding go through ParseGender.
func (g *Gender) UnmarshalText(text []byte) error {
	*g = ParseGender(string(text))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  controls how the field appears when encoded to JSON.
//
//  2. validate:"..." rules checked by the go-playground/validator
//     package (see internal/validation). "notblank" rejects whitespace-only
//     strings, "studentemail"/"studentphone" are regex rules registered by
//     the validation package.
//
// ID is the natural key: unique across the store and never changed after
// the record is created.
// ─────────────────────────────────────────────────────────────────────────────
type Student struct {
	ID          string  `json:"id"            validate:"notblank"`
	FullName    string  `json:"full_name"     validate:"notblank"`
	DateOfBirth Date    `json:"date_of_birth" validate:"required"`
	Gender      Gender  `json:"gender"`
	Email       string  `json:"email"         validate:"omitempty,studentemail"`
	Phone       string  `json:"phone"         validate:"omitempty,studentphone"`
	Address     string  `json:"address"`
	Major       string  `json:"major"`
	GPA         float64 `json:"gpa"           validate:"gte=0,lte=4"`
}

// Age is the student's age in whole calendar years at today.
func (s Student) Age(today time.Time) int {
	return grading.Age(s.DateOfBirth.Time, today)
}

// FormattedDateOfBirth renders the date of birth as dd/MM/yyyy.
func (s Student) FormattedDateOfBirth() string {
	return grading.FormatDate(s.DateOfBirth.Time)
}

// Classification is the GPA bucket of the student.
func (s Student) Classification() string {
	return grading.Classify(s.GPA)
}

// StudentView is the read model returned by the API: the stored record
// plus the derived fields a client would otherwise recompute.
type StudentView struct {
	Student
	Age            int    `json:"age"`
	Classification string `json:"classification"`
}

// NewStudentView derives the read-only fields of s as of today.
func NewStudentView(s Student, today time.Time) StudentView {
	return StudentView{
		Student:        s,
		Age:            s.Age(today),
		Classification: s.Classification(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Grade is one course result of one student.
//
// TotalScore and LetterGrade are derived: every Set* method recomputes
// both, and there is no setter for the total. The fields stay exported so
// the storage layer can load exactly what was saved.
// ─────────────────────────────────────────────────────────────────────────────
type Grade struct {
	ID            int64   `json:"id"`
	StudentID     string  `json:"student_id"     validate:"notblank"`
	CourseCode    string  `json:"course_code"    validate:"notblank"`
	CourseName    string  `json:"course_name"`
	Credits       int     `json:"credits"        validate:"gt=0"`
	MidtermScore  float64 `json:"midterm_score"  validate:"gte=0,lte=10"`
	FinalScore    float64 `json:"final_score"    validate:"gte=0,lte=10"`
	PracticeScore float64 `json:"practice_score" validate:"gte=0,lte=10"`
	TotalScore    float64 `json:"total_score"`
	LetterGrade   string  `json:"letter_grade"`
	ExamDate      Date    `json:"exam_date"`
	Semester      string  `json:"semester"`
}

// SetMidterm sets the midterm score and recomputes the derived fields.
func (g *Grade) SetMidterm(score float64) {
	g.MidtermScore = score
	g.recompute()
}

// SetFinal sets the final exam score and recomputes the derived fields.
func (g *Grade) SetFinal(score float64) {
	g.FinalScore = score
	g.recompute()
}

// SetPractice sets the practice score and recomputes the derived fields.
func (g *Grade) SetPractice(score float64) {
	g.PracticeScore = score
	g.recompute()
}

// SetScores sets all three component scores at once.
func (g *Grade) SetScores(midterm, final, practice float64) {
	g.MidtermScore = midterm
	g.FinalScore = final
	g.PracticeScore = practice
	g.recompute()
}

// Recompute refreshes TotalScore and LetterGrade from the component
// scores. Records decoded from JSON go through this before they are
// trusted.
func (g *Grade) Recompute() {
	g.recompute()
}

func (g *Grade) recompute() {
	g.TotalScore = grading.ComputeTotalScore(g.MidtermScore, g.FinalScore, g.PracticeScore)
	g.LetterGrade = grading.LetterGrade(g.TotalScore)
}

// Passed reports whether the course was passed.
func (g Grade) Passed() bool {
	return grading.Passed(g.TotalScore)
}

// GradePoint is the 4.0-scale contribution of this grade.
func (g Grade) GradePoint() float64 {
	return grading.GradePoint(g.LetterGrade)
}

// ─────────────────────────────────────────────────────────────────────────────
// Role is the authorization role of a User. Each role carries a fixed set
// of permissions; RoleAdmin implicitly holds all of them.
// ─────────────────────────────────────────────────────────────────────────────
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Permission names.
const (
	PermViewStudent  = "view_student"
	PermEditStudent  = "edit_student"
	PermViewGrade    = "view_grade"
	PermEditGrade    = "edit_grade"
	PermViewOwnInfo  = "view_own_info"
	PermViewOwnGrade = "view_own_grade"
	PermManageUsers  = "manage_users" // admin only
)

var rolePermissions = map[Role][]string{
	RoleAdmin:   {"*"},
	RoleTeacher: {PermViewStudent, PermEditStudent, PermViewGrade, PermEditGrade},
	RoleStudent: {PermViewOwnInfo, PermViewOwnGrade},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the permission set of r.
func (r Role) Permissions() []string {
	return rolePermissions[r]
}

// HasPermission reports whether r grants perm.
func (r Role) HasPermission(perm string) bool {
	for _, p := range rolePermissions[r] {
		if p == "*" || p == perm {
			return true
		}
	}
	return false
}

// User is an account that can log in to the system.
// PasswordHash never leaves the process: it is excluded from JSON.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"   validate:"notblank"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"      validate:"omitempty,studentemail"`
	Role         Role       `json:"role"       validate:"oneof=admin teacher student"`
	Active       bool       `json:"active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HasPermission reports whether the user's role grants perm.
func (u User) HasPermission(perm string) bool {
	return u.Role.HasPermission(perm)
}

// ─────────────────────────────────────────────────────────────────────────────
// Statistics is the aggregate view over the whole student collection.
// On an empty collection every field is zero.
// ─────────────────────────────────────────────────────────────────────────────
type Statistics struct {
	Count       int     `json:"count"`
	AverageGPA  float64 `json:"average_gpa"`
	MaxGPA      float64 `json:"max_gpa"`
	MinGPA      float64 `json:"min_gpa"`
	MaleCount   int     `json:"male_count"`
	FemaleCount int     `json:"female_count"`
}

// ClassificationCount is one row of the classification distribution.
type ClassificationCount struct {
	Classification string `json:"classification"`
	Count          int    `json:"count"`
}
