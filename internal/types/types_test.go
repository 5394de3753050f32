package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade_SettersRecomputeTotal(t *testing.T) {
	var g Grade

	g.SetMidterm(8)
	assert.InDelta(t, 2.4, g.TotalScore, 1e-9)
	assert.Equal(t, "F", g.LetterGrade)

	g.SetPractice(6)
	assert.InDelta(t, 3.0, g.TotalScore, 1e-9)

	g.SetFinal(7)
	assert.InDelta(t, 7.2, g.TotalScore, 1e-9)
	assert.Equal(t, "B", g.LetterGrade)
	assert.True(t, g.Passed())
	assert.Equal(t, 3.0, g.GradePoint())

	g.SetScores(2, 3, 1)
	assert.InDelta(t, 2.5, g.TotalScore, 1e-9)
	assert.Equal(t, "F", g.LetterGrade)
	assert.False(t, g.Passed())
}

func TestGrade_RecomputeOverridesStaleTotal(t *testing.T) {
	g := Grade{MidtermScore: 10, FinalScore: 10, PracticeScore: 10, TotalScore: 1, LetterGrade: "F"}
	g.Recompute()

	assert.InDelta(t, 10.0, g.TotalScore, 1e-9)
	assert.Equal(t, "A+", g.LetterGrade)
}

func TestParseGender(t *testing.T) {
	assert.Equal(t, GenderFemale, ParseGender("Female"))
	assert.Equal(t, GenderFemale, ParseGender("Nữ"))
	assert.Equal(t, GenderOther, ParseGender("khác"))
	assert.Equal(t, GenderMale, ParseGender("Nam"))
	assert.Equal(t, GenderMale, ParseGender("???"))
}

func TestRole_Permissions(t *testing.T) {
	assert.True(t, RoleAdmin.HasPermission(PermEditGrade))
	assert.True(t, RoleAdmin.HasPermission("anything"))
	assert.True(t, RoleTeacher.HasPermission(PermEditStudent))
	assert.False(t, RoleTeacher.HasPermission(PermViewOwnInfo))
	assert.True(t, RoleStudent.HasPermission(PermViewOwnGrade))
	assert.False(t, RoleStudent.HasPermission(PermEditGrade))
	assert.False(t, Role("janitor").Valid())

	u := User{Role: RoleTeacher}
	assert.True(t, u.HasPermission(PermViewGrade))
}

func TestStudent_DerivedFields(t *testing.T) {
	s := Student{DateOfBirth: NewDate(2003, time.May, 15), GPA: 3.6}
	today := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 23, s.Age(today))
	assert.Equal(t, "15/05/2003", s.FormattedDateOfBirth())
	assert.Equal(t, "Excellent", s.Classification())

	v := NewStudentView(s, today)
	assert.Equal(t, 23, v.Age)
	assert.Equal(t, "Excellent", v.Classification)
}

func TestDate_JSON(t *testing.T) {
	in := Student{ID: "SV001", DateOfBirth: NewDate(2003, time.May, 15), Gender: GenderFemale}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date_of_birth":"2003-05-15"`)

	var out Student
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.DateOfBirth.Equal(out.DateOfBirth))
	assert.Equal(t, GenderFemale, out.Gender)

	var empty Student
	require.NoError(t, json.Unmarshal([]byte(`{"date_of_birth":null}`), &empty))
	assert.True(t, empty.DateOfBirth.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date_of_birth":"15-05"}`), &empty))
}

func TestDate_Scan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan("2003-05-15 00:00:00+00:00"))
	assert.Equal(t, "2003-05-15", d.String())

	require.NoError(t, d.Scan(time.Date(2001, time.March, 2, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2001-03-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := NewDate(2003, time.May, 15).Value()
	require.NoError(t, err)
	assert.Equal(t, "2003-05-15", v)
}

func TestDomainError_Kinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", StudentExists("AddStudent", "SV001"))

	assert.True(t, IsDomain(err))
	assert.True(t, IsAlreadyExists(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "wrapped: student id already exists: SV001", err.Error())

	assert.False(t, IsDomain(errors.New("disk full")))
}
