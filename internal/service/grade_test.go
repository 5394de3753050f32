package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gun2717/StudentManagement/internal/types"
)

func newGradeService(t *testing.T) (*GradeService, *StudentService) {
	t.Helper()
	store := newFileStore(t)
	students := NewStudentService(store, nil, discardLogger())
	return NewGradeService(store, store, discardLogger()), students
}

func TestAddGrade_DerivesTotalAndLetter(t *testing.T) {
	ctx := context.Background()
	grades, students := newGradeService(t)
	seedStudents(t, students, validStudent("SV001"))

	in := types.Grade{
		StudentID:     "SV001",
		CourseCode:    "CS101",
		Credits:       3,
		MidtermScore:  8,
		FinalScore:    7,
		PracticeScore: 6,
		TotalScore:    1, // ignored
		LetterGrade:   "A+",
		Semester:      "2024-1",
	}
	g, err := grades.AddGrade(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.InDelta(t, 7.2, g.TotalScore, 1e-9)
	assert.Equal(t, "B", g.LetterGrade)

	stored, found, err := grades.FindByID(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "B", stored.LetterGrade)
}

func TestAddGrade_Rejections(t *testing.T) {
	ctx := context.Background()
	grades, students := newGradeService(t)
	seedStudents(t, students, validStudent("SV001"))

	_, err := grades.AddGrade(ctx, types.Grade{StudentID: "SV404", CourseCode: "CS101", Credits: 3})
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))

	_, err = grades.AddGrade(ctx, types.Grade{StudentID: "SV001", CourseCode: "CS101", Credits: 0})
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))

	all, err := grades.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateAndDeleteGrade(t *testing.T) {
	ctx := context.Background()
	grades, students := newGradeService(t)
	seedStudents(t, students, validStudent("SV001"))

	g, err := grades.AddGrade(ctx, types.Grade{StudentID: "SV001", CourseCode: "CS101", Credits: 3,
		MidtermScore: 5, FinalScore: 5, PracticeScore: 5, Semester: "2024-1"})
	require.NoError(t, err)
	assert.Equal(t, "D+", g.LetterGrade)

	g.FinalScore = 10
	g, err = grades.UpdateGrade(ctx, g)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, g.TotalScore, 1e-9)
	assert.Equal(t, "B+", g.LetterGrade)

	_, err = grades.UpdateGrade(ctx, types.Grade{ID: 99, StudentID: "SV001", CourseCode: "X", Credits: 1})
	assert.True(t, types.IsNotFound(err))

	require.NoError(t, grades.DeleteGrade(ctx, g.ID))
	_, found, err := grades.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQueriesAndStudentGPA(t *testing.T) {
	ctx := context.Background()
	grades, students := newGradeService(t)
	seedStudents(t, students, validStudent("SV001"), validStudent("SV002"))

	for _, g := range []types.Grade{
		{StudentID: "SV001", CourseCode: "CS101", Credits: 3, MidtermScore: 9.5, FinalScore: 9.5, PracticeScore: 9.5, Semester: "2024-1"},
		{StudentID: "SV001", CourseCode: "MA201", Credits: 1, MidtermScore: 7.5, FinalScore: 7.5, PracticeScore: 7.5, Semester: "2024-2"},
		{StudentID: "SV001", CourseCode: "PH101", Credits: 4, MidtermScore: 1, FinalScore: 1, PracticeScore: 1, Semester: "2024-2"},
		{StudentID: "SV002", CourseCode: "CS101", Credits: 3, MidtermScore: 6, FinalScore: 6, PracticeScore: 6, Semester: "2024-1"},
	} {
		_, err := grades.AddGrade(ctx, g)
		require.NoError(t, err)
	}

	byStudent, err := grades.ByStudent(ctx, "SV001")
	require.NoError(t, err)
	assert.Len(t, byStudent, 3)

	byCourse, err := grades.ByCourse(ctx, "CS101")
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	bySemester, err := grades.BySemester(ctx, "2024-2")
	require.NoError(t, err)
	assert.Len(t, bySemester, 2)

	gpa, err := grades.StudentGPA(ctx, "SV001")
	require.NoError(t, err)
	assert.InDelta(t, (4.0*3+3.0*1)/4, gpa, 1e-9)

	_, err = grades.StudentGPA(ctx, "SV404")
	assert.True(t, types.IsNotFound(err))
}
