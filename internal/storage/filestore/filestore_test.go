package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gun2717/StudentManagement/internal/types"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := New(filepath.Join(t.TempDir(), "data", "students.json"))
	require.NoError(t, err)
	return fs
}

func student(id, name string, gpa float64) types.Student {
	return types.Student{
		ID:          id,
		FullName:    name,
		DateOfBirth: types.NewDate(2003, time.May, 15),
		Gender:      types.GenderFemale,
		Email:       "x@example.com",
		Phone:       "0912345678",
		Address:     "Hue",
		Major:       "Mathematics",
		GPA:         gpa,
	}
}

func TestStudents_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)

	all, err := fs.GetStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	in := student("SV001", "Tran Thi Binh", 3.4)
	require.NoError(t, fs.AddStudent(ctx, in))

	got, err := fs.GetStudentByID(ctx, "SV001")
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.FullName, got.FullName)
	assert.True(t, in.DateOfBirth.Equal(got.DateOfBirth))
	assert.Equal(t, in.Gender, got.Gender)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Phone, got.Phone)
	assert.Equal(t, in.Address, got.Address)
	assert.Equal(t, in.Major, got.Major)
	assert.Equal(t, in.GPA, got.GPA)
}

func TestStudents_DomainErrors(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)

	require.NoError(t, fs.AddStudent(ctx, student("SV001", "A", 3)))

	err := fs.AddStudent(ctx, student("SV001", "B", 2))
	require.Error(t, err)
	assert.True(t, types.IsAlreadyExists(err))

	err = fs.UpdateStudent(ctx, student("SV404", "Nobody", 2))
	assert.True(t, types.IsNotFound(err))

	err = fs.DeleteStudent(ctx, "SV404")
	assert.True(t, types.IsNotFound(err))

	_, err = fs.GetStudentByID(ctx, "SV404")
	assert.True(t, types.IsNotFound(err))
}

func TestStudents_UpdateDeleteAndPersistence(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)

	require.NoError(t, fs.AddStudent(ctx, student("SV001", "A", 3)))
	require.NoError(t, fs.AddStudent(ctx, student("SV002", "B", 2)))

	upd := student("SV001", "A Updated", 3.9)
	require.NoError(t, fs.UpdateStudent(ctx, upd))
	require.NoError(t, fs.DeleteStudent(ctx, "SV002"))

	reopened, err := New(fs.Path())
	require.NoError(t, err)
	all, err := reopened.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A Updated", all[0].FullName)
	assert.Equal(t, 3.9, all[0].GPA)
}

func TestStudents_Search(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)

	s1 := student("SV001", "Nguyen Van An", 3.1)
	s2 := student("SV002", "Tran Thi Binh", 3.7)
	s2.Major = "Physics"
	s3 := student("SV003", "Le Van Cuong", 3.1)
	for _, s := range []types.Student{s1, s2, s3} {
		require.NoError(t, fs.AddStudent(ctx, s))
	}

	byName, err := fs.SearchByName(ctx, "van")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byMajor, err := fs.SearchByMajor(ctx, "PHYS")
	require.NoError(t, err)
	require.Len(t, byMajor, 1)
	assert.Equal(t, "SV002", byMajor[0].ID)

	top, err := fs.GetStudentsByGPAAbove(ctx, 3.0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"SV002", "SV001", "SV003"}, []string{top[0].ID, top[1].ID, top[2].ID})
}

func TestStudents_ConcurrentAddsOfSameID(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- fs.AddStudent(ctx, student("SV001", fmt.Sprintf("writer %d", i), 3))
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, types.IsAlreadyExists(err))
	}
	assert.Equal(t, 1, succeeded)

	all, err := fs.GetStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGrades(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)

	g1 := types.Grade{StudentID: "SV002", CourseCode: "CS101", Credits: 3, Semester: "2024-1"}
	g1.SetScores(8, 7, 6)
	g2 := types.Grade{StudentID: "SV001", CourseCode: "CS101", Credits: 3, Semester: "2024-2"}
	g2.SetScores(5, 5, 5)
	g3 := types.Grade{StudentID: "SV001", CourseCode: "MA201", Credits: 4, Semester: "2024-1"}
	g3.SetScores(9, 9, 9)

	id1, err := fs.AddGrade(ctx, g1)
	require.NoError(t, err)
	id2, err := fs.AddGrade(ctx, g2)
	require.NoError(t, err)
	_, err = fs.AddGrade(ctx, g3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	got, err := fs.GetGradeByID(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "B", got.LetterGrade)

	byStudent, err := fs.GetGradesByStudent(ctx, "SV001")
	require.NoError(t, err)
	require.Len(t, byStudent, 2)
	assert.Equal(t, "2024-2", byStudent[0].Semester)

	byCourse, err := fs.GetGradesByCourse(ctx, "CS101")
	require.NoError(t, err)
	require.Len(t, byCourse, 2)
	assert.Equal(t, "SV001", byCourse[0].StudentID)

	bySemester, err := fs.GetGradesBySemester(ctx, "2024-1")
	require.NoError(t, err)
	assert.Len(t, bySemester, 2)

	got.SetFinal(10)
	require.NoError(t, fs.UpdateGrade(ctx, got))
	require.NoError(t, fs.DeleteGrade(ctx, id2))

	all, err := fs.GetGrades(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.True(t, types.IsNotFound(fs.DeleteGrade(ctx, id2)))
	_, err = fs.GetGradeByID(ctx, 99)
	assert.True(t, types.IsNotFound(err))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)
	fixed := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	fs.now = func() time.Time { return fixed }

	id, err := fs.AddUser(ctx, types.User{Username: "teacher1", PasswordHash: "hash", Role: types.RoleTeacher, Active: true})
	require.NoError(t, err)

	_, err = fs.AddUser(ctx, types.User{Username: "teacher1", Role: types.RoleTeacher})
	assert.True(t, types.IsAlreadyExists(err))

	u, err := fs.GetUserByUsername(ctx, "teacher1")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash", u.PasswordHash, "hash must survive the JSON round trip")
	assert.Equal(t, fixed, u.CreatedAt)

	require.NoError(t, fs.ChangePassword(ctx, "teacher1", "hash2"))
	require.NoError(t, fs.UpdateLastLogin(ctx, "teacher1"))
	u.FullName = "Teacher One"
	u.Active = false
	require.NoError(t, fs.UpdateUser(ctx, u))

	u, err = fs.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hash2", u.PasswordHash)
	require.NotNil(t, u.LastLogin)
	assert.Equal(t, fixed, *u.LastLogin)
	assert.Equal(t, "Teacher One", u.FullName)
	assert.False(t, u.Active)

	teachers, err := fs.GetUsersByRole(ctx, types.RoleTeacher)
	require.NoError(t, err)
	assert.Len(t, teachers, 1)

	require.NoError(t, fs.DeleteUser(ctx, id))
	users, err := fs.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCorruptFileIsInfrastructureError(t *testing.T) {
	ctx := context.Background()
	fs := newStore(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{not json"), 0o644))

	_, err := fs.GetStudents(ctx)
	require.Error(t, err)
	assert.False(t, types.IsDomain(err))
	assert.Error(t, fs.Ping(ctx))
}
