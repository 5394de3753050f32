package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gun2717/StudentManagement/internal/storage"
	"github.com/Gun2717/StudentManagement/internal/storage/sqlstore"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/workerpool"
)

func newStudentService(t *testing.T, opts ...Option) *StudentService {
	t.Helper()
	pool := workerpool.New(2, discardLogger())
	svc := NewStudentService(newFileStore(t), pool, discardLogger(), opts...)
	t.Cleanup(func() { svc.Shutdown() })
	return svc
}

func TestAddStudent_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	in := validStudent("SV001")
	require.NoError(t, svc.AddStudent(ctx, in))

	got, found, err := svc.FindByID(ctx, "SV001")
	require.NoError(t, err)
	require.True(t, found)
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

func TestAddStudent_DuplicateIsDomainError(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)
	seedStudents(t, svc, validStudent("SV001"))

	err := svc.AddStudent(ctx, validStudent("SV001"))
	require.Error(t, err)
	assert.True(t, types.IsDomain(err))
	assert.True(t, types.IsAlreadyExists(err))
}

func TestAddStudent_InvalidIsNotStored(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	bad := validStudent("SV001")
	bad.GPA = 4.1
	err := svc.AddStudent(ctx, bad)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, "gpa must be between 0.0 and 4.0", err.Error())

	_, found, err := svc.FindByID(ctx, "SV001")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateStudent(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)
	seedStudents(t, svc, validStudent("SV001"))

	err := svc.UpdateStudent(ctx, validStudent("SV404"))
	require.Error(t, err)
	assert.True(t, types.IsDomain(err))
	assert.True(t, types.IsNotFound(err))

	upd := validStudent("SV001")
	upd.Major = "Physics"
	require.NoError(t, svc.UpdateStudent(ctx, upd))

	got, found, err := svc.FindByID(ctx, "SV001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Physics", got.Major)

	upd.Phone = "123"
	assert.True(t, types.IsValidation(svc.UpdateStudent(ctx, upd)))
}

func TestDeleteStudent(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)
	seedStudents(t, svc, validStudent("SV001"))

	require.NoError(t, svc.DeleteStudent(ctx, "SV001"))
	assert.True(t, types.IsNotFound(svc.DeleteStudent(ctx, "SV001")))
}

func TestSearch_FirstCriterionWins(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	a := validStudent("SV001")
	a.FullName = "Tran Van Anh"
	a.Major = "Law"
	a.GPA = 2.0
	b := validStudent("SV002")
	b.FullName = "Le Thi Hoa"
	b.Major = "Economics"
	b.GPA = 3.8
	seedStudents(t, svc, a, b)

	got, err := svc.Search(ctx, "anh", "economics", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SV001", got[0].ID)

	got, err = svc.Search(ctx, " ", "econ", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SV002", got[0].ID)

	minGPA := 3.5
	got, err = svc.Search(ctx, "", "", &minGPA)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SV002", got[0].ID)

	got, err = svc.Search(ctx, "", "", nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTopByGPA_Descending(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	gpas := []float64{2.1, 3.9, 0.5, 3.3, 2.8}
	for i, g := range gpas {
		s := validStudent("SV00" + string(rune('1'+i)))
		s.GPA = g
		seedStudents(t, svc, s)
	}

	top, err := svc.TopByGPA(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, len(gpas))
	for i := 1; i < len(top); i++ {
		assert.Greater(t, top[i-1].GPA, top[i].GPA)
	}
}

func TestCalculateStatistics(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	stats, err := svc.CalculateStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.AverageGPA)

	a := validStudent("SV001")
	a.GPA = 3.0
	b := validStudent("SV002")
	b.GPA = 4.0
	b.Gender = types.GenderFemale
	seedStudents(t, svc, a, b)

	stats, err = svc.CalculateStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 3.5, stats.AverageGPA, 1e-9)
	assert.Equal(t, 1, stats.MaleCount)
	assert.Equal(t, 1, stats.FemaleCount)

	report, err := svc.ClassificationReport(ctx)
	require.NoError(t, err)
	require.Len(t, report, 5)
	assert.Equal(t, "Excellent", report[0].Classification)
	assert.Equal(t, 1, report[0].Count)
	assert.Equal(t, "Fair", report[2].Classification)
	assert.Equal(t, 1, report[2].Count)
}

func TestView_UsesClock(t *testing.T) {
	today := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc := newStudentService(t, WithClock(func() time.Time { return today }))

	s := validStudent("SV001")
	s.GPA = 3.7
	v := svc.View(s)
	assert.Equal(t, 23, v.Age)
	assert.Equal(t, "Excellent", v.Classification)

	views := svc.Views(nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestAsyncVariants(t *testing.T) {
	svc := newStudentService(t)
	a := validStudent("SV001")
	a.FullName = "Pham Minh"
	seedStudents(t, svc, a, validStudent("SV002"))

	all, err := svc.GetAllAsync().Wait()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.SearchByNameAsync("minh").Wait()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SV001", found[0].ID)
}

func TestShutdown_IdempotentAndRejectsAsync(t *testing.T) {
	svc := newStudentService(t, WithShutdownGrace(time.Second))

	assert.NoError(t, svc.Shutdown())
	assert.NoError(t, svc.Shutdown())

	_, err := svc.GetAllAsync().Wait()
	assert.ErrorIs(t, err, workerpool.ErrClosed)

	// Synchronous calls do not use the pool.
	_, err = svc.GetAll(context.Background())
	assert.NoError(t, err)
}

func TestAddStudent_StoresCanonicalGender(t *testing.T) {
	ctx := context.Background()
	log := discardLogger()

	sqlStore, err := sqlstore.New(ctx, sqlstore.Options{
		Driver: sqlstore.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	backends := map[string]storage.Storage{
		"file": newFileStore(t),
		"sql":  sqlStore,
	}
	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			svc := NewStudentService(store, workerpool.New(1, log), log)
			t.Cleanup(func() { svc.Shutdown() })

			blank := validStudent("SV001")
			blank.Gender = ""
			require.NoError(t, svc.AddStudent(ctx, blank))

			raw := validStudent("SV002")
			raw.Gender = "FEMALE"
			require.NoError(t, svc.AddStudent(ctx, raw))

			got, found, err := svc.FindByID(ctx, "SV001")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, types.GenderMale, got.Gender)

			got, _, err = svc.FindByID(ctx, "SV002")
			require.NoError(t, err)
			assert.Equal(t, types.GenderFemale, got.Gender)

			raw.Gender = " khác "
			require.NoError(t, svc.UpdateStudent(ctx, raw))
			got, _, err = svc.FindByID(ctx, "SV002")
			require.NoError(t, err)
			assert.Equal(t, types.GenderOther, got.Gender)
		})
	}
}
