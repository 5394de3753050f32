package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gun2717/StudentManagement/internal/storage/filestore"
	"github.com/Gun2717/StudentManagement/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFileStore(t *testing.T) *filestore.FileStore {
	t.Helper()
	fs, err := filestore.New(filepath.Join(t.TempDir(), "students.json"))
	require.NoError(t, err)
	return fs
}

func validStudent(id string) types.Student {
	return types.Student{
		ID:          id,
		FullName:    "Nguyen Van " + id,
		DateOfBirth: types.NewDate(2003, time.March, 8),
		Gender:      types.GenderMale,
		Email:       id + "@student.edu.vn",
		Phone:       "0901234567",
		Major:       "Computer Science",
		GPA:         3.0,
	}
}

func seedStudents(t *testing.T, svc *StudentService, students ...types.Student) {
	t.Helper()
	for _, s := range students {
		require.NoError(t, svc.AddStudent(context.Background(), s))
	}
}
