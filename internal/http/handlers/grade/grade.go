// Package grade contains the HTTP handlers for course results.
//
// Total score and letter grade in a request body are ignored: the
// service derives both from the component scores.
package grade

import (
	"log/slog"
	"net/http"

	"github.com/Gun2717/StudentManagement/internal/service"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/utils/request"
	"github.com/Gun2717/StudentManagement/internal/utils/response"
)

// New handles POST /api/grades. 201 with the stored grade; 400 on bad
// input; 404 when the student does not exist.
func New(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g types.Grade
		if err := request.DecodeJSON(w, r, &g); err != nil {
			response.Error(w, r, err)
			return
		}

		slog.Info("creating a grade",
			slog.String("student_id", g.StudentID),
			slog.String("course_code", g.CourseCode),
		)

		created, err := svc.AddGrade(r.Context(), g)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/grades/{id}.
func GetByID(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt64(r, "id")
		if err != nil {
			response.Error(w, r, err)
			return
		}

		g, found, err := svc.FindByID(r.Context(), id)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if !found {
			response.Error(w, r, types.GradeNotFound("GetByID", id))
			return
		}
		response.WriteJSON(w, http.StatusOK, g)
	}
}

// GetList handles GET /api/grades with an optional ?course= or
// ?semester= filter (course wins when both are given).
func GetList(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var (
			grades []types.Grade
			err    error
		)
		switch {
		case q.Get("course") != "":
			grades, err = svc.ByCourse(r.Context(), q.Get("course"))
		case q.Get("semester") != "":
			grades, err = svc.BySemester(r.Context(), q.Get("semester"))
		default:
			grades, err = svc.All(r.Context())
		}
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, grades)
	}
}

// Update handles PUT /api/grades/{id}. The path id wins over the body.
func Update(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt64(r, "id")
		if err != nil {
			response.Error(w, r, err)
			return
		}

		var g types.Grade
		if err := request.DecodeJSON(w, r, &g); err != nil {
			response.Error(w, r, err)
			return
		}
		g.ID = id

		updated, err := svc.UpdateGrade(r.Context(), g)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/grades/{id}: 204, or 404.
func Delete(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt64(r, "id")
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if err := svc.DeleteGrade(r.Context(), id); err != nil {
			response.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ByStudent handles GET /api/students/{id}/grades, latest semester first.
func ByStudent(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grades, err := svc.ByStudent(r.Context(), r.PathValue("id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, grades)
	}
}

// GPAResponse is the body of GET /api/students/{id}/gpa.
type GPAResponse struct {
	StudentID string  `json:"student_id"`
	GPA       float64 `json:"gpa"`
}

// StudentGPA handles GET /api/students/{id}/gpa: the credit-weighted GPA
// of the student's passed courses. 404 for an unknown student.
func StudentGPA(svc *service.GradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		gpa, err := svc.StudentGPA(r.Context(), id)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, GPAResponse{StudentID: id, GPA: gpa})
	}
}
