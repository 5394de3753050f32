// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a service.
// Each factory below accepts its dependencies and returns a function
// with the exact signature the router needs:
//
//	router.HandleFunc("POST /api/students", student.New(svc))
//
// Handlers only translate between HTTP and the service: decoding,
// picking the status code and encoding. Validation and storage rules
// live in internal/service.
package student

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Gun2717/StudentManagement/internal/service"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/utils/request"
	"github.com/Gun2717/StudentManagement/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "id": "SV001", "full_name": "Nguyen Van An", "date_of_birth": "2003-05-15",
//	  "gender": "male", "email": "an@example.com", "phone": "0912345678",
//	  "address": "Hanoi", "major": "Computer Science", "gpa": 3.4 }
//
// Success response (201 Created): the stored student with its derived
// age and classification.
//
// Error responses:
//
//	400 Bad Request - empty body, malformed JSON, failed validation or
//	                   an id that is already taken
//	500 Internal    - storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var student types.Student
		if err := request.DecodeJSON(w, r, &student); err != nil {
			response.Error(w, r, err)
			return
		}

		slog.Info("creating a student", slog.String("id", student.ID))

		if err := svc.AddStudent(r.Context(), student); err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, svc.View(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Success response (200 OK): the student. 404 when there is none.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		student, found, err := svc.FindByID(r.Context(), id)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if !found {
			response.Error(w, r, types.StudentNotFound("GetByID", id))
			return
		}

		response.WriteJSON(w, http.StatusOK, svc.View(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of all students, [] (not null) when there are none.
//
// The read runs on the service's worker pool; the handler stops waiting
// when the client goes away.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.GetAllAsync().Await(r.Context())
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, svc.Views(students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Search handles GET /api/students/search?name=…|major=…|minGpa=…
//
// Only the first criterion present is applied, in the order name, major,
// minGpa. Without any criterion every student is returned.
// ─────────────────────────────────────────────────────────────────────────────
func Search(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		name, major := q.Get("name"), q.Get("major")

		minGPA, err := request.QueryFloat(r, "minGpa")
		if err != nil {
			response.Error(w, r, err)
			return
		}

		slog.Info("searching students",
			slog.String("name", name),
			slog.String("major", major),
		)

		var students []types.Student
		if strings.TrimSpace(name) != "" {
			students, err = svc.SearchByNameAsync(name).Await(r.Context())
		} else {
			students, err = svc.Search(r.Context(), name, major, minGPA)
		}
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, svc.Views(students))
	}
}

// StatisticsResponse is the body of GET /api/students/statistics.
type StatisticsResponse struct {
	types.Statistics
	Classifications []types.ClassificationCount `json:"classifications"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Statistics handles GET /api/students/statistics
// On an empty store every number is zero.
// ─────────────────────────────────────────────────────────────────────────────
func Statistics(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.CalculateStatistics(r.Context())
		if err != nil {
			response.Error(w, r, err)
			return
		}
		report, err := svc.ClassificationReport(r.Context())
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, StatisticsResponse{
			Statistics:      stats,
			Classifications: report,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student. The id in the path wins
// over any id in the body.
//
// Error responses:
//
//	400 Bad Request - empty body, malformed JSON or failed validation
//	404 Not Found   - no student with that id
//	500 Internal    - storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		var student types.Student
		if err := request.DecodeJSON(w, r, &student); err != nil {
			response.Error(w, r, err)
			return
		}
		student.ID = id

		if err := svc.UpdateStudent(r.Context(), student); err != nil {
			response.Error(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, svc.View(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// 204 No Content on success, 404 when there is no such student.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		if err := svc.DeleteStudent(r.Context(), id); err != nil {
			response.Error(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
