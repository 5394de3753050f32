// Package router assembles every HTTP route and the middleware around
// them into one http.Handler.
package router

import (
	"log/slog"
	"net/http"

	"github.com/Gun2717/StudentManagement/internal/http/handlers/auth"
	"github.com/Gun2717/StudentManagement/internal/http/handlers/grade"
	"github.com/Gun2717/StudentManagement/internal/http/handlers/student"
	"github.com/Gun2717/StudentManagement/internal/http/middleware"
	"github.com/Gun2717/StudentManagement/internal/service"
	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/utils/response"
)

// Deps are the services the routes call.
type Deps struct {
	Students *service.StudentService
	Grades   *service.GradeService
	Auth     *service.AuthService
	Log      *slog.Logger

	// RequireAuth protects every mutating route with HTTP Basic auth and
	// a role permission. Reads stay open.
	RequireAuth bool
}

// New returns the complete API handler.
//
// Go 1.22+ ServeMux patterns carry the method and named path segments
// ("GET /api/students/{id}"); a literal segment such as /search takes
// precedence over {id}.
func New(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	guard := func(perm string, h http.HandlerFunc) http.Handler {
		if !d.RequireAuth {
			return h
		}
		return middleware.RequirePermission(d.Auth, perm)(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.OK())
	})

	// Students
	mux.Handle("POST /api/students", guard(types.PermEditStudent, student.New(d.Students)))
	mux.HandleFunc("GET /api/students", student.GetList(d.Students))
	mux.HandleFunc("GET /api/students/search", student.Search(d.Students))
	mux.HandleFunc("GET /api/students/statistics", student.Statistics(d.Students))
	mux.HandleFunc("GET /api/students/{id}", student.GetByID(d.Students))
	mux.Handle("PUT /api/students/{id}", guard(types.PermEditStudent, student.Update(d.Students)))
	mux.Handle("DELETE /api/students/{id}", guard(types.PermEditStudent, student.Delete(d.Students)))
	mux.HandleFunc("GET /api/students/{id}/grades", grade.ByStudent(d.Grades))
	mux.HandleFunc("GET /api/students/{id}/gpa", grade.StudentGPA(d.Grades))

	// Grades
	mux.Handle("POST /api/grades", guard(types.PermEditGrade, grade.New(d.Grades)))
	mux.HandleFunc("GET /api/grades", grade.GetList(d.Grades))
	mux.HandleFunc("GET /api/grades/{id}", grade.GetByID(d.Grades))
	mux.Handle("PUT /api/grades/{id}", guard(types.PermEditGrade, grade.Update(d.Grades)))
	mux.Handle("DELETE /api/grades/{id}", guard(types.PermEditGrade, grade.Delete(d.Grades)))

	// Accounts
	mux.HandleFunc("POST /api/auth/login", auth.Login(d.Auth))
	// Account creation always needs an admin, even when RequireAuth is off.
	mux.Handle("POST /api/auth/register",
		middleware.RequirePermission(d.Auth, types.PermManageUsers)(auth.Register(d.Auth)))
	mux.HandleFunc("PUT /api/auth/password", auth.ChangePassword(d.Auth))

	return middleware.Chain(mux,
		middleware.Recoverer(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
	)
}
