package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gun2717/StudentManagement/internal/types"
	"github.com/Gun2717/StudentManagement/internal/utils/response"
)

// Authenticator verifies HTTP Basic credentials and answers permission
// questions. *service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (types.User, error)
	HasPermission(u types.User, perm string) bool
}

var errNoCredentials = types.NewDomainError("RequirePermission", types.ErrInvalidCredentials, "authentication required")

type userKey struct{}

// UserFrom returns the user RequirePermission authenticated, if any.
func UserFrom(ctx context.Context) (types.User, bool) {
	u, ok := ctx.Value(userKey{}).(types.User)
	return u, ok
}

// RequirePermission authenticates the request with HTTP Basic auth and
// lets it through only when the user holds perm. Missing or wrong
// credentials get 401, a locked account or a missing permission 403.
func RequirePermission(auth Authenticator, perm string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="student-management"`)
				response.Error(w, r, errNoCredentials)
				return
			}

			u, err := auth.Authenticate(r.Context(), username, password)
			if err != nil {
				response.Error(w, r, err)
				return
			}
			if !auth.HasPermission(u, perm) {
				response.WriteJSON(w, http.StatusForbidden, response.GeneralError(fmt.Errorf("permission denied: %s", perm)))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
		})
	}
}
