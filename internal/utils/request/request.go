// Package request decodes JSON request bodies and reads path and query
// parameters. Every failure is a types.ErrValidation domain error, so
// response.Error answers it with 400.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gun2717/StudentManagement/internal/types"
)

// MaxBodyBytes bounds every decoded body.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes the body of r into v. Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		// io.EOF means the body was completely empty, nothing to decode.
		return types.NewDomainError("DecodeJSON", types.ErrValidation, "request body is empty")
	}
	if err != nil {
		return types.NewDomainError("DecodeJSON", types.ErrValidation, "invalid request body: %s", err.Error())
	}
	return nil
}

// PathInt64 parses the named path segment as a positive integer id.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewDomainError("PathInt64", types.ErrValidation, "invalid %s: must be a positive integer", name)
	}
	return id, nil
}

// QueryFloat parses an optional float query parameter. It returns nil
// when the parameter is absent or blank.
func QueryFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, types.NewDomainError("QueryFloat", types.ErrValidation, "invalid %s: must be a number", name)
	}
	return &f, nil
}
