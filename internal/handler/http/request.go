package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

// actorID is the employee_id claim stored by middleware.AuthRequired.
func actorID(r *http.Request) string {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	return claims.EmployeeID
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, r, "Invalid request format", nil)
		return false
	}
	return true
}

// validateIDs takes field, value pairs and reports every non-empty value
// that is not a UUID. Empty values are left to the request's own Validate.
func validateIDs(pairs ...string) error {
	var errs validator.ValidationErrors
	for i := 0; i+1 < len(pairs); i += 2 {
		field, value := pairs[i], pairs[i+1]
		if value != "" && !validator.IsValidUUID(value) {
			errs.Add(field, field+" must be a valid UUID")
		}
	}
	return errs.Err()
}

// yearQuery reads ?year=, falling back to the current year.
func yearQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	return parseYear(raw)
}

// optionalYearQuery reads ?year= and returns nil when it is absent.
func optionalYearQuery(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return nil, nil
	}
	year, err := parseYear(raw)
	if err != nil {
		return nil, err
	}
	return &year, nil
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil || !validator.IsValidYear(year) {
		var errs validator.ValidationErrors
		errs.Add("year", "year must be between 2000 and 2100")
		return 0, errs
	}
	return year, nil
}
