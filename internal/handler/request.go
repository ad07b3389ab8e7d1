package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/rental-api/internal/domain"
)

// newValidator returns a validator that reports fields by their JSON names
// and understands the notblank and nonul tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs struct validation on it.
// It writes the error response itself and reports whether the handler
// should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var (
			maxErr  *http.MaxBytesError
			typeErr *json.UnmarshalTypeError
			synErr  *json.SyntaxError
		)
		switch {
		case errors.As(err, &maxErr):
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		case errors.Is(err, io.EOF):
			writeDetail(w, http.StatusBadRequest, "Request body is required.")
		case errors.As(err, &typeErr):
			writeJSON(w, http.StatusBadRequest, errorBody{
				Detail: "Invalid input.",
				Errors: map[string]string{typeErr.Field: fmt.Sprintf("Expected %s.", typeErr.Type)},
			})
		case errors.As(err, &synErr), errors.Is(err, io.ErrUnexpectedEOF):
			writeDetail(w, http.StatusBadRequest, "JSON parse error.")
		default:
			writeDetail(w, http.StatusBadRequest, err.Error())
		}
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeDetail(w, http.StatusBadRequest, "Invalid input.")
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid input.", Errors: fields})
		return false
	}
	return true
}

// fieldMessage renders a validator failure as a client-facing sentence.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "notblank":
		return "This field may not be blank."
	case "nonul":
		return nulMessage
	default:
		return "Invalid value."
	}
}

// pathID binds the {id} URL parameter. Malformed ids cannot name a record,
// so they are answered with 404 like any other unknown id.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return uuid.Nil, false
	}
	return id, true
}

// queryBinder binds optional form-style query parameters and collects every
// failure so that they are reported together.
type queryBinder struct {
	r      *http.Request
	errors map[string]string
}

func newQueryBinder(r *http.Request) *queryBinder {
	return &queryBinder{r: r, errors: map[string]string{}}
}

const nulMessage = "Null characters are not allowed."

// storable rejects text Postgres cannot hold in a text column.
func (b *queryBinder) storable(name string) bool {
	for _, v := range b.r.URL.Query()[name] {
		if !utf8.ValidString(v) || strings.ContainsRune(v, 0) {
			b.errors[name] = nulMessage
			return false
		}
	}
	return true
}

// bind fills dest (a pointer to a pointer) when name is present.
func (b *queryBinder) bind(name string, dest any) {
	if !b.storable(name) {
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, name, b.r.URL.Query(), dest); err != nil {
		b.errors[name] = "Enter a valid value."
	}
}

// raw returns the first value of name, or "" when absent or unusable.
func (b *queryBinder) raw(name string) string {
	if !b.storable(name) {
		return ""
	}
	return b.r.URL.Query().Get(name)
}

// pagination binds the optional page and limit parameters.
func (b *queryBinder) pagination() domain.PaginationParams {
	var page, limit *int
	b.bind("page", &page)
	b.bind("limit", &limit)
	return domain.NewPaginationParams(page, limit)
}

// ok writes a 400 listing every bad parameter when binding failed.
func (b *queryBinder) ok(w http.ResponseWriter) bool {
	if len(b.errors) == 0 {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid query parameters.", Errors: b.errors})
	return false
}
