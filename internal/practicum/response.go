package practicum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Homework is one submission as reported by the API.
type Homework struct {
	ID              int64  `json:"id"`
	Name            string `json:"homework_name"`
	Status          string `json:"status" validate:"required"`
	LessonName      string `json:"lesson_name"`
	ReviewerComment string `json:"reviewer_comment"`
	DateUpdated     string `json:"date_updated"`
}

// Response is a checked poll answer. CurrentDate is nil when the server did
// not send a usable integer.
type Response struct {
	Homeworks   []Homework
	CurrentDate *int64
}

// envelope keeps each top-level value raw so presence and type are checked
// separately for both keys.
type envelope struct {
	Homeworks   json.RawMessage `json:"homeworks" validate:"required"`
	CurrentDate json.RawMessage `json:"current_date" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CheckResponse decodes a poll body and reports every shape problem at once.
// The returned Response carries CurrentDate whenever it could be read, even
// when err is non-nil.
func CheckResponse(body []byte) (Response, error) {
	if isNull(body) {
		return Response{}, &ValidationError{Problems: []Problem{{Kind: ErrWrongType, Detail: "expected an object, got null"}}}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return Response{}, &ValidationError{Problems: []Problem{{
				Kind:   ErrWrongType,
				Detail: "expected an object, got " + typeErr.Value,
			}}}
		}
		return Response{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var (
		resp     Response
		problems = requiredProblems(&env)
	)

	if env.CurrentDate != nil {
		var ts int64
		if isNull(env.CurrentDate) || json.Unmarshal(env.CurrentDate, &ts) != nil {
			problems = append(problems, Problem{Field: "current_date", Kind: ErrWrongType, Detail: "expected an integer"})
		} else {
			resp.CurrentDate = &ts
		}
	}

	if env.Homeworks != nil {
		homeworks, hwProblems := decodeHomeworks(env.Homeworks)
		problems = append(problems, hwProblems...)
		resp.Homeworks = homeworks
	}

	if len(problems) > 0 {
		resp.Homeworks = nil
		return resp, &ValidationError{Problems: problems}
	}
	return resp, nil
}

func decodeHomeworks(raw json.RawMessage) ([]Homework, []Problem) {
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return nil, []Problem{{Field: "homeworks", Kind: ErrWrongType, Detail: "expected a list"}}
	}

	var problems []Problem
	homeworks := make([]Homework, 0, len(items))
	for i, item := range items {
		var hw Homework
		if isNull(item) || json.Unmarshal(item, &hw) != nil {
			problems = append(problems, Problem{
				Field:  fmt.Sprintf("homeworks[%d]", i),
				Kind:   ErrWrongType,
				Detail: "expected a homework object",
			})
			continue
		}
		homeworks = append(homeworks, hw)
	}
	return homeworks, problems
}

// requiredProblems translates validator findings into problems.
func requiredProblems(s any) []Problem {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Problem{{Kind: ErrWrongType, Detail: err.Error()}}
	}
	problems := make([]Problem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		kind := ErrWrongType
		if fe.Tag() == "required" {
			kind = ErrMissingKey
		}
		problems = append(problems, Problem{Field: fe.Field(), Kind: kind})
	}
	return problems
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
