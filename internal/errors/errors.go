// Package errors is the error type handlers return so the server knows
// which status code and message to send back.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Err     error
	Details []Detail
}

// Detail points at one bad field of a request.
type Detail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func Field(field, problem string) Detail {
	return Detail{Field: field, Error: problem}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s, details: %v", e.Status, e.message(), e.Details)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Falls back to the status text so a bare status still says something.
func (e *Error) message() string {
	if e.Err == nil {
		return http.StatusText(e.Status)
	}

	return e.Err.Error()
}

type response struct {
	Message string   `json:"message"`
	Details []Detail `json:"details"`
	Status  int      `json:"status"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(response{
		Message: e.message(),
		Details: e.Details,
		Status:  e.Status,
	})
}

func (e *Error) UnmarshalJSON(byts []byte) error {
	r := response{}
	if err := json.Unmarshal(byts, &r); err != nil {
		return err
	}

	e.Err = errors.New(r.Message)
	e.Details = r.Details
	e.Status = r.Status
	return nil
}

// E builds an [Error] from strings/errors (the message), an int (the status,
// 500 if absent) and details.
func E(args ...any) *Error {
	ret := &Error{Status: http.StatusInternalServerError}

	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			ret.Err = errors.New(arg)
		case error:
			ret.Err = arg
		case int:
			ret.Status = arg
		case Detail:
			ret.Details = append(ret.Details, arg)
		case []Detail:
			ret.Details = append(ret.Details, arg...)
		}
	}

	return ret
}
