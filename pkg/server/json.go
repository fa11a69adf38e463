package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errResponse struct {
	Error errDetail `json:"error"`
}

type errDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func errorBody(code errors.Code, msg string) errResponse {
	return errResponse{Error: errDetail{Code: code, Message: msg}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to its HTTP status.
func statusFor(err error) int {
	code := errors.GetCode(err)
	switch code.Kind() {
	case errors.KindInvalid:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	}
	switch code {
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), errorBody(code, errors.UserMessage(err)))
}

// decodeBody decodes a JSON request body into v and validates it when v
// implements [validation.Validatable]. Failures carry INVALID_INPUT unless
// a field decoder reported a more specific code.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooBig):
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooBig.Limit)
		case errors.GetCode(err) != "":
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body: %v", err)
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			if errors.GetCode(err) != "" {
				return err
			}
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", err.Error())
		}
	}
	return nil
}
