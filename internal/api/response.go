package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/lucaCambi77/valr/pkg/errors"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := toResponse(err)
	writeJSON(w, status, body)
}

// toResponse maps a usecase error to its status code by the error code it
// carries. Anything without a known code is an internal error.
func toResponse(err error) (int, errorResponse) {
	var details *errors.ErrorDetails
	if stderrors.As(err, &details) {
		return statusFor(details.Code), errorResponse{Code: details.Code, Message: details.Message}
	}

	var base *errors.BaseError
	if stderrors.As(err, &base) && base.HasDetails() {
		first := base.GetDetails()[0]
		return statusFor(first.Code), errorResponse{Code: first.Code, Message: base.Error()}
	}

	return http.StatusInternalServerError, errorResponse{
		Code:    string(errors.GeneralInternalServerError),
		Message: "internal server error",
	}
}

func statusFor(code string) int {
	switch errors.ErrorCode(code) {
	case errors.UnknownPairError, errors.UnknownUserError, errors.OrderNotFoundError, errors.GeneralNotFoundError:
		return http.StatusNotFound
	case errors.InvalidOrderError, errors.DuplicateOrderError, errors.GeneralBadRequestError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(message string) *errors.ErrorDetails {
	return errors.NewErrorDetails(message, string(errors.GeneralBadRequestError), "")
}
