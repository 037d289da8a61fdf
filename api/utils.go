package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"
)

const maxRequestBodyBytes = 1 << 20

const timeoutHint = "Narrow the date range or add filters, then try again."

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Hint      string `json:"hint,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func decodeBody(res http.ResponseWriter, req *http.Request, target any) error {
	body := http.MaxBytesReader(res, req.Body, maxRequestBodyBytes)
	defer body.Close()

	return json.NewDecoder(body).Decode(target)
}

// Maps the error kinds returned by db.AnalyticsDB to status codes.
func sendQueryError(res http.ResponseWriter, req *http.Request, err error, message string) {
	var invalidFilterErr *db.InvalidFilterError
	var timeoutErr *db.TimeoutError

	switch {
	case errors.As(err, &invalidFilterErr):
		log.Debug(
			"rejected invalid filter",
			slog.String("field", invalidFilterErr.Field),
			slog.String("requestId", requestIDFromContext(req.Context())),
		)
		sendErrorResponse(res, req, http.StatusBadRequest, errorResponse{
			Error: wrap.Error(err, message).Error(),
			Field: invalidFilterErr.Field,
		})
	case errors.As(err, &timeoutErr):
		log.ErrorCause(
			err, message, slog.String("requestId", requestIDFromContext(req.Context())),
		)
		sendErrorResponse(res, req, http.StatusGatewayTimeout, errorResponse{
			Error: message + ": query timed out",
			Hint:  timeoutHint,
		})
	default:
		sendServerError(res, req, err, message)
	}
}

func sendClientError(res http.ResponseWriter, req *http.Request, err error, message string) {
	if err != nil {
		message = wrap.Error(err, message).Error()
	}

	sendErrorResponse(res, req, http.StatusBadRequest, errorResponse{Error: message})
}

// Logs the cause, but leaves it out of the response, as it may contain database internals.
func sendServerError(res http.ResponseWriter, req *http.Request, err error, message string) {
	log.ErrorCause(err, message, slog.String("requestId", requestIDFromContext(req.Context())))
	sendErrorResponse(res, req, http.StatusInternalServerError, errorResponse{Error: message})
}

func sendErrorResponse(
	res http.ResponseWriter,
	req *http.Request,
	statusCode int,
	body errorResponse,
) {
	body.RequestID = requestIDFromContext(req.Context())
	writeJSON(res, statusCode, body)
}

func sendJSON(res http.ResponseWriter, req *http.Request, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		sendServerError(res, req, err, "failed to serialize response")
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(body); err != nil {
		log.ErrorCause(err, "failed to write response")
	}
}

func writeJSON(res http.ResponseWriter, statusCode int, value any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)

	if err := json.NewEncoder(res).Encode(value); err != nil {
		log.ErrorCause(err, "failed to write error response")
	}
}
