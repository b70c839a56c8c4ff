package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP statuses. Declines never pass
// through here: a declined transaction is a 200 with status "declined".
func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		switch domainErr.Code {
		case domain.ErrCodeUnsupportedOperation:
			status = http.StatusNotImplemented
		case domain.ErrCodeMappingError:
			status = http.StatusBadRequest
		case domain.ErrCodeIntegrityError:
			status = http.StatusBadRequest
		case domain.ErrCodeSessionNotFound:
			status = http.StatusNotFound
		case domain.ErrCodeTransportError:
			status = http.StatusBadGateway
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Info("request rejected", "code", code, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "BAD_REQUEST",
			Message: "invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}
