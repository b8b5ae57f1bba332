package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

const maxJSONBodySize = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewErrorResponse(message, details string) *ErrorResponse {
	return &ErrorResponse{
		Error:   message,
		Details: details,
	}
}

// ToHTTPResponse возвращает статус и текст ошибки для клиента.
// Для 400 и 404 клиент видит сообщение валидации, для 500 только общий текст.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrProjectNotFound):
		return http.StatusNotFound, e.ErrProjectNotFound.Error()
	case errors.Is(err, e.ErrAssetNotFound):
		return http.StatusNotFound, e.ErrAssetNotFound.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// validationMessage отрезает префиксы op из цепочки Wrap: "UseCase.Op: validation failed: x" -> "validation failed: x".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, e.ErrValidation.Error()); i >= 0 {
		return msg[i:]
	}

	return msg
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg, ""))
}

func WriteErrorDetails(w http.ResponseWriter, code int, message, details string) {
	WriteSuccess(w, code, NewErrorResponse(message, details))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Любая ошибка разбора это ErrStatusBadRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxSize int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err))
	}

	return nil
}

// parseListReq читает limit, offset и search. Некорректные числа дают ErrInvalidPagination,
// границы проверяет usecase.
func parseListReq(r *http.Request) (usecase.ListReq, error) {
	q := r.URL.Query()
	req := usecase.ListReq{Search: strings.TrimSpace(q.Get("search"))}

	var err error
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return req, e.ErrInvalidPagination
		}
	}
	if v := q.Get("offset"); v != "" {
		if req.Offset, err = strconv.Atoi(v); err != nil {
			return req, e.ErrInvalidPagination
		}
	}

	return req, nil
}

// parseTags разбирает tags=a,b,c.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}
