// Package handlers содержит общие помощники HTTP-слоя: разбор запросов
// и единый формат ответов об ошибках
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// ErrorResponse единый формат тела ошибки
type ErrorResponse struct {
	Message string `json:"message"`
	// Код нарушенного правила объекта, только для 422
	Rule string `json:"rule,omitempty"`
	// Занятые интервалы, только для конфликтов времени
	BusyRanges []BusyRange `json:"busyRanges,omitempty"`
}

// BusyRange занятый интервал в ответе о конфликте
// Личность заявителя пересекающейся записи не раскрывается
type BusyRange struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// DecodeJSON разбирает тело запроса в v
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// RespondJSON пишет ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError пишет ошибку с указанным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondBadRequest пишет 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondUnauthorized пишет 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden пишет 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondNotFound пишет 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondInternalError пишет 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, "внутренняя ошибка сервиса")
}

// RespondServiceUnavailable пишет 503; операция безопасна для повтора
func RespondServiceUnavailable(w http.ResponseWriter, message string) {
	w.Header().Set("Retry-After", "1")
	RespondError(w, http.StatusServiceUnavailable, message)
}

// RespondDomainError обрабатывает ошибки правил и конфликтов доменного слоя
// Возвращает true, если ошибка распознана и ответ записан
func RespondDomainError(w http.ResponseWriter, err error) bool {
	var ruleErr *domain.RuleError
	if errors.As(err, &ruleErr) {
		RespondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: fmt.Sprintf("заявка нарушает правило объекта: %s", ruleErr.Detail),
			Rule:    string(ruleErr.Rule),
		})
		return true
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		ranges := make([]BusyRange, 0, len(conflictErr.Ranges))
		for _, rg := range conflictErr.Ranges {
			ranges = append(ranges, BusyRange{StartsAt: rg.StartsAt, EndsAt: rg.EndsAt})
		}
		RespondJSON(w, http.StatusConflict, ErrorResponse{
			Message:    "выбранное время уже занято",
			BusyRanges: ranges,
		})
		return true
	}

	if errors.Is(err, domain.ErrIllegalTransition) {
		RespondError(w, http.StatusConflict, "операция недопустима для текущего статуса")
		return true
	}
	if errors.Is(err, domain.ErrActorNotAllowed) {
		RespondForbidden(w, "операция недоступна для вашей роли")
		return true
	}

	return false
}
