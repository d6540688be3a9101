// Package middleware содержит HTTP middleware: аутентификация по заголовкам
// шлюза, идентификатор запроса и метрики
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// Auth извлекает личность пользователя из заголовков шлюза
// Шлюз уже проверил подпись; сервис доверяет X-User-ID, X-Condo-ID,
// X-Unit-ID и X-Role
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "отсутствует ID пользователя")
			return
		}

		condoID, err := strconv.ParseInt(r.Header.Get("X-Condo-ID"), 10, 64)
		if err != nil || condoID <= 0 {
			handlers.RespondUnauthorized(w, "отсутствует ID кондоминиума")
			return
		}

		identity := domain.Identity{
			UserID:  userID,
			CondoID: condoID,
			Role:    domain.RoleResident,
		}

		if unitStr := r.Header.Get("X-Unit-ID"); unitStr != "" {
			unitID, err := strconv.ParseInt(unitStr, 10, 64)
			if err != nil || unitID <= 0 {
				handlers.RespondUnauthorized(w, "некорректный ID квартиры")
				return
			}
			identity.UnitID = &unitID
		}

		switch role := r.Header.Get("X-Role"); role {
		case "", string(domain.RoleResident):
		case string(domain.RoleManager):
			identity.Role = domain.RoleManager
		default:
			handlers.RespondUnauthorized(w, "некорректная роль пользователя")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity возвращает личность пользователя из контекста запроса
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
