package domain

// Role роль действующего лица
type Role string

const (
	// RoleResident житель, бронирует от имени своей квартиры
	RoleResident Role = "resident"
	// RoleManager управляющий кондоминиумом
	RoleManager Role = "manager"
	// RoleSystem системные переходы (фоновое завершение, авто-подтверждение)
	RoleSystem Role = "system"
)

// Identity аутентифицированный контекст запроса
// Заполняется пограничным слоем (middleware) из заголовков, ядро ему доверяет
type Identity struct {
	UserID  int64
	UnitID  *int64 // у управляющего может отсутствовать
	CondoID int64
	Role    Role
}

// IsManager возвращает true для управляющего
func (id Identity) IsManager() bool {
	return id.Role == RoleManager
}
