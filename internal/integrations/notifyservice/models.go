package notifyservice

// RecipientSelector адресат уведомления
// Либо конкретный пользователь, либо все управляющие кондоминиума
type RecipientSelector struct {
	CondoID       int64  `json:"condo_id"`
	UserID        *int64 `json:"user_id,omitempty"`
	UnitID        *int64 `json:"unit_id,omitempty"`
	CondoManagers bool   `json:"condo_managers,omitempty"`
}

// Notification уведомление для NotifyService
type Notification struct {
	MessageID string            `json:"message_id"`
	Recipient RecipientSelector `json:"recipient"`
	Event     string            `json:"event"`
	Message   string            `json:"message"`
}

// События, по которым ядро отправляет уведомления
const (
	EventBookingRequested = "booking_requested"
	EventBookingApproved  = "booking_approved"
	EventBookingRejected  = "booking_rejected"
	EventBookingCancelled = "booking_cancelled"
	EventBlockPlaced      = "block_placed"
)

// ErrorResponse модель ошибки от NotifyService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
