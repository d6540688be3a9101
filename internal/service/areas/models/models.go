package models

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/pkg/types"
)

// Request модели

// CreateAreaRequest запрос на создание объекта
type CreateAreaRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`

	OpensAt  string `json:"opensAt"`  // HH:MM
	ClosesAt string `json:"closesAt"` // HH:MM, 24:00 = до конца суток

	MinDurationMinutes *int `json:"minDurationMinutes,omitempty"`
	MaxDurationMinutes *int `json:"maxDurationMinutes,omitempty"`
	MinNoticeMinutes   *int `json:"minNoticeMinutes,omitempty"`
	MaxAdvanceDays     *int `json:"maxAdvanceDays,omitempty"` // 0 = без ограничения

	BlackoutWeekdays []int `json:"blackoutWeekdays,omitempty"` // 0 = воскресенье

	MonthlyQuotaPerUnit int `json:"monthlyQuotaPerUnit"` // 0 = без ограничения

	AutoApprove         bool `json:"autoApprove"`
	AutoConfirm         bool `json:"autoConfirm"`
	CancelCutoffMinutes *int `json:"cancelCutoffMinutes,omitempty"`
}

// UpdateAreaRequest запрос на обновление объекта
// Все поля опциональны - обновляются только переданные значения
// Новые правила применяются только к будущим заявкам
type UpdateAreaRequest struct {
	Name     *string `json:"name,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`

	OpensAt  *string `json:"opensAt,omitempty"`
	ClosesAt *string `json:"closesAt,omitempty"`

	MinDurationMinutes *int `json:"minDurationMinutes,omitempty"`
	MaxDurationMinutes *int `json:"maxDurationMinutes,omitempty"`
	MinNoticeMinutes   *int `json:"minNoticeMinutes,omitempty"`
	MaxAdvanceDays     *int `json:"maxAdvanceDays,omitempty"`

	BlackoutWeekdays *[]int `json:"blackoutWeekdays,omitempty"`

	MonthlyQuotaPerUnit *int `json:"monthlyQuotaPerUnit,omitempty"`

	AutoApprove         *bool `json:"autoApprove,omitempty"`
	AutoConfirm         *bool `json:"autoConfirm,omitempty"`
	CancelCutoffMinutes *int  `json:"cancelCutoffMinutes,omitempty"`
}

// Response модели

// AreaResponse ответ с данными объекта
type AreaResponse struct {
	ID      int64  `json:"id"`
	CondoID int64  `json:"condoId"`
	Name    string `json:"name"`

	Capacity int `json:"capacity"`

	OpensAt  string `json:"opensAt"`
	ClosesAt string `json:"closesAt"`

	MinDurationMinutes int `json:"minDurationMinutes"`
	MaxDurationMinutes int `json:"maxDurationMinutes"`
	MinNoticeMinutes   int `json:"minNoticeMinutes"`
	MaxAdvanceDays     int `json:"maxAdvanceDays"`

	BlackoutWeekdays []int `json:"blackoutWeekdays"`

	MonthlyQuotaPerUnit int `json:"monthlyQuotaPerUnit"`

	AutoApprove         bool `json:"autoApprove"`
	AutoConfirm         bool `json:"autoConfirm"`
	CancelCutoffMinutes int  `json:"cancelCutoffMinutes"`

	Active bool `json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AreaListResponse ответ со списком объектов
type AreaListResponse struct {
	Areas []AreaResponse `json:"areas"`
}

// Методы конвертации

// ToDomainArea конвертирует запрос создания в domain модель
// Непереданные значения заполняются значениями по умолчанию
func (r *CreateAreaRequest) ToDomainArea(condoID int64) *domain.CommonArea {
	area := &domain.CommonArea{
		CondoID:             condoID,
		Name:                r.Name,
		Capacity:            r.Capacity,
		OpensAt:             types.TimeString(r.OpensAt),
		ClosesAt:            types.TimeString(r.ClosesAt),
		MinDurationMinutes:  domain.DefaultMinDurationMinutes,
		MaxDurationMinutes:  domain.DefaultMaxDurationMinutes,
		MinNoticeMinutes:    domain.DefaultMinNoticeMinutes,
		MaxAdvanceDays:      domain.DefaultMaxAdvanceDays,
		BlackoutWeekdays:    toWeekdays(r.BlackoutWeekdays),
		MonthlyQuotaPerUnit: r.MonthlyQuotaPerUnit,
		AutoApprove:         r.AutoApprove,
		AutoConfirm:         r.AutoConfirm,
		CancelCutoffMinutes: domain.DefaultCancelCutoffMinutes,
		Active:              true,
	}

	if r.MinDurationMinutes != nil {
		area.MinDurationMinutes = *r.MinDurationMinutes
	}
	if r.MaxDurationMinutes != nil {
		area.MaxDurationMinutes = *r.MaxDurationMinutes
	}
	if r.MinNoticeMinutes != nil {
		area.MinNoticeMinutes = *r.MinNoticeMinutes
	}
	if r.MaxAdvanceDays != nil {
		area.MaxAdvanceDays = *r.MaxAdvanceDays
	}
	if r.CancelCutoffMinutes != nil {
		area.CancelCutoffMinutes = *r.CancelCutoffMinutes
	}

	return area
}

// ApplyToArea применяет частичное обновление к domain модели
func (r *UpdateAreaRequest) ApplyToArea(area *domain.CommonArea) {
	if r.Name != nil {
		area.Name = *r.Name
	}
	if r.Capacity != nil {
		area.Capacity = *r.Capacity
	}
	if r.OpensAt != nil {
		area.OpensAt = types.TimeString(*r.OpensAt)
	}
	if r.ClosesAt != nil {
		area.ClosesAt = types.TimeString(*r.ClosesAt)
	}
	if r.MinDurationMinutes != nil {
		area.MinDurationMinutes = *r.MinDurationMinutes
	}
	if r.MaxDurationMinutes != nil {
		area.MaxDurationMinutes = *r.MaxDurationMinutes
	}
	if r.MinNoticeMinutes != nil {
		area.MinNoticeMinutes = *r.MinNoticeMinutes
	}
	if r.MaxAdvanceDays != nil {
		area.MaxAdvanceDays = *r.MaxAdvanceDays
	}
	if r.BlackoutWeekdays != nil {
		area.BlackoutWeekdays = toWeekdays(*r.BlackoutWeekdays)
	}
	if r.MonthlyQuotaPerUnit != nil {
		area.MonthlyQuotaPerUnit = *r.MonthlyQuotaPerUnit
	}
	if r.AutoApprove != nil {
		area.AutoApprove = *r.AutoApprove
	}
	if r.AutoConfirm != nil {
		area.AutoConfirm = *r.AutoConfirm
	}
	if r.CancelCutoffMinutes != nil {
		area.CancelCutoffMinutes = *r.CancelCutoffMinutes
	}
}

// FromDomainArea конвертирует domain модель в DTO
func FromDomainArea(a *domain.CommonArea) *AreaResponse {
	if a == nil {
		return nil
	}

	return &AreaResponse{
		ID:                  a.ID,
		CondoID:             a.CondoID,
		Name:                a.Name,
		Capacity:            a.Capacity,
		OpensAt:             string(a.OpensAt),
		ClosesAt:            string(a.ClosesAt),
		MinDurationMinutes:  a.MinDurationMinutes,
		MaxDurationMinutes:  a.MaxDurationMinutes,
		MinNoticeMinutes:    a.MinNoticeMinutes,
		MaxAdvanceDays:      a.MaxAdvanceDays,
		BlackoutWeekdays:    fromWeekdays(a.BlackoutWeekdays),
		MonthlyQuotaPerUnit: a.MonthlyQuotaPerUnit,
		AutoApprove:         a.AutoApprove,
		AutoConfirm:         a.AutoConfirm,
		CancelCutoffMinutes: a.CancelCutoffMinutes,
		Active:              a.Active,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// FromDomainAreaList конвертирует список domain моделей в DTO
func FromDomainAreaList(areas []*domain.CommonArea) *AreaListResponse {
	resp := &AreaListResponse{Areas: make([]AreaResponse, 0, len(areas))}
	for _, a := range areas {
		resp.Areas = append(resp.Areas, *FromDomainArea(a))
	}
	return resp
}

func toWeekdays(days []int) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}

func fromWeekdays(days []time.Weekday) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}
