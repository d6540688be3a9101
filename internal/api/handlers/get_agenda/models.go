package get_agenda

import (
	"time"

	buildAgenda "github.com/m04kA/SMC-AmenityService/internal/usecase/build_agenda"
)

// AgendaEntryResponse HTTP модель одной записи повестки
type AgendaEntryResponse struct {
	ItemID   int64  `json:"itemId"`
	AreaID   int64  `json:"areaId"`
	AreaName string `json:"areaName"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`

	UnitID *int64 `json:"unitId,omitempty"`
	UserID *int64 `json:"userId,omitempty"`
}

// DaySummaryResponse занятость одного дня
type DaySummaryResponse struct {
	Day       int    `json:"day"`
	Occupancy string `json:"occupancy"`
}

// AgendaResponse HTTP модель повестки месяца
type AgendaResponse struct {
	Month   string                `json:"month"`
	Entries []AgendaEntryResponse `json:"entries"`
	Days    []DaySummaryResponse  `json:"days"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *buildAgenda.Response) *AgendaResponse {
	out := &AgendaResponse{
		Month:   resp.Month,
		Entries: make([]AgendaEntryResponse, 0, len(resp.Entries)),
		Days:    make([]DaySummaryResponse, 0, len(resp.Days)),
	}

	for _, e := range resp.Entries {
		out.Entries = append(out.Entries, AgendaEntryResponse{
			ItemID:   e.ItemID,
			AreaID:   e.AreaID,
			AreaName: e.AreaName,
			Kind:     e.Kind,
			Status:   e.Status,
			StartsAt: e.StartsAt.Format(time.RFC3339),
			EndsAt:   e.EndsAt.Format(time.RFC3339),
			UnitID:   e.UnitID,
			UserID:   e.UserID,
		})
	}

	for _, d := range resp.Days {
		out.Days = append(out.Days, DaySummaryResponse{
			Day:       d.Day,
			Occupancy: string(d.Occupancy),
		})
	}

	return out
}
