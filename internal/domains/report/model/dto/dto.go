package dto

import (
	"hotel/internal/domains/booking/model"
	"time"

	"github.com/shopspring/decimal"
)

const monthsInReport = 12

type StatusStat struct {
	Status     model.Status    `json:"status"`
	Count      int             `json:"count"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"number"`
}

type MonthlyStat struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue" swaggertype:"number"`
}

type BookingStatsResponse struct {
	TotalBookings   int             `json:"total_bookings"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"    swaggertype:"number"`
	StatusBreakdown []StatusStat    `json:"status_breakdown"`
	MonthlyStats    []MonthlyStat   `json:"monthly_stats"`
}

// FromStatuses reports every known status, zero when no booking has it.
func (r *BookingStatsResponse) FromStatuses(rows []model.StatusSummary) {
	byStatus := make(map[model.Status]model.StatusSummary, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	r.TotalBookings = 0
	r.StatusBreakdown = make([]StatusStat, len(model.Statuses))

	for i, status := range model.Statuses {
		row := byStatus[status]

		r.StatusBreakdown[i] = StatusStat{Status: status, Count: row.Count, TotalPrice: row.TotalPrice}
		r.TotalBookings += row.Count
	}
}

// FromMonths lays out the twelve months starting at from, filling months
// without bookings with zeros.
func (r *BookingStatsResponse) FromMonths(from time.Time, rows []model.MonthlySummary) {
	type key struct{ year, month int }

	byMonth := make(map[key]model.MonthlySummary, len(rows))
	for _, row := range rows {
		byMonth[key{row.Year, row.Month}] = row
	}

	r.MonthlyStats = make([]MonthlyStat, monthsInReport)

	for i := range monthsInReport {
		month := from.AddDate(0, i, 0)
		row := byMonth[key{month.Year(), int(month.Month())}]

		r.MonthlyStats[i] = MonthlyStat{
			Year:    month.Year(),
			Month:   int(month.Month()),
			Count:   row.Count,
			Revenue: row.Revenue,
		}
	}
}
