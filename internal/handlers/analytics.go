package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/models"
)

type AnalyticsHandler struct {
	DB *gorm.DB
}

// CategorySummary is one row of the monthly report: cash in/out per category
// against the configured budget.
type CategorySummary struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	TotalIn      float64 `json:"total_in"`
	TotalOut     float64 `json:"total_out"`
	Budget       float64 `json:"budget"`
	Remaining    float64 `json:"remaining"`
}

// Summary aggregates flow logs for one warehouse and month, grouped by
// category, and joins in the matching budget rows.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	warehouse := c.QueryParam("warehouse")
	month := c.QueryParam("month")
	if warehouse == "" || month == "" {
		return fail(c, http.StatusBadRequest, "warehouse and month are required", "")
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return fail(c, http.StatusBadRequest, "month must be formatted YYYY-MM", "")
	}
	end := start.AddDate(0, 1, 0)

	type flowRow struct {
		CategoryID uint
		Kind       string
		Total      float64
	}
	var flows []flowRow
	if err := h.DB.Model(&models.FlowLog{}).
		Select("category_id, kind, SUM(amount) AS total").
		Where("warehouse_id = ? AND occurred_at >= ? AND occurred_at < ?", warehouse, start, end).
		Group("category_id, kind").
		Scan(&flows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot aggregate flow logs", "")
	}

	var budgets []models.Budget
	if err := h.DB.Where("warehouse_id = ? AND month = ?", warehouse, month).Find(&budgets).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot load budgets", "")
	}

	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot load categories", "")
	}
	names := make(map[uint]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	rows := map[uint]*CategorySummary{}
	get := func(id uint) *CategorySummary {
		if r, ok := rows[id]; ok {
			return r
		}
		r := &CategorySummary{CategoryID: id, CategoryName: names[id]}
		rows[id] = r
		return r
	}

	for _, f := range flows {
		r := get(f.CategoryID)
		if f.Kind == models.FlowIn {
			r.TotalIn = f.Total
		} else {
			r.TotalOut = f.Total
		}
	}
	for _, b := range budgets {
		get(b.CategoryID).Budget = b.Amount
	}

	out := make([]CategorySummary, 0, len(rows))
	for _, r := range rows {
		r.Remaining = r.Budget - r.TotalOut
		out = append(out, *r)
	}
	sortSummaries(out)

	return c.JSON(http.StatusOK, echo.Map{
		"warehouse_id": warehouse,
		"month":        month,
		"categories":   out,
	})
}

func sortSummaries(s []CategorySummary) {
	sort.Slice(s, func(i, j int) bool { return s[i].CategoryID < s[j].CategoryID })
}
