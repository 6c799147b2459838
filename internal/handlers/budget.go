package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/models"
)

type BudgetHandler struct {
	DB *gorm.DB
}

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type budgetRequest struct {
	WarehouseID uint    `json:"warehouse_id"`
	CategoryID  uint    `json:"category_id"`
	Month       string  `json:"month"`
	Amount      float64 `json:"amount"`
}

func (r *budgetRequest) validate() string {
	if r.WarehouseID == 0 || r.CategoryID == 0 {
		return "warehouse_id and category_id are required"
	}
	if !monthRe.MatchString(r.Month) {
		return "month must be formatted YYYY-MM"
	}
	if r.Amount < 0 {
		return "amount must not be negative"
	}
	return ""
}

func (h *BudgetHandler) ListBudgets(c echo.Context) error {
	q := h.DB.Model(&models.Budget{})
	if v := c.QueryParam("warehouse"); v != "" {
		q = q.Where("warehouse_id = ?", v)
	}
	if v := c.QueryParam("month"); v != "" {
		q = q.Where("month = ?", v)
	}

	var items []models.Budget
	if err := q.Order("month DESC").Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot list budgets", "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	var req budgetRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", "")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg, "")
	}

	budget := models.Budget{
		WarehouseID: req.WarehouseID,
		CategoryID:  req.CategoryID,
		Month:       req.Month,
		Amount:      req.Amount,
	}
	if err := h.DB.Create(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "budget already set for this warehouse, category and month", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot create budget", "")
	}
	return c.JSON(http.StatusCreated, budget)
}

func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid budget id", "")
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", "")
	}
	if req.Amount < 0 {
		return fail(c, http.StatusBadRequest, "amount must not be negative", "")
	}

	var budget models.Budget
	if err := h.DB.First(&budget, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "budget not found", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot load budget", "")
	}

	budget.Amount = req.Amount
	if err := h.DB.Save(&budget).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot update budget", "")
	}
	return c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid budget id", "")
	}
	if err := h.DB.Delete(&models.Budget{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot delete budget", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "budget deleted"})
}
