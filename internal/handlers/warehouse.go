package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/models"
)

type WarehouseHandler struct {
	DB *gorm.DB
}

// ListWarehouses is public: the login form needs the warehouse names before
// any session exists.
func (h *WarehouseHandler) ListWarehouses(c echo.Context) error {
	var items []models.Warehouse
	if err := h.DB.Order("name ASC").Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot list warehouses", "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WarehouseHandler) GetWarehouse(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid warehouse id", "")
	}

	var wh models.Warehouse
	if err := h.DB.Preload("Members").First(&wh, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "warehouse not found", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot load warehouse", "")
	}
	return c.JSON(http.StatusOK, wh)
}

func (h *WarehouseHandler) CreateWarehouse(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required", "")
	}

	wh := models.Warehouse{Name: req.Name}
	if err := h.DB.Create(&wh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "warehouse already exists", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot create warehouse", "")
	}
	return c.JSON(http.StatusCreated, wh)
}

func (h *WarehouseHandler) UpdateWarehouse(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid warehouse id", "")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required", "")
	}

	var wh models.Warehouse
	if err := h.DB.First(&wh, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "warehouse not found", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot load warehouse", "")
	}

	wh.Name = req.Name
	if err := h.DB.Save(&wh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "warehouse name already in use", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot update warehouse", "")
	}
	return c.JSON(http.StatusOK, wh)
}

func (h *WarehouseHandler) DeleteWarehouse(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid warehouse id", "")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("warehouse_id = ?", id).Count(&count).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot delete warehouse", "")
	}
	if count > 0 {
		return fail(c, http.StatusConflict, "warehouse still has members", "")
	}

	if err := h.DB.Delete(&models.Warehouse{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot delete warehouse", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "warehouse deleted"})
}
