package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	var items []models.Category
	if err := h.DB.Order("name ASC").Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot list categories", "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required", "")
	}

	cat := models.Category{Name: req.Name}
	if err := h.DB.Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "category already exists", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot create category", "")
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid category id", "")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required", "")
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "category not found", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot load category", "")
	}

	cat.Name = req.Name
	if err := h.DB.Save(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "category name already in use", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot update category", "")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid category id", "")
	}

	var count int64
	if err := h.DB.Model(&models.FlowLog{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot delete category", "")
	}
	if count > 0 {
		return fail(c, http.StatusConflict, "category is still referenced by flow logs", "")
	}

	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot delete category", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "category deleted"})
}
