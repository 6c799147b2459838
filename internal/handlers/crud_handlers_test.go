package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	authmw "github.com/prasetyow/warecash/internal/middleware/auth"
	"github.com/prasetyow/warecash/internal/models"
	"github.com/prasetyow/warecash/internal/roles"
	"github.com/prasetyow/warecash/internal/tokens"
)

func seedRefs(t *testing.T, env *testEnv) (models.Warehouse, models.Category) {
	t.Helper()
	wh := models.Warehouse{Name: "JKT1"}
	require.NoError(t, env.DB.Create(&wh).Error)
	cat := models.Category{Name: "Office Supplies"}
	require.NoError(t, env.DB.Create(&cat).Error)
	return wh, cat
}

func identityFor(env *testEnv, c echo.Context, warehouseID uint) {
	c.Set(authmw.IdentityKey, &tokens.Claims{
		Username:         "alice",
		Description:      roles.RoleSales,
		WarehouseID:      warehouseID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ID: tokens.NewJTI()},
	})
}

func TestCategoryDuplicateName(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/category", map[string]string{"name": "Fuel"})
	require.NoError(t, env.Category.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec2, c2 := env.doJSONRequest(http.MethodPost, "/api/category", map[string]string{"name": "Fuel"})
	require.NoError(t, env.Category.CreateCategory(c2))
	require.Equal(t, http.StatusConflict, rec2.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &body))
	require.Equal(t, http.StatusConflict, body.StatusCode)
}

func TestBudgetUniquePerScope(t *testing.T) {
	env := newTestEnv(t)
	wh, cat := seedRefs(t, env)

	payload := map[string]interface{}{
		"warehouse_id": wh.ID,
		"category_id":  cat.ID,
		"month":        "2026-08",
		"amount":       1500000.0,
	}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/budget", payload)
	require.NoError(t, env.Budget.CreateBudget(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec2, c2 := env.doJSONRequest(http.MethodPost, "/api/budget", payload)
	require.NoError(t, env.Budget.CreateBudget(c2))
	require.Equal(t, http.StatusConflict, rec2.Code)

	// a different month is a different budget
	payload["month"] = "2026-09"
	rec3, c3 := env.doJSONRequest(http.MethodPost, "/api/budget", payload)
	require.NoError(t, env.Budget.CreateBudget(c3))
	require.Equal(t, http.StatusCreated, rec3.Code)
}

func TestBudgetValidation(t *testing.T) {
	env := newTestEnv(t)
	wh, cat := seedRefs(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/budget", map[string]interface{}{
		"warehouse_id": wh.ID,
		"category_id":  cat.ID,
		"month":        "08-2026",
		"amount":       10.0,
	})
	require.NoError(t, env.Budget.CreateBudget(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlowLogCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	wh, cat := seedRefs(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/flowlog", map[string]interface{}{
		"category_id": cat.ID,
		"kind":        "out",
		"amount":      250000.0,
		"note":        "printer ink",
	})
	identityFor(env, c, wh.ID)
	require.NoError(t, env.FlowLog.CreateFlowLog(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.FlowLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "alice", created.Username)
	require.Equal(t, wh.ID, created.WarehouseID)
	require.False(t, created.OccurredAt.IsZero())

	recList, cList := env.doJSONRequest(http.MethodGet, "/api/flowlog?kind=out", nil)
	require.NoError(t, env.FlowLog.ListFlowLogs(cList))
	require.Equal(t, http.StatusOK, recList.Code)

	var listResp struct {
		Data []models.FlowLog `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recList.Body.Bytes(), &listResp))
	require.Equal(t, int64(1), listResp.Meta.Total)
	require.Len(t, listResp.Data, 1)
}

func TestFlowLogRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	wh, _ := seedRefs(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/flowlog", map[string]interface{}{
		"category_id": 999,
		"kind":        "out",
		"amount":      100.0,
	})
	identityFor(env, c, wh.ID)
	require.NoError(t, env.FlowLog.CreateFlowLog(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlowLogRejectsBadKind(t *testing.T) {
	env := newTestEnv(t)
	wh, cat := seedRefs(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/flowlog", map[string]interface{}{
		"category_id": cat.ID,
		"kind":        "sideways",
		"amount":      100.0,
	})
	identityFor(env, c, wh.ID)
	require.NoError(t, env.FlowLog.CreateFlowLog(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWarehouseDeleteWithMembers(t *testing.T) {
	env := newTestEnv(t)
	wh, _ := seedRefs(t, env)
	require.NoError(t, env.DB.Create(&models.User{
		Username:    "alice",
		Description: "SALES",
		DisplayName: "Alice S",
		WarehouseID: wh.ID,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/warehouse/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Warehouse.DeleteWarehouse(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAnalyticsSummary(t *testing.T) {
	env := newTestEnv(t)
	wh, cat := seedRefs(t, env)
	other := models.Category{Name: "Transport"}
	require.NoError(t, env.DB.Create(&other).Error)

	require.NoError(t, env.DB.Create(&models.Budget{
		WarehouseID: wh.ID, CategoryID: cat.ID, Month: "2026-08", Amount: 1000000,
	}).Error)

	mk := func(catID uint, kind string, amount float64, day int) {
		require.NoError(t, env.DB.Create(&models.FlowLog{
			WarehouseID: wh.ID,
			CategoryID:  catID,
			Username:    "alice",
			Kind:        kind,
			Amount:      amount,
			OccurredAt:  time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC),
		}).Error)
	}
	mk(cat.ID, models.FlowOut, 300000, 3)
	mk(cat.ID, models.FlowOut, 200000, 12)
	mk(cat.ID, models.FlowIn, 50000, 15)
	mk(other.ID, models.FlowOut, 75000, 20)
	// outside the month, must not count
	require.NoError(t, env.DB.Create(&models.FlowLog{
		WarehouseID: wh.ID, CategoryID: cat.ID, Username: "alice",
		Kind: models.FlowOut, Amount: 999999,
		OccurredAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/analytics/summary?warehouse=1&month=2026-08", nil)
	require.NoError(t, env.Analytics.Summary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []CategorySummary `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 2)

	byID := map[uint]CategorySummary{}
	for _, r := range resp.Categories {
		byID[r.CategoryID] = r
	}

	supplies := byID[cat.ID]
	require.Equal(t, float64(500000), supplies.TotalOut)
	require.Equal(t, float64(50000), supplies.TotalIn)
	require.Equal(t, float64(1000000), supplies.Budget)
	require.Equal(t, float64(500000), supplies.Remaining)

	transport := byID[other.ID]
	require.Equal(t, float64(75000), transport.TotalOut)
	require.Zero(t, transport.Budget)
}
