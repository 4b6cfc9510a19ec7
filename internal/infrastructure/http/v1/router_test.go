package v1_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/app"
	"restostock/internal/core/id"
	v1 "restostock/internal/infrastructure/http/v1"
	"restostock/internal/infrastructure/storage/memory"
	"restostock/pkg/logger"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	services := app.NewServices(app.MemoryRepositories(memory.New()), app.DefaultSettings())
	router := v1.NewRouter(v1.RouterConfig{Logger: logger.NewNop(), Services: services})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, body any, user string) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *apiClient) seed() (warehouseID, materialID string) {
	a.t.Helper()
	code, w := a.do(http.MethodPost, "/api/v1/warehouses", map[string]any{"name": "Ana Depo", "type": "cold"}, "")
	require.Equal(a.t, http.StatusCreated, code, w)

	code, m := a.do(http.MethodPost, "/api/v1/materials", map[string]any{
		"code":            "DOM",
		"name":            "Domates",
		"purchaseUnit":    "kg",
		"consumptionUnit": "g",
	}, "")
	require.Equal(a.t, http.StatusCreated, code, m)

	code, mv := a.do(http.MethodPost, "/api/v1/stock/movements", map[string]any{
		"materialId":  m["id"],
		"warehouseId": w["id"],
		"type":        "IN",
		"quantity":    10,
		"unit":        "kg",
		"unitCost":    "0.02",
		"date":        "2024-01-10T08:00:00Z",
	}, "chef")
	require.Equal(a.t, http.StatusCreated, code, mv)
	assert.Equal(a.t, 10000.0, mv["quantity"])
	assert.Equal(a.t, "chef", mv["createdBy"])

	return w["id"].(string), m["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	code, body := api.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestStockCountLifecycle(t *testing.T) {
	api := newAPI(t)
	warehouseID, materialID := api.seed()

	code, asOf := api.do(http.MethodGet,
		"/api/v1/stock/as-of?material_id="+materialID+"&warehouse_id="+warehouseID+"&at=2024-01-15", nil, "")
	require.Equal(t, http.StatusOK, code, asOf)
	assert.Equal(t, 10000.0, asOf["quantity"])

	code, created := api.do(http.MethodPost, "/api/v1/stock-counts", map[string]any{
		"warehouseId":      warehouseID,
		"countDate":        "2024-01-18",
		"countTime":        "09:00",
		"startImmediately": true,
	}, "ayse")
	require.Equal(t, http.StatusCreated, code, created)

	count := created["count"].(map[string]any)
	assert.Equal(t, "SAY-2024-001", count["countNumber"])
	assert.Equal(t, "IN_PROGRESS", count["status"])
	assert.Equal(t, "ayse", count["countedBy"])
	countID := count["id"].(string)

	items := created["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, 10000.0, item["systemStock"])

	code, body := api.do(http.MethodPost, "/api/v1/stock-counts/"+countID+"/submit", nil, "ayse")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "INCOMPLETE_COUNT", body["code"])
	assert.Equal(t, 1.0, body["details"].(map[string]any)["remaining"])

	code, body = api.do(http.MethodPatch, "/api/v1/stock-count-items/"+item["id"].(string),
		map[string]any{"countedStock": 1844674407370956}, "ayse")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	code, counted := api.do(http.MethodPatch, "/api/v1/stock-count-items/"+item["id"].(string),
		map[string]any{"countedStock": 9800, "reason": "spoiled"}, "ayse")
	require.Equal(t, http.StatusOK, code, counted)
	assert.Equal(t, -200.0, counted["difference"])

	code, submitted := api.do(http.MethodPost, "/api/v1/stock-counts/"+countID+"/submit", nil, "ayse")
	require.Equal(t, http.StatusOK, code, submitted)
	assert.Equal(t, "PENDING_APPROVAL", submitted["status"])

	code, approved := api.do(http.MethodPost, "/api/v1/stock-counts/"+countID+"/approve", nil, "chef")
	require.Equal(t, http.StatusOK, code, approved)
	assert.Equal(t, "COMPLETED", approved["count"].(map[string]any)["status"])
	assert.Equal(t, "chef", approved["count"].(map[string]any)["approvedBy"])
	assert.Len(t, approved["adjustments"].([]any), 1)

	code, again := api.do(http.MethodPost, "/api/v1/stock-counts/"+countID+"/approve", nil, "chef")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "INVALID_TRANSITION", again["code"])

	code, balances := api.do(http.MethodGet, "/api/v1/stock/balances/"+materialID, nil, "")
	require.Equal(t, http.StatusOK, code, balances)
	rows := balances["items"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, 9800.0, rows[0].(map[string]any)["currentStock"])

	code, adjustments := api.do(http.MethodGet, "/api/v1/stock-counts/"+countID+"/adjustments", nil, "")
	require.Equal(t, http.StatusOK, code)
	adj := adjustments["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "DECREASE", adj["adjustmentType"])
	assert.Equal(t, 200.0, adj["quantity"])

	code, report := api.do(http.MethodGet, "/api/v1/consistency/report", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, report["total"])
	assert.Equal(t, 0.0, report["inconsistent"])
}

func TestStockCountList(t *testing.T) {
	api := newAPI(t)
	warehouseID, _ := api.seed()

	for _, date := range []string{"2024-01-18", "2024-02-01"} {
		code, body := api.do(http.MethodPost, "/api/v1/stock-counts", map[string]any{
			"warehouseId": warehouseID,
			"countDate":   date,
			"countTime":   "09:00",
		}, "ayse")
		require.Equal(t, http.StatusCreated, code, body)
	}

	code, list := api.do(http.MethodGet, "/api/v1/stock-counts?status=PLANNING", nil, "")
	require.Equal(t, http.StatusOK, code, list)
	assert.Equal(t, 2.0, list["totalCount"])
	first := list["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "SAY-2024-002", first["countNumber"])

	code, bad := api.do(http.MethodGet, "/api/v1/stock-counts?status=LOST", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", bad["code"])

	code, preview := api.do(http.MethodGet,
		"/api/v1/stock-counts/preview?warehouse_id="+warehouseID+"&count_date=2024-01-05&count_time=09:00", nil, "")
	require.Equal(t, http.StatusOK, code, preview)
	assert.Equal(t, 0.0, preview["materialCount"])
}

func TestErrorMapping(t *testing.T) {
	api := newAPI(t)
	warehouseID, materialID := api.seed()

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"malformed id", http.MethodGet, "/api/v1/materials/not-a-uuid", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown count", http.MethodGet, "/api/v1/stock-counts/" + id.New().String(), nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing body field", http.MethodPost, "/api/v1/stock-counts", map[string]any{"warehouseId": warehouseID}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad count date", http.MethodPost, "/api/v1/stock-counts", map[string]any{"warehouseId": warehouseID, "countDate": "18.01.2024"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"oversell", http.MethodPost, "/api/v1/stock/movements", map[string]any{
			"materialId": materialID, "warehouseId": warehouseID, "type": "OUT", "quantity": 20000,
		}, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"incompatible unit", http.MethodPost, "/api/v1/stock/movements", map[string]any{
			"materialId": materialID, "warehouseId": warehouseID, "type": "IN", "quantity": 1, "unit": "l",
		}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"quantity out of range", http.MethodPost, "/api/v1/stock/movements", map[string]any{
			"materialId": materialID, "warehouseId": warehouseID, "type": "IN", "quantity": 922337203685478,
		}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"converted quantity out of range", http.MethodPost, "/api/v1/stock/movements", map[string]any{
			"materialId": materialID, "warehouseId": warehouseID, "type": "IN", "quantity": 922337203686, "unit": "kg",
		}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"duplicate material code", http.MethodPost, "/api/v1/materials", map[string]any{
			"code": "DOM", "name": "Domates 2", "consumptionUnit": "g",
		}, http.StatusConflict, "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := api.do(tt.method, tt.path, tt.body, "chef")
			assert.Equal(t, tt.wantCode, code, body)
			assert.Equal(t, tt.wantErr, body["code"])
		})
	}
}

func TestReservationsAndTransfer(t *testing.T) {
	api := newAPI(t)
	warehouseID, materialID := api.seed()

	code, row := api.do(http.MethodPost, "/api/v1/stock/reservations",
		map[string]any{"materialId": materialID, "warehouseId": warehouseID, "quantity": 3000}, "")
	require.Equal(t, http.StatusOK, code, row)
	assert.Equal(t, 7000.0, row["availableStock"])

	code, row = api.do(http.MethodDelete, "/api/v1/stock/reservations",
		map[string]any{"materialId": materialID, "warehouseId": warehouseID, "quantity": 1000}, "")
	require.Equal(t, http.StatusOK, code, row)
	assert.Equal(t, 8000.0, row["availableStock"])

	code, w2 := api.do(http.MethodPost, "/api/v1/warehouses", map[string]any{"name": "Mutfak", "type": "kitchen"}, "")
	require.Equal(t, http.StatusCreated, code)

	code, tr := api.do(http.MethodPost, "/api/v1/stock/transfers", map[string]any{
		"materialId":      materialID,
		"fromWarehouseId": warehouseID,
		"toWarehouseId":   w2["id"],
		"quantity":        2,
		"unit":            "kg",
	}, "chef")
	require.Equal(t, http.StatusCreated, code, tr)
	assert.Len(t, tr["items"].([]any), 2)

	code, m := api.do(http.MethodGet, "/api/v1/materials/"+materialID, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 10000.0, m["currentStock"])

	code, history := api.do(http.MethodGet, "/api/v1/stock/movements?material_id="+materialID+"&order=asc", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, history["items"].([]any), 3)
}

// pendingCount drives a fresh single-item count up to PENDING_APPROVAL.
func (a *apiClient) pendingCount(warehouseID string) string {
	a.t.Helper()
	code, created := a.do(http.MethodPost, "/api/v1/stock-counts", map[string]any{
		"warehouseId":      warehouseID,
		"countDate":        "2024-01-18",
		"countTime":        "09:00",
		"startImmediately": true,
	}, "ayse")
	require.Equal(a.t, http.StatusCreated, code, created)
	countID := created["count"].(map[string]any)["id"].(string)

	for _, it := range created["items"].([]any) {
		itemID := it.(map[string]any)["id"].(string)
		code, body := a.do(http.MethodPatch, "/api/v1/stock-count-items/"+itemID, map[string]any{"countedStock": 9900}, "ayse")
		require.Equal(a.t, http.StatusOK, code, body)
	}
	code, body := a.do(http.MethodPost, "/api/v1/stock-counts/"+countID+"/submit", nil, "ayse")
	require.Equal(a.t, http.StatusOK, code, body)
	return countID
}

// postChunked sends body with an unknown content length.
func (a *apiClient) postChunked(path, body, user string) (int, map[string]any) {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, io.MultiReader(bytes.NewBufferString(body)))
	require.EqualValues(a.t, -1, req.ContentLength)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestApproveBody(t *testing.T) {
	t.Run("chunked body names the approver", func(t *testing.T) {
		api := newAPI(t)
		warehouseID, _ := api.seed()
		countID := api.pendingCount(warehouseID)

		code, approved := api.postChunked("/api/v1/stock-counts/"+countID+"/approve", `{"approvedBy":"manager"}`, "")
		require.Equal(t, http.StatusOK, code, approved)
		assert.Equal(t, "manager", approved["count"].(map[string]any)["approvedBy"])
	})

	t.Run("empty chunked body falls back to caller", func(t *testing.T) {
		api := newAPI(t)
		warehouseID, _ := api.seed()
		countID := api.pendingCount(warehouseID)

		code, approved := api.postChunked("/api/v1/stock-counts/"+countID+"/approve", "", "chef")
		require.Equal(t, http.StatusOK, code, approved)
		assert.Equal(t, "chef", approved["count"].(map[string]any)["approvedBy"])
	})

	t.Run("malformed body", func(t *testing.T) {
		api := newAPI(t)
		warehouseID, _ := api.seed()
		countID := api.pendingCount(warehouseID)

		code, body := api.postChunked("/api/v1/stock-counts/"+countID+"/approve", `{"approvedBy":`, "chef")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}
