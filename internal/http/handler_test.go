package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalex7/e-plan/internal/auth"
	"github.com/evalex7/e-plan/internal/excel"
	"github.com/evalex7/e-plan/internal/http/middleware"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/pdf"
	"github.com/evalex7/e-plan/internal/repository"
	"github.com/evalex7/e-plan/internal/service"
	"github.com/evalex7/e-plan/internal/storage"
)

const testSecret = "test-secret"

type testServer struct {
	router  *gin.Engine
	handler *Handler
	engine  *service.Engine
	token   string
}

func newTestServer(t *testing.T, parser middleware.TokenParser) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.New(storage.NewMemoryStore(), zerolog.Nop())
	engine := service.NewEngine(repo, service.DefaultOptions(), zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC) })
	require.NoError(t, engine.Open(context.Background()))

	pdfGenerator, err := pdf.NewGenerator("")
	require.NoError(t, err)
	docs := service.NewDocumentService(engine, excel.NewGenerator(), pdfGenerator)

	handler := NewHandler(engine, docs, zerolog.Nop())
	t.Cleanup(handler.Close)
	return &testServer{
		router:  NewRouter(handler, middleware.Auth(parser), "test"),
		handler: handler,
		engine:  engine,
	}
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Kind  string          `json:"kind"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func decode[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

// seedContract creates an object, an engineer and a contract with one period.
func (s *testServer) seedContract(t *testing.T) (model.ServiceObject, model.ServiceEngineer, model.Contract) {
	t.Helper()
	rec, resp := s.do(t, http.MethodPost, "/objects", gin.H{"name": "ТЦ Караван", "address": "Київ"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	object := decode[model.ServiceObject](t, resp)

	rec, resp = s.do(t, http.MethodPost, "/engineers", gin.H{"name": "Петренко", "specialization": []string{"КОНД"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	engineer := decode[model.ServiceEngineer](t, resp)

	rec, resp = s.do(t, http.MethodPost, "/contracts", gin.H{
		"contractNumber":      "123",
		"objectId":            object.ID,
		"clientName":          "ТОВ Клієнт",
		"startDate":           "2025-01-01",
		"endDate":             "2025-12-31",
		"assignedEngineerIds": []string{engineer.ID},
		"maintenancePeriods": []gin.H{{
			"id": "P1", "startDate": "2025-01-01", "endDate": "2025-01-31", "departments": []string{"КОНД"},
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return object, engineer, decode[model.Contract](t, resp)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec, _ := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContractFlow(t *testing.T) {
	s := newTestServer(t, nil)
	_, engineer, contract := s.seedContract(t)

	rec, resp := s.do(t, http.MethodGet, "/tasks?contractId="+contract.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]model.MaintenanceTask](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, engineer.ID, tasks[0].EngineerID)

	rec, resp = s.do(t, http.MethodPost, "/contracts/"+contract.ID+"/periods/P1/adjust",
		gin.H{"startDate": "2025-01-10", "endDate": "2025-02-05"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	period := decode[model.MaintenancePeriod](t, resp)
	assert.Equal(t, model.PeriodStatusAdjusted, period.Status)
	assert.Equal(t, model.LocalPrincipal().Name, period.AdjustedBy)

	rec, resp = s.do(t, http.MethodGet, "/tasks/"+tasks[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-01-10", decode[model.MaintenanceTask](t, resp).ScheduledDate.String())

	rec, resp = s.do(t, http.MethodGet, "/contracts/"+contract.ID+"/next-maintenance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), `"display":"05.02.2025"`)

	rec, resp = s.do(t, http.MethodPost, "/contract-kanban/"+contract.ID+"/move", gin.H{"column": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	card := decode[model.ContractKanbanTask](t, resp)
	assert.Equal(t, model.ContractColumnCompleted, card.Column)

	rec, resp = s.do(t, http.MethodGet, "/contract-kanban?column=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), contract.ID)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)
	_, engineer, contract := s.seedContract(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   service.ErrorKind
	}{
		{"validation", http.MethodPost, "/objects", gin.H{"name": " "}, http.StatusBadRequest, service.KindValidation},
		{"malformed body", http.MethodPost, "/objects", []byte("{"), http.StatusBadRequest, service.KindValidation},
		{"reversed range", http.MethodPost, "/contracts/" + contract.ID + "/periods/P1/adjust",
			gin.H{"startDate": "2025-02-10", "endDate": "2025-02-01"}, http.StatusBadRequest, service.KindValidation},
		{"not found", http.MethodGet, "/contracts/missing", nil, http.StatusNotFound, service.KindNotFound},
		{"engineer in use", http.MethodDelete, "/engineers/" + engineer.ID, nil, http.StatusConflict, service.KindConflict},
		{"nothing to redo", http.MethodPost, "/history/redo", nil, http.StatusConflict, service.KindConflict},
		{"overdue column", http.MethodPost, "/kanban/x/move", gin.H{"column": "overdue"}, http.StatusBadRequest, service.KindValidation},
		{"unknown collection", http.MethodGet, "/export?collections=users", nil, http.StatusBadRequest, service.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, string(tt.kind), resp.Kind)
		})
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	rec, _ := s.do(t, http.MethodPost, "/objects", gin.H{"name": "Склад"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := s.do(t, http.MethodPost, "/history/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), "Added object Склад")
	assert.Empty(t, s.engine.Objects())

	rec, resp = s.do(t, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), `"canRedo":true`)

	rec, _ = s.do(t, http.MethodDelete, "/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, s.engine.CanRedo())
}

func TestExportImport(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedContract(t)
	before := s.engine.Snapshot()

	rec, _ := s.do(t, http.MethodGet, "/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "maintenance_backup_")
	exported := rec.Body.Bytes()

	rec, _ = s.do(t, http.MethodPost, "/reset", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.engine.Snapshot().Contracts)

	rec, resp := s.do(t, http.MethodPost, "/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(resp.Data), "contractKanbanTasks")
	assert.Equal(t, before, s.engine.Snapshot())

	rec, _ = s.do(t, http.MethodPost, "/import", []byte(`{"contracts": {}}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, before, s.engine.Snapshot())

	rec, _ = s.do(t, http.MethodGet, "/export?collections=objects,engineers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var selected map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &selected))
	assert.Len(t, selected, 2)
}

func TestDocuments(t *testing.T) {
	s := newTestServer(t, nil)
	_, engineer, contract := s.seedContract(t)

	rec, _ := s.do(t, http.MethodGet, "/export/schedule.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec, resp := s.do(t, http.MethodPost, "/reports", gin.H{
		"contractId":      contract.ID,
		"engineerId":      engineer.ID,
		"completedDate":   "2025-01-20",
		"department":      "КОНД",
		"workDescription": "Чистка фільтрів",
		"startTime":       "09:00",
		"endTime":         "11:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	report := decode[model.MaintenanceReport](t, resp)

	rec, _ = s.do(t, http.MethodGet, "/reports/"+report.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{
		UserID: "u-" + role,
		Name:   "User " + role,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, auth.NewParser(testSecret))

	rec, _ := s.do(t, http.MethodGet, "/contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.token = "garbage"
	rec, _ = s.do(t, http.MethodGet, "/contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.token = token(t, "viewer")
	rec, _ = s.do(t, http.MethodGet, "/contracts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, resp := s.do(t, http.MethodPost, "/objects", gin.H{"name": "Склад"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(service.KindPermissionDenied), resp.Kind)

	s.token = token(t, "manager")
	rec, resp = s.do(t, http.MethodPost, "/objects", gin.H{"name": "Склад"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decode[model.ServiceObject](t, resp).ID)
}

func TestWebsocketFeed(t *testing.T) {
	s := newTestServer(t, nil)
	server := httptest.NewServer(s.router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.handler.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	_, err = s.engine.AddObject(context.Background(), model.ServiceObject{Name: "Склад"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var change service.Change
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, "object.add", change.Action)
	assert.Equal(t, []model.Collection{model.CollectionObjects}, change.Collections)
}
