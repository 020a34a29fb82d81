package router

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
	"github.com/google/uuid"
	_ "github.com/opsconsole/backend/docs"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/cache"
	"github.com/opsconsole/backend/internal/infrastructure/persistence"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"github.com/opsconsole/backend/internal/infrastructure/printing"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var march20 = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return march20 }

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.LedgerModels()...))

	pool, err := ledger.NewOwnerPool([]string{"Alice", "Bob", "Carol"}, []string{"Carol"})
	require.NoError(t, err)

	expenses := persistence.NewGormExpenseRepository(db)
	aggregation := ledgerapp.NewAggregationService(
		persistence.NewGormOrderRepository(db),
		persistence.NewGormSalaryPaymentRepository(db),
		expenses,
		ledgerapp.WithClock(clock),
	)
	savings := ledgerapp.NewBankSavingsService(persistence.NewGormBankSavingsRepository(db), aggregation,
		ledgerapp.WithClock(clock))
	distribution := ledgerapp.NewDistributionService(aggregation, savings, expenses,
		persistence.NewGormDistributionRecordRepository(db), pool,
		printing.NewStatementRenderer(printing.StatementConfig{}),
		ledgerapp.WithClock(clock))
	expenseService := ledgerapp.NewExpenseService(expenses, pool, ledgerapp.WithClock(clock))

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor())
	health := handler.NewHealthHandler(pingFunc(func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	}), "ledger")

	New(engine, WithHealth(health), WithIdempotency(store, time.Hour)).
		Register(
			LedgerRoutes{Handler: handler.NewLedgerHandler(aggregation)},
			ExpenseRoutes{Handler: handler.NewExpenseHandler(expenseService)},
			BankSavingsRoutes{Handler: handler.NewBankSavingsHandler(savings)},
			DistributionRoutes{Handler: handler.NewDistributionHandler(distribution)},
		).
		Setup()

	return &testServer{engine: engine, db: db}
}

// seedMarch loads the March example: revenue 10,000, payroll 1,000, a
// business expense of 2,000, a 1,000 reserve and owner-fronted expenses of
// 500 (Alice) and 4,000 (Bob).
func (s *testServer) seedMarch(t *testing.T) map[string]string {
	t.Helper()
	require.NoError(t, s.db.Create(&models.OrderModel{
		ID: uuid.New(), Total: decimal.NewFromInt(10000), IsPaid: true,
		CreatedAt: time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, s.db.Create(&models.SalaryPaymentModel{
		ID: uuid.New(), EmployeeID: "emp-1", Amount: decimal.NewFromInt(1000), IsPaid: true,
		Date: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	}).Error)

	ids := map[string]string{}
	for _, e := range []struct{ owner, amount string }{
		{ledger.BusinessTag, "2000"},
		{"Alice", "500"},
		{"Bob", "4000"},
	} {
		w := s.do(t, http.MethodPost, "/api/v1/expenses", map[string]any{
			"title": "march " + e.owner, "amount": e.amount, "expense_for": e.owner, "incurred_on": "2024-03-10",
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids[e.owner] = data(t, w)["id"].(string)
	}

	w := s.do(t, http.MethodPost, "/api/v1/bank-savings/deposits", map[string]any{
		"amount": "1000", "granularity": "monthly",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return ids
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderActorID, "tester")
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := envelope(t, w)["data"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return d
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	info, ok := envelope(t, w)["error"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return info["code"].(string)
}

func assertAmount(t *testing.T, want string, got any) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "amount %v is not a string", got)
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, s)
}

func shareOf(t *testing.T, dist map[string]any, owner string) map[string]any {
	t.Helper()
	for _, raw := range dist["shares"].([]any) {
		share := raw.(map[string]any)
		if share["owner"] == owner {
			return share
		}
	}
	t.Fatalf("no share for %s", owner)
	return nil
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := s.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "healthy", envelope(t, w)["status"])
	}
}

func TestRouter_MarchDistribution(t *testing.T) {
	s := newTestServer(t)
	s.seedMarch(t)

	t.Run("summary", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/summary?granularity=monthly", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		summary := data(t, w)
		assertAmount(t, "10000", summary["total_revenue"])
		assertAmount(t, "2000", summary["business_expense"])
		assertAmount(t, "1000", summary["payroll_expense"])
		assertAmount(t, "7000", summary["net_income"])
		period := summary["period"].(map[string]any)
		assert.Equal(t, "2024-03-01", period["start"])
		assert.Equal(t, "2024-03-31", period["end"])
	})

	t.Run("distribution", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/distributions?granularity=monthly&owners=Alice,Bob", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		dist := data(t, w)
		assertAmount(t, "1000", dist["bank_balance"])
		assertAmount(t, "6000", dist["available"])

		alice := shareOf(t, dist, "Alice")
		assertAmount(t, "3500", alice["gross_share"])
		assertAmount(t, "3000", alice["net_share"])
		assert.Equal(t, true, alice["can_claim"])

		bob := shareOf(t, dist, "Bob")
		assertAmount(t, "-500", bob["net_share"])
		assert.Equal(t, false, bob["can_claim"])

		carol := shareOf(t, dist, "Carol")
		assert.Equal(t, false, carol["eligible"])
	})

	t.Run("ineligible owner cannot be selected", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/distributions?owners=Alice,Carol", nil, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("personal pending", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/expenses/personal-pending", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		pending := map[string]any{}
		for _, raw := range envelope(t, w)["data"].([]any) {
			line := raw.(map[string]any)
			pending[line["owner"].(string)] = line["pending"]
		}
		assertAmount(t, "500", pending["Alice"])
		assertAmount(t, "4000", pending["Bob"])
		assertAmount(t, "0", pending["Carol"])
	})

	t.Run("statement pdf", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/distributions/statement.pdf?granularity=monthly", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "distribution-monthly.pdf")
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	})
}

func TestRouter_Claim(t *testing.T) {
	s := newTestServer(t)
	s.seedMarch(t)

	claim := map[string]any{
		"owner":             "Alice",
		"granularity":       "monthly",
		"selected_owners":   []string{"Alice", "Bob"},
		"draw_from_savings": true,
	}

	w := s.do(t, http.MethodPost, "/api/v1/distributions/claims", claim,
		map[string]string{middleware.HeaderIdempotencyKey: "claim-alice-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := data(t, w)
	assert.Equal(t, false, result["already_claimed"])
	record := result["record"].(map[string]any)
	assertAmount(t, "3000", record["net_share"])
	assert.Equal(t, "tester", record["claimed_by"])
	withdrawal := result["savings_withdrawal"].(map[string]any)
	assertAmount(t, "-3000", withdrawal["amount"])
	assert.Equal(t, "withdrawal", withdrawal["kind"])

	t.Run("replayed key is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/distributions/claims", claim,
			map[string]string{middleware.HeaderIdempotencyKey: "claim-alice-1"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ERR_DUPLICATE_REQUEST", errorCode(t, w))
	})

	t.Run("second claim returns the stored record", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/distributions/claims", claim, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := data(t, w)
		assert.Equal(t, true, result["already_claimed"])
		assertAmount(t, "3000", result["record"].(map[string]any)["net_share"])
	})

	t.Run("reserve reflects the withdrawal", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/bank-savings?granularity=monthly", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assertAmount(t, "-2000", data(t, w)["balance"])
	})

	t.Run("negative share cannot be claimed", func(t *testing.T) {
		bob := map[string]any{"owner": "Bob", "granularity": "monthly", "selected_owners": []string{"Alice", "Bob"}}
		w := s.do(t, http.MethodPost, "/api/v1/distributions/claims", bob, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "NOTHING_TO_CLAIM", errorCode(t, w))
	})
}

func TestRouter_Reimburse(t *testing.T) {
	s := newTestServer(t)
	ids := s.seedMarch(t)

	w := s.do(t, http.MethodPost, "/api/v1/expenses/reimburse", map[string]any{
		"expense_ids": []string{ids["Alice"]},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := data(t, w)
	assert.Equal(t, "Alice", result["owner"])
	assertAmount(t, "500", result["amount"])

	t.Run("reimbursed expense counts as business expense", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/summary?granularity=monthly", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assertAmount(t, "2500", data(t, w)["business_expense"])

		w = s.do(t, http.MethodGet, "/api/v1/expenses/"+ids["Alice"], nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, data(t, w)["counts_as_business"])
		w = s.do(t, http.MethodGet, "/api/v1/expenses/"+ids["Bob"], nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, data(t, w)["counts_as_business"])
	})

	t.Run("listing is paged", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/expenses?page_size=2&sort_by=amount&sort_order=asc", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := envelope(t, w)
		items := body["data"].([]any)
		require.Len(t, items, 2)
		assertAmount(t, "500", items[0].(map[string]any)["amount"])
		meta := body["meta"].(map[string]any)
		assert.Equal(t, float64(3), meta["total"])
		assert.Equal(t, float64(2), meta["total_pages"])
	})

	t.Run("mixed owners are rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/expenses/reimburse", map[string]any{
			"expense_ids": []string{ids["Alice"], ids["Bob"]},
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "MIXED_OWNER_BATCH", errorCode(t, w))
	})

	t.Run("deleting a reimbursed expense needs confirmation", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/expenses/"+ids["Alice"], nil, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = s.do(t, http.MethodDelete, "/api/v1/expenses/"+ids["Alice"]+"?confirm=true", nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRouter_WritesRequireActor(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/expenses", map[string]any{
		"title": "paper", "amount": "12.50", "expense_for": ledger.BusinessTag, "incurred_on": "2024-03-01",
	}, map[string]string{middleware.HeaderActorID: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_MISSING_ACTOR", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/v1/expenses", nil, map[string]string{middleware.HeaderActorID: ""})
	assert.Equal(t, http.StatusOK, w.Code, "reads are open")
}

func TestRouter_ExpenseValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{"zero amount", map[string]any{"title": "x", "amount": "0", "expense_for": "Alice", "incurred_on": "2024-03-01"}, "INVALID_AMOUNT"},
		{"unknown owner", map[string]any{"title": "x", "amount": "5", "expense_for": "Mallory", "incurred_on": "2024-03-01"}, "UNKNOWN_OWNER"},
		{"missing title", map[string]any{"amount": "5", "expense_for": "Alice", "incurred_on": "2024-03-01"}, "ERR_VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/expenses", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestRouter_APIVersion(t *testing.T) {
	engine := gin.New()
	New(engine, WithAPIVersion("v2")).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, engine.Routes())
}

func TestRouter_Swagger(t *testing.T) {
	get := func(engine *gin.Engine, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("serves the UI and the generated document", func(t *testing.T) {
		engine := gin.New()
		New(engine, WithSwagger(middleware.SwaggerConfig{Enabled: true})).Setup()

		ui := get(engine, "/swagger/index.html")
		assert.Equal(t, http.StatusOK, ui.Code)
		assert.Contains(t, ui.Body.String(), "swagger-ui")

		doc := get(engine, "/swagger/doc.json")
		require.Equal(t, http.StatusOK, doc.Code)
		var spec map[string]any
		require.NoError(t, json.Unmarshal(doc.Body.Bytes(), &spec))
		assert.Equal(t, "/api/v1", spec["basePath"])
		paths, ok := spec["paths"].(map[string]any)
		require.True(t, ok)
		for _, path := range []string{
			"/ledger/summary", "/orders", "/salary-payments",
			"/expenses", "/expenses/{id}", "/expenses/personal-pending", "/expenses/reimburse",
			"/bank-savings", "/bank-savings/deposits", "/bank-savings/withdrawals",
			"/distributions", "/distributions/claims", "/distributions/statement.pdf",
		} {
			assert.Contains(t, paths, path)
		}
	})

	t.Run("disabled documentation answers not found", func(t *testing.T) {
		engine := gin.New()
		New(engine, WithSwagger(middleware.SwaggerConfig{Enabled: false})).Setup()

		assert.Equal(t, http.StatusNotFound, get(engine, "/swagger/index.html").Code)
	})

	t.Run("not mounted without the option", func(t *testing.T) {
		engine := gin.New()
		New(engine).Setup()

		assert.Empty(t, engine.Routes())
	})
}
