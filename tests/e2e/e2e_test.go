//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - full escrow cycle: open → deposit → settle → apply taxes → payout → close
//   - error mapping: locked account, missing settlement
//   - role enforcement: agents read, conveyancers write

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"proptrust/internal/config"
	"proptrust/internal/infra"
	"proptrust/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("proptrust_test"),
		tcPostgres.WithUsername("proptrust"),
		tcPostgres.WithPassword("proptrust"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		ZIMRAGatewayURL:     "http://localhost:9999", // unused in these tests
		WorkerPoolSize:      1,
		PDFStoragePath:      t.TempDir(),
		CommissionRate:      0.05,
		CGTRate:             0.05,
		VATRate:             0.15,
		VATOnCommissionRate: 0.15,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("proptrust2026"), bcrypt.MinCost)
	require.NoError(t, err)
	err = db.Exec(`INSERT INTO users (id, username, name, password_hash, role, active, created_at, updated_at)
		VALUES (gen_random_uuid(), 'admin.e2e', 'Admin E2E', ?, 'admin', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error
	require.NoError(t, err)

	zimraCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r, _ := router.New(cfg, db, rdb, zimraCB, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin.e2e", "password": "proptrust2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server: srv,
		token:  loginBody.AccessToken,
		engine: r,
	}
}

func (env *testEnv) createProperty(t *testing.T, standNumber string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/properties",
		jsonBody(t, map[string]any{
			"stand_number": standNumber,
			"address":      "12 Josiah Tongogara Ave",
			"suburb":       "Avondale",
			"city":         "Harare",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prop struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prop)
	return prop.ID
}

func (env *testEnv) openAccount(t *testing.T, propertyID, openingPayment string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/trust-accounts",
		jsonBody(t, map[string]any{
			"property_id":     propertyID,
			"buyer_name":      "Tendai Moyo",
			"seller_name":     "Rudo Chikafu",
			"opening_payment": openingPayment,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var acc struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &acc)
	return acc.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full escrow cycle: open → deposit → settle → apply taxes → payout → close.
func TestE2E_FullEscrowCycle(t *testing.T) {
	env := setupTestEnv(t)

	propID := env.createProperty(t, "4512")
	accID := env.openAccount(t, propID, "40000")

	// buyer pays the balance
	depResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/deposit",
		jsonBody(t, map[string]any{"amount": "60000"}), env.token)
	require.Equal(t, http.StatusCreated, depResp.StatusCode)
	var dep struct {
		RunningBalance string `json:"running_balance"`
	}
	decodeJSON(t, depResp, &dep)
	assert.Equal(t, "100000", dep.RunningBalance)

	// settlement: sale 100 000, defaults → commission 5 000, VAT 750, CGT 5 000
	setResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/calculate-settlement",
		jsonBody(t, map[string]any{"sale_price": "100000"}), env.token)
	require.Equal(t, http.StatusOK, setResp.StatusCode)
	var settlement struct {
		Version   int    `json:"version"`
		NetPayout string `json:"net_payout"`
		Locked    bool   `json:"locked"`
	}
	decodeJSON(t, setResp, &settlement)
	assert.Equal(t, 1, settlement.Version)
	assert.Equal(t, "89250", settlement.NetPayout)
	assert.False(t, settlement.Locked)

	// apply taxes: CGT 5 000 + VAT on commission 750 leave 94 250 in trust
	taxResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/apply-tax-deductions",
		jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, taxResp.StatusCode)
	var taxes struct {
		CGT             string `json:"cgt"`
		VATOnCommission string `json:"vat_on_commission"`
		Total           string `json:"total"`
	}
	decodeJSON(t, taxResp, &taxes)
	assert.Equal(t, "5000", taxes.CGT)
	assert.Equal(t, "750", taxes.VATOnCommission)
	assert.Equal(t, "5750", taxes.Total)

	// pay out the seller's net
	payResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/transfer-to-seller",
		jsonBody(t, map[string]any{"amount": "89250"}), env.token)
	require.Equal(t, http.StatusCreated, payResp.StatusCode)

	// close
	closeResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/close",
		jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closed struct {
		Status         string `json:"status"`
		Locked         bool   `json:"locked"`
		ClosingBalance string `json:"closing_balance"`
	}
	decodeJSON(t, closeResp, &closed)
	assert.Equal(t, "CLOSED", closed.Status)
	assert.True(t, closed.Locked)

	// full snapshot: ledger, settlement and audit trail in one read
	fullResp := do(t, env.server, "GET", "/v1/trust-accounts/property/"+propID+"/full", nil, env.token)
	require.Equal(t, http.StatusOK, fullResp.StatusCode)
	var full struct {
		Account struct {
			Status string `json:"status"`
		} `json:"account"`
		Ledger []struct {
			Type string `json:"type"`
		} `json:"ledger"`
		Settlement struct {
			Locked bool `json:"locked"`
		} `json:"settlement"`
		AuditLogs []any `json:"audit_logs"`
	}
	decodeJSON(t, fullResp, &full)
	assert.Equal(t, "CLOSED", full.Account.Status)
	assert.Len(t, full.Ledger, 5) // opening + deposit + 2 taxes + payout
	assert.True(t, full.Settlement.Locked)
	assert.GreaterOrEqual(t, len(full.AuditLogs), 6)
}

// Error mapping: a closed account rejects appends with 409 ACCOUNT_LOCKED,
// tax application without a settlement is 409 NO_SETTLEMENT.
func TestE2E_ErrorMapping(t *testing.T) {
	env := setupTestEnv(t)

	propID := env.createProperty(t, "7701")
	accID := env.openAccount(t, propID, "50000")

	// no settlement yet
	taxResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/apply-tax-deductions",
		jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusConflict, taxResp.StatusCode)
	var apiErr struct {
		Kind string `json:"kind"`
	}
	decodeJSON(t, taxResp, &apiErr)
	assert.Equal(t, "NO_SETTLEMENT", apiErr.Kind)

	// OPEN → CLOSED skips SETTLED
	closeResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/close",
		jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusConflict, closeResp.StatusCode)
	decodeJSON(t, closeResp, &apiErr)
	assert.Equal(t, "INVALID_WORKFLOW_TRANSITION", apiErr.Kind)

	// settle, close, then append
	setResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/calculate-settlement",
		jsonBody(t, map[string]any{"sale_price": "50000"}), env.token)
	require.Equal(t, http.StatusOK, setResp.StatusCode)
	closeResp = do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/close",
		jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)

	depResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/deposit",
		jsonBody(t, map[string]any{"amount": "10"}), env.token)
	require.Equal(t, http.StatusConflict, depResp.StatusCode)
	decodeJSON(t, depResp, &apiErr)
	assert.Equal(t, "ACCOUNT_LOCKED", apiErr.Kind)
}

// Agents can read trust accounts but never mutate them.
func TestE2E_AgentRoleIsReadOnly(t *testing.T) {
	env := setupTestEnv(t)

	propID := env.createProperty(t, "3309")
	accID := env.openAccount(t, propID, "20000")

	createResp := do(t, env.server, "POST", "/v1/users",
		jsonBody(t, map[string]any{
			"username": "agent.e2e",
			"name":     "Agent E2E",
			"password": "agent-password",
			"role":     "agent",
		}), env.token)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "agent.e2e", "password": "agent-password"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &login)

	listResp := do(t, env.server, "GET", "/v1/trust-accounts", nil, login.AccessToken)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	ledgerResp := do(t, env.server, "GET", "/v1/trust-accounts/"+accID+"/ledger", nil, login.AccessToken)
	assert.Equal(t, http.StatusOK, ledgerResp.StatusCode)

	depResp := do(t, env.server, "POST", "/v1/trust-accounts/"+accID+"/deposit",
		jsonBody(t, map[string]any{"amount": "100"}), login.AccessToken)
	assert.Equal(t, http.StatusForbidden, depResp.StatusCode)
	userResp := do(t, env.server, "GET", "/v1/users", nil, login.AccessToken)
	assert.Equal(t, http.StatusForbidden, userResp.StatusCode)
}
