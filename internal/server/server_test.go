package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/server"
	"budgetbuddy/internal/storage/memory"
)

type linkMailer struct {
	link string
}

func (m *linkMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.link = link
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		UseMemoryStore: true,
		JWTSecret:      "test-secret-not-for-production",
		JWTIssuer:      "budgetbuddy",
		JWTTTL:         time.Hour,
		CORSOrigins:    []string{"*"},
		BcryptCost:     bcrypt.MinCost,
		HashWorkers:    2,
		AdvisorTimeout: time.Second,
		ResetBaseURL:   "http://localhost:3000/reset-password",
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *linkMailer) {
	t.Helper()
	mailer := &linkMailer{}
	handler := server.Handler(testConfig(), memory.New(), mailer, nil)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, mailer
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func signup(t *testing.T, baseURL, username string) (token string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupAndLoginFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/signup", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/signup", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/signup", "", map[string]string{
		"username": "", "email": "", "password": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"username": "alice", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, body["token"], "no token issued on bad password")

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"username": "nobody", "password": "x",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBearerAuthRequired(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/income", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "missing token")

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/income", "garbage-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "invalid token")
}

func TestIncomeLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	token := signup(t, ts.URL, "bob")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/income", token, map[string]any{
		"source": "Salary", "income": 2000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["income"].(map[string]any)
	assert.Equal(t, "Salary", created["source"])
	assert.Equal(t, 2000.0, created["income"])
	id := int64(created["id"].(float64))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/income", token, map[string]any{
		"source": "Bad", "income": -5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/income", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["incomes"], 1)
	assert.Equal(t, 2000.0, body["total"])

	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/income/%d", ts.URL, id), token, map[string]any{
		"income": 2500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/income/%d", ts.URL, id), token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "nothing to update")

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/income", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2500.0, body["total"], "list total is freshly computed")

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/income/%d", ts.URL, id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/income/%d", ts.URL, id), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExpenseUsesAmountLabel(t *testing.T) {
	ts, _ := newTestServer(t)
	token := signup(t, ts.URL, "carol")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/expense", token, map[string]any{
		"source": "Rent", "amount": 800,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["expense"].(map[string]any)
	assert.Equal(t, 800.0, created["amount"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/expense", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["expenses"], 1)
	assert.Equal(t, 800.0, body["total"])
}

func TestOwnershipDoesNotLeakAcrossUsers(t *testing.T) {
	ts, _ := newTestServer(t)
	tokenA := signup(t, ts.URL, "owner")
	tokenB := signup(t, ts.URL, "intruder")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/income", tokenA, map[string]any{
		"source": "Salary", "income": 1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(body["income"].(map[string]any)["id"].(float64))

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/income/%d", ts.URL, id), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"a foreign entry id must look exactly like a missing one")

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/income", tokenA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1000.0, body["total"], "owner's ledger is untouched")
}

func TestSummary(t *testing.T) {
	ts, _ := newTestServer(t)
	token := signup(t, ts.URL, "dana")

	for _, p := range []map[string]any{
		{"source": "Salary", "income": 1500},
		{"source": "Side gig", "income": 500},
	} {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/income", token, p)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/expense", token, map[string]any{
		"source": "Rent", "amount": 700,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2000.0, body["total_income"])
	assert.Equal(t, 700.0, body["total_expenses"])
}

func TestRecommendationEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	token := signup(t, ts.URL, "ed")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/recommendation", token, map[string]any{
		"income": 1000, "expenses": 400, "itemPrice": 500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 600.0, body["balance"])
	assert.Equal(t, 500.0, body["price"])
	assert.NotEmpty(t, body["recommendation"])
	assert.Nil(t, body["budgetPlan"], "affordable purchases carry no plan")

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/recommendation", token, map[string]any{
		"income": 1000, "expenses": 0, "itemPrice": 5000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := body["budgetPlan"].([]any)
	require.Len(t, plan, 3)
	first := plan[0].(map[string]any)
	assert.Equal(t, 3.0, first["months"])
	assert.Equal(t, 1333.33, first["savePerMonth"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/recommendation", token, map[string]any{
		"income": 1000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPasswordResetOverHTTP(t *testing.T) {
	ts, mailer := newTestServer(t)
	signup(t, ts.URL, "fran")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/forgot-password", "", map[string]string{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/forgot-password", "", map[string]string{
		"email": "fran@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, mailer.link)
	token := mailer.link[strings.LastIndex(mailer.link, "/")+1:]

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/reset-password/"+token, "", map[string]string{
		"password": "brandnew",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Single use: the same token is refused on replay.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/reset-password/"+token, "", map[string]string{
		"password": "again",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"username": "fran", "password": "brandnew",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
