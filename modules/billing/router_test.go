package billing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawitharvest/billing/modules/billing"
	"github.com/sawitharvest/billing/pkg/payment"
	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/quota"
	"github.com/sawitharvest/billing/pkg/subscription"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	catalog, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(plan.DefaultPlans()...))
	require.NoError(t, err)

	subs := subscription.NewManager(subscription.NewMemoryStore())
	ledger := quota.NewLedger(catalog, quota.NewMemoryStore(), subs.EffectiveTier)
	payments := payment.NewService(catalog, payment.NewMemoryStore(), subs)

	srv := httptest.NewServer(billing.NewModule(ledger, subs, payments).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestRouter_QuotaReserve(t *testing.T) {
	t.Parallel()

	t.Run("reserves within free ceiling", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		userID := uuid.New()

		resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
			"user_id":  userID,
			"resource": "blocks",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		data, ok := envelope["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, data["reserved"])
	})

	t.Run("rejects over the ceiling with quota code", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		userID := uuid.New()

		// Free tier allows a single block.
		resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
			"user_id":  userID,
			"resource": "blocks",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = postJSON(t, srv.URL+"/quota/reserve", map[string]any{
			"user_id":  userID,
			"resource": "blocks",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		apiErr, ok := envelope["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "QUOTA_EXCEEDED", apiErr["code"])
	})

	t.Run("rejects unknown resource", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
			"user_id":  uuid.New(),
			"resource": "tractors",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
			"resource": "blocks",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestRouter_QuotaRelease(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	userID := uuid.New()

	resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
		"user_id":  userID,
		"resource": "blocks",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/quota/release", map[string]any{
		"user_id":  userID,
		"resource": "blocks",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The freed slot is reservable again.
	resp = postJSON(t, srv.URL+"/quota/reserve", map[string]any{
		"user_id":  userID,
		"resource": "blocks",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_QuotaUsage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	userID := uuid.New()

	resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
		"user_id":  userID,
		"resource": "workers",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/quota/" + userID.String() + "/usage")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)

	workers, ok := data["workers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), workers["current"])
	assert.Equal(t, float64(3), workers["limit"])
}

func TestRouter_Subscription(t *testing.T) {
	t.Parallel()

	t.Run("unknown user has no subscription row", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp, err := http.Get(srv.URL + "/subscription/" + uuid.NewString())
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		apiErr, ok := envelope["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", apiErr["code"])
	})

	t.Run("malformed user id is rejected", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp, err := http.Get(srv.URL + "/subscription/not-a-uuid")
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("cancel flips an active subscription", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		userID := uuid.New()

		txnID := createAndResolve(t, srv, userID)
		require.NotEmpty(t, txnID)

		resp, err := http.Get(srv.URL + "/subscription/" + userID.String())
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "PRO", data["tier"])
		assert.Equal(t, "ACTIVE", data["status"])

		resp = postJSON(t, srv.URL+"/subscription/"+userID.String()+"/cancel", map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp, err = http.Get(srv.URL + "/subscription/" + userID.String())
		require.NoError(t, err)
		envelope = decodeEnvelope(t, resp)
		data = envelope["data"].(map[string]any)
		assert.Equal(t, "CANCELLED", data["status"])
		assert.NotNil(t, data["cancelled_at"])
	})

	t.Run("double cancel is rejected", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		userID := uuid.New()
		createAndResolve(t, srv, userID)

		resp := postJSON(t, srv.URL+"/subscription/"+userID.String()+"/cancel", map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = postJSON(t, srv.URL+"/subscription/"+userID.String()+"/cancel", map[string]any{})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		apiErr := envelope["error"].(map[string]any)
		assert.Equal(t, "ALREADY_CANCELLED", apiErr["code"])
	})
}

// createAndResolve runs the happy payment path for a PRO upgrade over HTTP
// and returns the transaction id.
func createAndResolve(t *testing.T, srv *httptest.Server, userID uuid.UUID) string {
	t.Helper()

	resp := postJSON(t, srv.URL+"/transactions/", map[string]any{
		"user_id": userID,
		"tier":    "PRO",
		"method":  "BANK_TRANSFER",
		"amount":  149000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	txnID, ok := data["id"].(string)
	require.True(t, ok)

	resp = postJSON(t, srv.URL+"/transactions/"+txnID+"/resolve", map[string]any{
		"outcome": "SUCCESS",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	return txnID
}

func TestRouter_Transactions(t *testing.T) {
	t.Parallel()

	t.Run("create returns bank transfer instructions", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp := postJSON(t, srv.URL+"/transactions/", map[string]any{
			"user_id": uuid.New(),
			"tier":    "PRO",
			"method":  "BANK_TRANSFER",
			"amount":  149000,
			"bank":    "BRI",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "PENDING", data["status"])

		instructions, ok := data["instructions"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "VIRTUAL_ACCOUNT", instructions["type"])
		assert.Equal(t, "BRI", instructions["bank"])
		assert.Len(t, instructions["va_number"], 13)
	})

	t.Run("price mismatch is unprocessable", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp := postJSON(t, srv.URL+"/transactions/", map[string]any{
			"user_id": uuid.New(),
			"tier":    "PRO",
			"method":  "QRIS",
			"amount":  1000,
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		apiErr := envelope["error"].(map[string]any)
		assert.Equal(t, "PRICE_MISMATCH", apiErr["code"])
	})

	t.Run("resolve success activates subscription", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		userID := uuid.New()

		txnID := createAndResolve(t, srv, userID)

		resp, err := http.Get(srv.URL + "/transactions/" + txnID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "SUCCESS", data["status"])
		assert.NotNil(t, data["resolved_at"])
	})

	t.Run("double resolve conflicts", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		txnID := createAndResolve(t, srv, uuid.New())

		resp := postJSON(t, srv.URL+"/transactions/"+txnID+"/resolve", map[string]any{
			"outcome": "FAILED",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		apiErr := envelope["error"].(map[string]any)
		assert.Equal(t, "ALREADY_RESOLVED", apiErr["code"])
	})

	t.Run("unknown transaction is not found", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)

		resp := postJSON(t, srv.URL+"/transactions/TXN_0_missing/resolve", map[string]any{
			"outcome": "SUCCESS",
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("invalid outcome is rejected", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		userID := uuid.New()

		resp := postJSON(t, srv.URL+"/transactions/", map[string]any{
			"user_id": userID,
			"tier":    "BUSINESS",
			"method":  "QRIS",
			"amount":  499000,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		txnID := envelope["data"].(map[string]any)["id"].(string)

		resp = postJSON(t, srv.URL+"/transactions/"+txnID+"/resolve", map[string]any{
			"outcome": "MAYBE",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestRouter_ProTierLiftsQuota(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	userID := uuid.New()

	createAndResolve(t, srv, userID)

	// PRO allows three blocks.
	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
			"user_id":  userID,
			"resource": "blocks",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("block %d", i+1))
		resp.Body.Close()
	}

	resp := postJSON(t, srv.URL+"/quota/reserve", map[string]any{
		"user_id":  userID,
		"resource": "blocks",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}
