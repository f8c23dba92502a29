package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servswap/servswap_go_server/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&config.PaymentConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test_123",
	})
	return client, server
}

func TestClient_GetSubscription(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/sub_abc", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "sub_abc",
			"customer": "cus_xyz",
			"status": "active",
			"cancel_at_period_end": true,
			"current_period_end": 1893456000,
			"items": {"data": [{"price": {"id": "price_pro_monthly", "recurring": {"interval": "month"}}}]}
		}`))
	})

	sub, err := client.GetSubscription(context.Background(), "sub_abc")
	require.NoError(t, err)
	assert.Equal(t, "sub_abc", sub.ID)
	assert.Equal(t, "cus_xyz", sub.Customer)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, int64(1893456000), sub.CurrentPeriodEnd)
	assert.Equal(t, "month", sub.Interval())
	assert.Equal(t, "price_pro_monthly", sub.PriceID())
}

func TestClient_UpdateCancelAtPeriodEnd(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "true", r.PostForm.Get("cancel_at_period_end"))

		w.Write([]byte(`{"id": "sub_abc", "customer": "cus_xyz", "status": "active", "cancel_at_period_end": true}`))
	})

	sub, err := client.UpdateCancelAtPeriodEnd(context.Background(), "sub_abc", true)
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
}

func TestClient_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "No such subscription: sub_missing"}}`))
	})

	_, err := client.GetSubscription(context.Background(), "sub_missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	// 服务商错误文本原样透传
	assert.Equal(t, "No such subscription: sub_missing", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_ListInvoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices", r.URL.Path)
		assert.Equal(t, "cus_xyz", r.URL.Query().Get("customer"))
		assert.Equal(t, "sub_abc", r.URL.Query().Get("subscription"))

		w.Write([]byte(`{"data": [
			{"id": "in_1", "amount_paid": 999, "currency": "usd", "status": "paid", "created": 1700000000},
			{"id": "in_2", "amount_paid": 999, "currency": "usd", "status": "paid", "created": 1702592000}
		]}`))
	})

	invoices, err := client.ListInvoices(context.Background(), "cus_xyz", "sub_abc")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "in_1", invoices[0].ID)
	assert.Equal(t, int64(999), invoices[0].AmountPaid)
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "cus_xyz", r.PostForm.Get("customer"))
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_pro_monthly", r.PostForm.Get("line_items[0][price]"))

		w.Write([]byte(`{"id": "cs_1", "url": "https://checkout.example.com/cs_1"}`))
	})

	session, err := client.CreateCheckoutSession(context.Background(), "cus_xyz", "price_pro_monthly", "https://app/success", "https://app/cancel")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_1", session.URL)
}

func TestClient_CreatePortalSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/billing_portal/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "cus_xyz", r.PostForm.Get("customer"))

		w.Write([]byte(`{"id": "bps_1", "url": "https://portal.example.com/bps_1"}`))
	})

	session, err := client.CreatePortalSession(context.Background(), "cus_xyz", "https://app/billing")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.com/bps_1", session.URL)
}
