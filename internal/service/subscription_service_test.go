package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/payment"
	"github.com/servswap/servswap_go_server/internal/repository"
	"github.com/servswap/servswap_go_server/internal/testutil"
)

// fakeProvider 模拟支付服务商：内存中维护单个订阅对象，记录更新调用
type fakeProvider struct {
	subID             string
	customer          string
	status            string
	cancelAtPeriodEnd bool
	currentPeriodEnd  int64
	priceID           string

	updateCalls int
	server      *httptest.Server
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{
		subID:            "sub_test_123",
		customer:         "cus_test_123",
		status:           "active",
		currentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
		priceID:          "price_pro_monthly",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/subscriptions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			p.updateCalls++
			r.ParseForm()
			p.cancelAtPeriodEnd = r.FormValue("cancel_at_period_end") == "true"
		}
		p.writeSubscription(w)
	})
	mux.HandleFunc("/invoices", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "in_1", "amount_paid": 1500, "currency": "usd", "status": "paid", "created": time.Now().Unix()},
			},
		})
	})
	mux.HandleFunc("/billing_portal/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "bps_1", "url": "https://billing.example.com/p/session"})
	})
	mux.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "cus_new_456", "email": r.FormValue("email")})
	})
	mux.HandleFunc("/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_1", "url": "https://checkout.example.com/c/session"})
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) writeSubscription(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":                   p.subID,
		"customer":             p.customer,
		"status":               p.status,
		"cancel_at_period_end": p.cancelAtPeriodEnd,
		"current_period_end":   p.currentPeriodEnd,
		"items": map[string]interface{}{
			"data": []map[string]interface{}{
				{"price": map[string]interface{}{
					"id":        p.priceID,
					"recurring": map[string]string{"interval": "month"},
				}},
			},
		},
	})
}

func setupSubscriptionService(t *testing.T, provider *fakeProvider) (*SubscriptionService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Payment: config.PaymentConfig{
			BaseURL:         provider.server.URL,
			SecretKey:       "sk_test",
			PortalReturnURL: "https://servswap.example.com/account",
			Plans: map[string]config.PlanConfig{
				"pro":          {PriceID: "price_pro_monthly", Interval: "month"},
				"verification": {PriceID: "price_verification", Verification: true},
			},
		},
	}

	service := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		payment.NewClient(&cfg.Payment),
		cfg,
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestIsActive(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).Unix()
	past := time.Now().Add(-24 * time.Hour).Unix()

	assert.True(t, isActive("active", false, 0))
	assert.True(t, isActive("trialing", false, 0))
	assert.False(t, isActive("canceled", false, future))
	assert.False(t, isActive("past_due", false, future))

	// 宽限期：已设置期末取消但周期未结束仍视为生效
	assert.True(t, isActive("canceled", true, future))
	assert.False(t, isActive("canceled", true, past))
}

func TestSubscriptionService_ListAllForUser_PlaceholderFallback(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db)

	// 无任何订阅
	views, err := service.ListAllForUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, views)

	// 手工占位订阅以用户 ID 为键
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithSubID(fmt.Sprintf("%d", user.ID)))

	views, err = service.ListAllForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Active)
}

func TestSubscriptionService_Cancel(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))
	testutil.TestSubscription(t, db, user.ID, testutil.WithSubID(provider.subID))

	resp, err := service.Cancel(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, provider.updateCalls)
	assert.True(t, provider.cancelAtPeriodEnd)

	// 镜像跟随服务商状态
	var mirror model.Subscription
	require.NoError(t, db.First(&mirror, "id = ?", provider.subID).Error)
	assert.True(t, mirror.CancelAtPeriodEnd)
}

func TestSubscriptionService_Cancel_Idempotent(t *testing.T) {
	provider := newFakeProvider(t)
	provider.cancelAtPeriodEnd = true
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))
	testutil.TestSubscription(t, db, user.ID, testutil.WithSubID(provider.subID))

	resp, err := service.Cancel(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// 已在取消中时不再向服务商重复提交
	assert.Equal(t, 0, provider.updateCalls)
}

func TestSubscriptionService_Cancel_InvalidID(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))

	_, err := service.Cancel(context.Background(), user.ID, "not_a_subscription")
	assert.ErrorIs(t, err, ErrInvalidSubscriptionID)
}

func TestSubscriptionService_Cancel_OwnershipMismatch(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	// 用户存储的客户标识与服务商侧订阅的客户不一致
	user := testutil.TestUser(t, db, testutil.WithStripeCustomer("cus_someone_else"))

	_, err := service.Cancel(context.Background(), user.ID, provider.subID)
	assert.ErrorIs(t, err, ErrSubscriptionOwnership)
	assert.Equal(t, 0, provider.updateCalls)
}

func TestSubscriptionService_Cancel_MirrorFailureStillSucceeds(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))

	// 镜像表不可写时，服务商写入成功仍视为整体成功
	require.NoError(t, db.Exec("DROP TABLE subscriptions").Error)

	resp, err := service.Cancel(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, provider.cancelAtPeriodEnd)
}

func TestSubscriptionService_Resume(t *testing.T) {
	provider := newFakeProvider(t)
	provider.cancelAtPeriodEnd = true
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithSubID(provider.subID), testutil.WithCancelAtPeriodEnd(true))

	resp, err := service.Resume(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, provider.cancelAtPeriodEnd)

	var mirror model.Subscription
	require.NoError(t, db.First(&mirror, "id = ?", provider.subID).Error)
	assert.False(t, mirror.CancelAtPeriodEnd)
}

func TestSubscriptionService_Resume_AlreadyActive(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))

	resp, err := service.Resume(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 0, provider.updateCalls)
}

func TestSubscriptionService_Resume_ProviderAuthFallback(t *testing.T) {
	// 服务商对所有请求返回 401
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Invalid API key provided"},
		})
	}))
	defer server.Close()

	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "release"},
		Payment: config.PaymentConfig{BaseURL: server.URL, SecretKey: "sk_bad"},
	}
	service := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		payment.NewClient(&cfg.Payment),
		cfg,
	)

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer("cus_x"))

	resp, err := service.Resume(context.Background(), user.ID, "sub_x")
	assert.ErrorIs(t, err, ErrProviderAuth)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Suggestion)
}

func TestSubscriptionService_RefreshFromProvider_ReadRepair(t *testing.T) {
	provider := newFakeProvider(t)
	provider.cancelAtPeriodEnd = true
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))

	// 镜像落后于服务商：未记录期末取消，续费日期也过期
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithSubID(provider.subID),
		testutil.WithCancelAtPeriodEnd(false),
		testutil.WithPeriodEnd(time.Now().Add(-24*time.Hour).Unix()))

	info, err := service.RefreshFromProvider(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)
	require.NotNil(t, info.Subscription)

	// 返回视图以服务商为准
	assert.True(t, info.Subscription.CancelAtPeriodEnd)
	assert.Equal(t, provider.currentPeriodEnd, info.Subscription.CurrentPeriodEnd)
	assert.Equal(t, "pro", info.Subscription.PlanID)
	assert.Len(t, info.Invoices, 1)

	// 镜像被就地修复
	var mirror model.Subscription
	require.NoError(t, db.First(&mirror, "id = ?", provider.subID).Error)
	assert.True(t, mirror.CancelAtPeriodEnd)
	assert.Equal(t, provider.currentPeriodEnd, mirror.CurrentPeriodEnd)
}

func TestSubscriptionService_RefreshFromProvider_CreatesMissingMirror(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))

	_, err := service.RefreshFromProvider(context.Background(), user.ID, provider.subID)
	require.NoError(t, err)

	var mirror model.Subscription
	require.NoError(t, db.First(&mirror, "id = ?", provider.subID).Error)
	assert.Equal(t, user.ID, mirror.UserID)
	assert.Equal(t, "pro", mirror.PlanID)
}

func TestSubscriptionService_ProviderErrorSurfacedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "No such subscription: sub_missing"},
		})
	}))
	defer server.Close()

	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := &config.Config{
		Payment: config.PaymentConfig{BaseURL: server.URL, SecretKey: "sk_test"},
	}
	service := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		payment.NewClient(&cfg.Payment),
		cfg,
	)

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer("cus_x"))

	_, err := service.RefreshFromProvider(context.Background(), user.ID, "sub_missing")
	require.Error(t, err)
	assert.Equal(t, "No such subscription: sub_missing", err.Error())
}

func TestSubscriptionService_HasActivePlan(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db)

	active, err := service.HasActivePlan(user.ID)
	require.NoError(t, err)
	assert.False(t, active)

	// 仅认证徽章订阅不解锁主应用
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithSubID("sub_badge"), testutil.WithPlan(model.PlanVerification))

	active, err = service.HasActivePlan(user.ID)
	require.NoError(t, err)
	assert.False(t, active)

	testutil.TestSubscription(t, db, user.ID, testutil.WithSubID("sub_main"))

	active, err = service.HasActivePlan(user.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestSubscriptionService_Checkout(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	// 未绑定客户的用户，checkout 时先创建客户并落库
	user := testutil.TestUser(t, db)

	resp, err := service.Checkout(context.Background(), user.ID, &dto.CheckoutRequest{PlanID: "pro"})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/c/session", resp.URL)

	var updated model.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	require.NotNil(t, updated.StripeCustomerID)
	assert.Equal(t, "cus_new_456", *updated.StripeCustomerID)
}

func TestSubscriptionService_Checkout_UnknownPlan(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := service.Checkout(context.Background(), user.ID, &dto.CheckoutRequest{PlanID: "nonexistent"})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestSubscriptionService_OpenBillingPortal(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripeCustomer(provider.customer))

	resp, err := service.OpenBillingPortal(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/p/session", resp.URL)
}

func TestSubscriptionService_OpenBillingPortal_NoCustomer(t *testing.T) {
	provider := newFakeProvider(t)
	service, db, cleanup := setupSubscriptionService(t, provider)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := service.OpenBillingPortal(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNoCustomer)
}
