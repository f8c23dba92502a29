package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/servswap/servswap_go_server/config"
)

// Client 支付服务商 API 客户端（Stripe 风格：表单请求 + JSON 响应）
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// APIError 服务商返回的业务错误，消息原样透传给调用方
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Subscription 服务商侧订阅对象
type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"` // active, trialing, past_due, canceled, ...
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	Items             struct {
		Data []struct {
			Price struct {
				ID        string `json:"id"`
				Recurring struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// PriceID 订阅对应的价格对象 ID
func (s *Subscription) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// Interval 计费周期（month / year）
func (s *Subscription) Interval() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.Recurring.Interval
}

// Invoice 服务商侧账单对象
type Invoice struct {
	ID          string `json:"id"`
	AmountPaid  int64  `json:"amount_paid"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Created     int64  `json:"created"`
	InvoicePDF  string `json:"invoice_pdf"`
	PeriodStart int64  `json:"period_start"`
	PeriodEnd   int64  `json:"period_end"`
}

// Customer 服务商侧客户对象
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session 托管页面会话（checkout / 账单门户）
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewClient(cfg *config.PaymentConfig) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetSubscription 获取订阅的实时快照
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateCancelAtPeriodEnd 设置订阅的期末取消标记
func (c *Client) UpdateCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*Subscription, error) {
	form := url.Values{}
	form.Set("cancel_at_period_end", strconv.FormatBool(cancel))

	var sub Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+subscriptionID, form, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListInvoices 获取订阅的账单历史
func (c *Client) ListInvoices(ctx context.Context, customerID, subscriptionID string) ([]*Invoice, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	if subscriptionID != "" {
		form.Set("subscription", subscriptionID)
	}

	var result struct {
		Data []*Invoice `json:"data"`
	}
	path := "/invoices?" + form.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CreateCustomer 创建服务商侧客户
func (c *Client) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCheckoutSession 创建托管 checkout 会话
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*Session, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	var session Session
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreatePortalSession 创建账单门户会话
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var session Session
	if err := c.do(ctx, http.MethodPost, "/billing_portal/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error.Message == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}
