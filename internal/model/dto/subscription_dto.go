package dto

// CheckoutRequest 发起托管 checkout
type CheckoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

// SubscriptionView 展示给前端的订阅合并视图（以服务商数据为准）
type SubscriptionView struct {
	ID                string `json:"id"`
	PlanID            string `json:"plan_id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	Interval          string `json:"interval"`
	Active            bool   `json:"active"`
}

// SubscriptionActionResponse 取消/恢复操作的返回
type SubscriptionActionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"` // 降级引导，如指向账单门户
}

// InvoiceItem 服务商账单条目
type InvoiceItem struct {
	ID          string `json:"id"`
	AmountPaid  int64  `json:"amount_paid"` // 最小货币单位
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
	InvoicePDF  string `json:"invoice_pdf,omitempty"`
	PeriodStart int64  `json:"period_start"`
	PeriodEnd   int64  `json:"period_end"`
}

// SubscriptionInfoResponse 订阅详情（实时快照 + 账单）
type SubscriptionInfoResponse struct {
	Subscription *SubscriptionView `json:"subscription"`
	Invoices     []*InvoiceItem    `json:"invoices"`
}

type PortalResponse struct {
	URL string `json:"url"`
}
