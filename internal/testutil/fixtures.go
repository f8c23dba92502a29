package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithStripeCustomer 设置支付侧客户 ID
func WithStripeCustomer(customerID string) func(*model.User) {
	return func(u *model.User) {
		u.StripeCustomerID = &customerID
	}
}

// WithVerificationBadge 设置认证徽章
func WithVerificationBadge(badge bool) func(*model.User) {
	return func(u *model.User) {
		u.VerificationBadge = badge
	}
}

// TestSwap 创建测试交换
func TestSwap(t *testing.T, db *gorm.DB, providerID, receiverID int64, opts ...func(*model.Swap)) *model.Swap {
	t.Helper()

	swap := &model.Swap{
		ProviderID:      providerID,
		ReceiverID:      receiverID,
		ProviderService: "吉他课",
		ReceiverService: "网页设计",
		Status:          model.SwapStatusPending,
	}

	for _, opt := range opts {
		opt(swap)
	}

	if err := db.Create(swap).Error; err != nil {
		t.Fatalf("Failed to create test swap: %v", err)
	}

	return swap
}

// WithSwapStatus 设置交换状态
func WithSwapStatus(status string) func(*model.Swap) {
	return func(s *model.Swap) {
		s.Status = status
	}
}

// WithMarkedComplete 设置完成标记
func WithMarkedComplete(provider, receiver bool) func(*model.Swap) {
	return func(s *model.Swap) {
		s.ProviderMarkedComplete = provider
		s.ReceiverMarkedComplete = receiver
	}
}

// TestListing 创建测试服务列表
func TestListing(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Listing)) *model.Listing {
	t.Helper()

	listing := &model.Listing{
		UserID:      userID,
		Title:       fmt.Sprintf("Test Listing %d", time.Now().UnixNano()%100000),
		Category:    "education",
		Description: "测试服务描述",
		Active:      true,
	}

	for _, opt := range opts {
		opt(listing)
	}

	// GORM 跳过带 default:true 的零值字段且 RETURNING 会回填结构体，
	// 需在 Create 前记录期望值并显式写入 Active=false
	wantActive := listing.Active

	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}

	if !wantActive {
		if err := db.Model(listing).Update("active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test listing: %v", err)
		}
	}

	return listing
}

// WithCategory 设置分类
func WithCategory(category string) func(*model.Listing) {
	return func(l *model.Listing) {
		l.Category = category
	}
}

// WithActive 设置上架状态
func WithActive(active bool) func(*model.Listing) {
	return func(l *model.Listing) {
		l.Active = active
	}
}

// TestSubscription 创建测试订阅镜像
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		ID:               fmt.Sprintf("sub_test_%d", time.Now().UnixNano()),
		UserID:           userID,
		CustomerID:       fmt.Sprintf("cus_test_%d", userID),
		PlanID:           "pro",
		Status:           "active",
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
		Interval:         "month",
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithSubID 设置订阅 ID
func WithSubID(id string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.ID = id
	}
}

// WithSubStatus 设置订阅状态
func WithSubStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// WithPlan 设置套餐
func WithPlan(planID string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.PlanID = planID
	}
}

// WithCancelAtPeriodEnd 设置周期末取消标记
func WithCancelAtPeriodEnd(cancel bool) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.CancelAtPeriodEnd = cancel
	}
}

// WithPeriodEnd 设置当前周期结束时间
func WithPeriodEnd(end int64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.CurrentPeriodEnd = end
	}
}

// TestConnection 创建测试连接
func TestConnection(t *testing.T, db *gorm.DB, requesterID, recipientID int64, status string) *model.Connection {
	t.Helper()

	conn := &model.Connection{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      status,
	}

	if err := db.Create(conn).Error; err != nil {
		t.Fatalf("Failed to create test connection: %v", err)
	}

	return conn
}

// TestEndorsement 创建测试评价
func TestEndorsement(t *testing.T, db *gorm.DB, endorserID, endorseeID int64, rating int) *model.Endorsement {
	t.Helper()

	endorsement := &model.Endorsement{
		EndorserID: endorserID,
		EndorseeID: endorseeID,
		Rating:     rating,
		Comment:    "很棒的合作体验",
	}

	if err := db.Create(endorsement).Error; err != nil {
		t.Fatalf("Failed to create test endorsement: %v", err)
	}

	return endorsement
}

// TestNotification 创建测试通知
func TestNotification(t *testing.T, db *gorm.DB, userID int64, notifyType string, opts ...func(*model.Notification)) *model.Notification {
	t.Helper()

	notification := &model.Notification{
		UserID:  userID,
		Type:    notifyType,
		Content: "测试通知内容",
	}

	for _, opt := range opts {
		opt(notification)
	}

	if err := db.Create(notification).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}

	return notification
}

// WithNotifyRead 设置通知已读状态
func WithNotifyRead(read bool) func(*model.Notification) {
	return func(n *model.Notification) {
		n.Read = read
	}
}
