package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/payment"
	"github.com/servswap/servswap_go_server/internal/repository"
)

var (
	ErrSubscriptionNotFound  = errors.New("订阅不存在")
	ErrSubscriptionOwnership = errors.New("无权操作此订阅")
	ErrInvalidSubscriptionID = errors.New("订阅标识无效")
	ErrNoCustomer            = errors.New("用户尚未绑定支付客户")
	ErrPlanNotFound          = errors.New("套餐不存在")
	ErrProviderAuth          = errors.New("无法验证支付服务商身份")
)

// SubscriptionService 本地订阅镜像与支付服务商之间的对账。
// 写操作以服务商为准先行提交，镜像尽力跟随；读操作发现不一致时就地修复镜像。
type SubscriptionService struct {
	subRepo  *repository.SubscriptionRepository
	userRepo *repository.UserRepository
	provider *payment.Client
	cfg      *config.Config
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	provider *payment.Client,
	cfg *config.Config,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		provider: provider,
		cfg:      cfg,
	}
}

// isActive 订阅是否生效：服务商状态为未取消的生效状态，
// 或已设置期末取消但仍处于已付费周期内（宽限期）。
func isActive(status string, cancelAtPeriodEnd bool, currentPeriodEnd int64) bool {
	switch status {
	case "active", "trialing":
		return true
	}
	return cancelAtPeriodEnd && time.Now().Unix() < currentPeriodEnd
}

// ListAllForUser 列出用户的全部订阅。没有任何服务商托管的订阅时，
// 回退检查以用户 ID 为键的手工占位订阅。
func (s *SubscriptionService) ListAllForUser(userID int64) ([]*dto.SubscriptionView, error) {
	subs, err := s.subRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	if len(subs) == 0 {
		placeholder, err := s.subRepo.GetByID(strconv.FormatInt(userID, 10))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []*dto.SubscriptionView{}, nil
			}
			return nil, err
		}
		subs = append(subs, placeholder)
	}

	views := make([]*dto.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, s.toView(sub))
	}
	return views, nil
}

// HasActivePlan 主套餐（非认证徽章）是否生效，用于访问门禁
func (s *SubscriptionService) HasActivePlan(userID int64) (bool, error) {
	views, err := s.ListAllForUser(userID)
	if err != nil {
		return false, err
	}
	for _, v := range views {
		if v.PlanID != model.PlanVerification && v.Active {
			return true, nil
		}
	}
	return false, nil
}

// HasVerification 认证徽章订阅是否生效
func (s *SubscriptionService) HasVerification(userID int64) (bool, error) {
	views, err := s.ListAllForUser(userID)
	if err != nil {
		return false, err
	}
	for _, v := range views {
		if v.PlanID == model.PlanVerification && v.Active {
			return true, nil
		}
	}
	return false, nil
}

// RefreshFromProvider 拉取服务商实时快照与账单历史，发现镜像落后时
// 就地覆盖镜像字段（read-repair），返回合并后的视图。
func (s *SubscriptionService) RefreshFromProvider(ctx context.Context, userID int64, subscriptionID string) (*dto.SubscriptionInfoResponse, error) {
	if !strings.HasPrefix(subscriptionID, model.SubscriptionIDPrefix) {
		return nil, ErrInvalidSubscriptionID
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil {
		return nil, ErrNoCustomer
	}

	providerSub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if providerSub.Customer != *user.StripeCustomerID {
		return nil, ErrSubscriptionOwnership
	}

	invoices, err := s.provider.ListInvoices(ctx, *user.StripeCustomerID, subscriptionID)
	if err != nil {
		return nil, err
	}

	planID := s.planIDForPrice(providerSub.PriceID())
	s.repairMirror(userID, providerSub, planID)
	s.syncVerificationBadge(userID)

	view := &dto.SubscriptionView{
		ID:                providerSub.ID,
		PlanID:            planID,
		Status:            providerSub.Status,
		CancelAtPeriodEnd: providerSub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  providerSub.CurrentPeriodEnd,
		Interval:          providerSub.Interval(),
		Active:            isActive(providerSub.Status, providerSub.CancelAtPeriodEnd, providerSub.CurrentPeriodEnd),
	}

	items := make([]*dto.InvoiceItem, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, &dto.InvoiceItem{
			ID:          inv.ID,
			AmountPaid:  inv.AmountPaid,
			Currency:    inv.Currency,
			Status:      inv.Status,
			CreatedAt:   inv.Created,
			InvoicePDF:  inv.InvoicePDF,
			PeriodStart: inv.PeriodStart,
			PeriodEnd:   inv.PeriodEnd,
		})
	}

	return &dto.SubscriptionInfoResponse{Subscription: view, Invoices: items}, nil
}

// Cancel 在服务商侧设置期末取消。已在取消中的订阅直接返回成功（幂等）。
// 服务商写入成功后镜像写入失败不影响结果。
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64, subscriptionID string) (*dto.SubscriptionActionResponse, error) {
	providerSub, err := s.authorize(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	if providerSub.CancelAtPeriodEnd {
		return &dto.SubscriptionActionResponse{
			Success: true,
			Message: "订阅已设置为在当前周期结束时取消",
		}, nil
	}

	updated, err := s.provider.UpdateCancelAtPeriodEnd(ctx, subscriptionID, true)
	if err != nil {
		return nil, err
	}

	s.mirrorProviderState(subscriptionID, updated)
	return &dto.SubscriptionActionResponse{
		Success: true,
		Message: "订阅将在当前周期结束时取消，在此之前仍可正常使用",
	}, nil
}

// Resume 撤销期末取消。订阅本就生效时返回成功（幂等）。
// release 模式下服务商鉴权失败不硬性阻断，而是引导用户走账单门户。
func (s *SubscriptionService) Resume(ctx context.Context, userID int64, subscriptionID string) (*dto.SubscriptionActionResponse, error) {
	providerSub, err := s.authorize(ctx, userID, subscriptionID)
	if err != nil {
		var apiErr *payment.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 && s.cfg.Server.Mode == "release" {
			return &dto.SubscriptionActionResponse{
				Success:    false,
				Message:    "无法验证支付服务商身份",
				Suggestion: "请通过账单门户管理你的订阅",
			}, ErrProviderAuth
		}
		return nil, err
	}

	if !providerSub.CancelAtPeriodEnd {
		return &dto.SubscriptionActionResponse{
			Success: true,
			Message: "订阅已处于生效状态",
		}, nil
	}

	updated, err := s.provider.UpdateCancelAtPeriodEnd(ctx, subscriptionID, false)
	if err != nil {
		return nil, err
	}

	s.mirrorProviderState(subscriptionID, updated)
	return &dto.SubscriptionActionResponse{
		Success: true,
		Message: "订阅已恢复，将正常续费",
	}, nil
}

// OpenBillingPortal 返回服务商托管的账单门户地址，不改动本地状态
func (s *SubscriptionService) OpenBillingPortal(ctx context.Context, userID int64) (*dto.PortalResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil {
		return nil, ErrNoCustomer
	}

	session, err := s.provider.CreatePortalSession(ctx, *user.StripeCustomerID, s.cfg.Payment.PortalReturnURL)
	if err != nil {
		return nil, err
	}
	return &dto.PortalResponse{URL: session.URL}, nil
}

// Checkout 创建托管 checkout 会话。用户没有服务商客户时先创建并落库。
func (s *SubscriptionService) Checkout(ctx context.Context, userID int64, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	plan, ok := s.cfg.Payment.Plans[req.PlanID]
	if !ok {
		return nil, ErrPlanNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	} else {
		email := ""
		if user.Email != nil {
			email = *user.Email
		}
		customer, err := s.provider.CreateCustomer(ctx, email, user.Username)
		if err != nil {
			return nil, err
		}
		customerID = customer.ID
		if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
			"stripe_customer_id": customerID,
		}); err != nil {
			return nil, err
		}
	}

	session, err := s.provider.CreateCheckoutSession(ctx, customerID, plan.PriceID,
		s.cfg.Payment.CheckoutSuccessURL, s.cfg.Payment.CheckoutCancelURL)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{URL: session.URL}, nil
}

// authorize 校验订阅标识形状与归属：服务商侧客户必须等于用户存储的客户标识
func (s *SubscriptionService) authorize(ctx context.Context, userID int64, subscriptionID string) (*payment.Subscription, error) {
	if !strings.HasPrefix(subscriptionID, model.SubscriptionIDPrefix) {
		return nil, ErrInvalidSubscriptionID
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil {
		return nil, ErrNoCustomer
	}

	providerSub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if providerSub.Customer != *user.StripeCustomerID {
		return nil, ErrSubscriptionOwnership
	}
	return providerSub, nil
}

// mirrorProviderState 服务商写入成功后的尽力镜像，失败只记日志，
// 等待下一次读取时 read-repair 自愈
func (s *SubscriptionService) mirrorProviderState(subscriptionID string, providerSub *payment.Subscription) {
	err := s.subRepo.UpdateFields(subscriptionID, map[string]interface{}{
		"status":               providerSub.Status,
		"cancel_at_period_end": providerSub.CancelAtPeriodEnd,
		"current_period_end":   providerSub.CurrentPeriodEnd,
	})
	if err != nil {
		log.Printf("Subscription %s: mirror write failed (will self-heal on next read): %v", subscriptionID, err)
	}
}

// repairMirror 读取路径上的镜像修复：镜像缺失则补建，不一致则以服务商为准覆盖
func (s *SubscriptionService) repairMirror(userID int64, providerSub *payment.Subscription, planID string) {
	mirror, err := s.subRepo.GetByID(providerSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub := &model.Subscription{
				ID:                providerSub.ID,
				UserID:            userID,
				CustomerID:        providerSub.Customer,
				PlanID:            planID,
				Status:            providerSub.Status,
				CancelAtPeriodEnd: providerSub.CancelAtPeriodEnd,
				CurrentPeriodEnd:  providerSub.CurrentPeriodEnd,
				Interval:          providerSub.Interval(),
			}
			if err := s.subRepo.Upsert(sub); err != nil {
				log.Printf("Subscription %s: mirror create failed: %v", providerSub.ID, err)
			}
			return
		}
		log.Printf("Subscription %s: mirror read failed: %v", providerSub.ID, err)
		return
	}

	if mirror.CancelAtPeriodEnd == providerSub.CancelAtPeriodEnd &&
		mirror.CurrentPeriodEnd == providerSub.CurrentPeriodEnd &&
		mirror.Status == providerSub.Status {
		return
	}

	err = s.subRepo.UpdateFields(providerSub.ID, map[string]interface{}{
		"status":               providerSub.Status,
		"cancel_at_period_end": providerSub.CancelAtPeriodEnd,
		"current_period_end":   providerSub.CurrentPeriodEnd,
	})
	if err != nil {
		log.Printf("Subscription %s: mirror repair failed: %v", providerSub.ID, err)
	}
}

// syncVerificationBadge 按认证徽章订阅状态同步用户徽章摘要
func (s *SubscriptionService) syncVerificationBadge(userID int64) {
	active, err := s.HasVerification(userID)
	if err != nil {
		log.Printf("User %d: verification badge sync failed: %v", userID, err)
		return
	}
	if err := s.userRepo.SetVerificationBadge(userID, active); err != nil {
		log.Printf("User %d: verification badge write failed: %v", userID, err)
	}
}

// planIDForPrice 从服务商价格对象反查套餐
func (s *SubscriptionService) planIDForPrice(priceID string) string {
	for planID, plan := range s.cfg.Payment.Plans {
		if plan.PriceID == priceID {
			return planID
		}
	}
	return ""
}

func (s *SubscriptionService) toView(sub *model.Subscription) *dto.SubscriptionView {
	return &dto.SubscriptionView{
		ID:                sub.ID,
		PlanID:            sub.PlanID,
		Status:            sub.Status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		Interval:          sub.Interval,
		Active:            isActive(sub.Status, sub.CancelAtPeriodEnd, sub.CurrentPeriodEnd),
	}
}
