// internal/service/campaign/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/domain"
	paymentport "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain/port"
	promoapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/application"
	promodomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// campaignDuration 投放记录的默认生命周期
const campaignDuration = 30 * 24 * time.Hour

// CampaignService 管理广告单的报价与激活。
// 激活只在审核通过且支付落账之后发生, 每个广告单最多激活一次。
type CampaignService struct {
	orders    domain.OrderRepository
	campaigns domain.CampaignRepository
	promo     *promoapp.PromotionService
	locker    paymentport.ResourceLocker
	tracer    trace.Tracer
}

// NewCampaignService 创建一个新的广告服务实例
func NewCampaignService(
	orders domain.OrderRepository,
	campaigns domain.CampaignRepository,
	promo *promoapp.PromotionService,
	locker paymentport.ResourceLocker,
	tracer trace.Tracer,
) *CampaignService {
	return &CampaignService{
		orders:    orders,
		campaigns: campaigns,
		promo:     promo,
		locker:    locker,
		tracer:    tracer,
	}
}

// Quote 以服务端权威状态重算广告单的折扣与应付总额并持久化。
// 折扣按分项计算: 创建费与订阅费各自独立打折。
func (s *CampaignService) Quote(ctx context.Context, orderID string) (*QuoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.QuoteCampaignOrder")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.order_id", orderID))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	order.RecomputeTotals(s.lookupPromo(ctx, order))
	if err := s.orders.UpdateTotals(ctx, order); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &QuoteResponse{
		OrderID:        order.ID,
		CreationFee:    order.CreationFee,
		Subscription:   order.Subscription,
		DiscountAmount: order.DiscountAmount,
		GrandTotal:     order.GrandTotal,
		Free:           order.IsFree(),
	}, nil
}

// Activate 把一个已支付、已审核的广告单提升为投放记录。
// 前置条件全部通过后才写入; 唯一约束兜底保证每单最多一条,
// 重复激活返回 ErrAlreadyActivated 而不是静默成功。
func (s *CampaignService) Activate(ctx context.Context, orderID string) (*ActivateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.ActivateCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.order_id", orderID))

	var campaign *domain.Campaign
	err := s.locker.WithLock(ctx, orderID, func(ctx context.Context) error {
		// 1. 以最新已提交状态检查前置条件
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.CanActivate(); err != nil {
			return err
		}

		// 2. 幂等性靠存在性检查, 不靠覆盖
		exists, err := s.campaigns.ExistsForOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyActivated
		}

		// 3. 生成投放记录
		now := time.Now()
		campaign = &domain.Campaign{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ImageURL:  order.ImageURL,
			StartsAt:  now,
			EndsAt:    now.Add(campaignDuration),
			Active:    true,
			CreatedAt: now,
		}
		return s.campaigns.CreateFromOrder(ctx, campaign)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Printf("SUCCESS: Campaign %s activated for order %s.", campaign.ID, orderID)
	return &ActivateResponse{CampaignID: campaign.ID, OrderID: orderID, Active: true}, nil
}

// lookupPromo 校验广告单上的营销码, 失效时返回 nil 让折扣归零
func (s *CampaignService) lookupPromo(ctx context.Context, order *domain.CampaignOrder) *promodomain.PromoCode {
	if order.PromoCode == "" {
		return nil
	}
	promo, err := s.promo.Validate(ctx, order.PromoCode, promodomain.ContextAdvertising, promodomain.Fact{
		Context: string(promodomain.ContextAdvertising),
		UserID:  order.UserID,
		Amount:  order.CreationFee + order.Subscription,
	})
	if err != nil {
		logger.Ctx(ctx).Printf("Promo %s no longer valid for campaign order %s: %v", order.PromoCode, order.ID, err)
		return nil
	}
	return promo
}
