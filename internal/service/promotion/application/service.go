// internal/service/promotion/application/service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/metrics"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// PromotionService 定义了营销码台账提供的所有业务用例。
// Validate 是纯读校验; RecordUsage 才会消耗使用次数,
// 且只应在支付/免支付完成真正落库成功的那条路径上被调用。
type PromotionService struct {
	repo   domain.Repository
	rules  domain.RuleEngine
	tracer trace.Tracer
	now    func() time.Time
}

// NewPromotionService 创建一个新的营销服务实例
func NewPromotionService(repo domain.Repository, rules domain.RuleEngine, tracer trace.Tracer) *PromotionService {
	return &PromotionService{
		repo:   repo,
		rules:  rules,
		tracer: tracer,
		now:    time.Now,
	}
}

// Validate 校验营销码在给定场景与业务事实下是否可用, 并返回完整的领域对象。
// 校验完整执行并返回具体的错误种类, 不产生任何写入。
func (s *PromotionService) Validate(ctx context.Context, code string, promoCtx domain.Context, fact domain.Fact) (*domain.PromoCode, error) {
	ctx, span := s.tracer.Start(ctx, "service.ValidatePromoCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("promo.code", domain.NormalizeCode(code)),
		attribute.String("promo.context", string(promoCtx)),
	)

	// 1. 从仓储获取营销码实体
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 2. 领域对象自身的校验: 启用状态、有效期窗口、场景、余量
	if err := promo.ValidateAt(s.now(), promoCtx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 3. 规则引擎评估可选的适用规则; 规则非法时一律拒绝
	fact.Context = string(promoCtx)
	ok, err := s.rules.Eligible(promo.RuleDefinition, fact)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("code", promo.Code).Msg("promo rule evaluation failed, rejecting")
		span.RecordError(err)
		return nil, domain.ErrPromoRuleRejected
	}
	if !ok {
		return nil, domain.ErrPromoRuleRejected
	}

	return promo, nil
}

// RecordUsage 登记一次成功核销: 写入流水并原子地把 used_count 加一。
// 并发核销逼近 max_uses 时, 仓储层的条件更新保证最多只有额度内的调用能成功。
func (s *PromotionService) RecordUsage(ctx context.Context, promoID int64, subjectID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "service.RecordPromoUsage")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("promo.id", promoID),
		attribute.String("promo.subject_id", subjectID),
	)

	if err := s.repo.ConsumeUse(ctx, promoID, subjectID, userID); err != nil {
		span.RecordError(err)
		metrics.PromoRedemptionsTotal.WithLabelValues("failed").Inc()
		return err
	}

	metrics.PromoRedemptionsTotal.WithLabelValues("success").Inc()
	logger.Ctx(ctx).Printf("Promo %d redeemed for subject %s.", promoID, subjectID)
	return nil
}

// Redeem 按营销码完成一次核销: 查码后登记使用。
// 折扣在下单时已经兑现, 码在下单与完成之间过期不影响核销本身。
func (s *PromotionService) Redeem(ctx context.Context, code, subjectID, userID string) error {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	return s.RecordUsage(ctx, promo.ID, subjectID, userID)
}

// Preview 为只读校验接口组装响应, 不暴露内部的 ID 与规则定义。
func (s *PromotionService) Preview(ctx context.Context, req *ValidatePromoRequest) *ValidatePromoResponse {
	promo, err := s.Validate(ctx, req.Code, domain.Context(req.Context), domain.Fact{
		Category: req.Category,
		Tier:     req.Tier,
		UserID:   req.UserID,
		Amount:   req.Amount,
	})
	if err != nil {
		return &ValidatePromoResponse{Valid: false, Message: err.Error()}
	}
	// subject 维度的去重预检: 同一资源不允许重复享受同一个码
	if req.SubjectID != "" {
		used, err := s.repo.HasUsage(ctx, promo.ID, req.SubjectID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("code", promo.Code).Msg("promo usage lookup failed")
		} else if used {
			return &ValidatePromoResponse{Valid: false, Message: domain.ErrPromoAlreadyApplied.Error()}
		}
	}
	return &ValidatePromoResponse{
		Valid:         true,
		DiscountType:  string(promo.DiscountType),
		DiscountValue: promo.DiscountValue,
		Description:   promo.Description,
	}
}
