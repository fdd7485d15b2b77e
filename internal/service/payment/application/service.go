// internal/service/payment/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/metrics"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain/port"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
	promoapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/application"
	promodomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// PaymentService 驱动支付方订单的 创建 -> 捕获 -> 落账 生命周期。
// 捕获守卫的不变量: 全部校验通过之前不发生任何领域写入,
// 一笔真实支付恰好一次地作用到领域状态。
type PaymentService struct {
	provider port.PaymentProvider
	locker   port.ResourceLocker
	events   port.EventPublisher
	orders   domain.OrderRepository
	listings domain.ListingRepository
	txns     domain.TransactionRepository
	promo    *promoapp.PromotionService
	tokens   *domain.TokenIssuer
	appliers map[pricing.ResourceKind]port.ResourceApplier
	currency string
	tracer   trace.Tracer
}

// NewPaymentService 创建一个新的支付服务实例
func NewPaymentService(
	provider port.PaymentProvider,
	locker port.ResourceLocker,
	events port.EventPublisher,
	orders domain.OrderRepository,
	listings domain.ListingRepository,
	txns domain.TransactionRepository,
	promo *promoapp.PromotionService,
	tokens *domain.TokenIssuer,
	currency string,
	tracer trace.Tracer,
) *PaymentService {
	return &PaymentService{
		provider: provider,
		locker:   locker,
		events:   events,
		orders:   orders,
		listings: listings,
		txns:     txns,
		promo:    promo,
		tokens:   tokens,
		appliers: make(map[pricing.ResourceKind]port.ResourceApplier),
		currency: currency,
		tracer:   tracer,
	}
}

// RegisterApplier 注册某种资源类型的落账执行器。
// 组装期调用, 不做并发保护。
func (s *PaymentService) RegisterApplier(kind pricing.ResourceKind, applier port.ResourceApplier) {
	s.appliers[kind] = applier
}

// CreateOrder 为一个资源创建支付方订单。
// 金额由执行器按服务端权威状态重算; 为零时不接触支付方,
// 改签一个免支付完成令牌, 部分支付方会直接拒绝零金额订单。
func (s *PaymentService) CreateOrder(ctx context.Context, kind pricing.ResourceKind, resourceID, userID string) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreatePaymentOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.kind", string(kind)),
		attribute.String("payment.resource_id", resourceID),
	)

	applier, ok := s.appliers[kind]
	if !ok {
		return nil, domain.ErrUnknownResourceKind
	}

	// 1. 服务端重算应付金额
	amount, promoCode, err := applier.RecomputeAmount(ctx, resourceID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 2. 零金额走免支付分支, 显式签令牌而不是创建 $0.00 订单
	if amount == 0 {
		token, err := s.tokens.Issue(resourceID, userID, domain.MaxFreeTokenTTL)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		logger.Ctx(ctx).Printf("Issued free completion token for %s %s.", kind, resourceID)
		return &CreateOrderResponse{Free: true, CompletionToken: token}, nil
	}

	// 3. 正常金额向支付方下单, 引用串把订单绑回领域资源
	ref := &domain.OrderReference{Kind: kind, ResourceID: resourceID, UserID: userID, PromoCode: promoCode}
	return s.createProviderOrder(ctx, ref, amount)
}

// CreateUpgradeOrder 为刊登升级下单, 金额是目标档位与当前档位的差额加税
func (s *PaymentService) CreateUpgradeOrder(ctx context.Context, listingID, userID string, target pricing.Tier, promoCode string) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateUpgradeOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.resource_id", listingID),
		attribute.String("payment.target_tier", string(target)),
	)

	// 1. 读取刊登的当前档位
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 2. 升级差额必须严格为正
	base, err := pricing.UpgradeBase(listing.Category, listing.Tier, target)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 3. 营销码按当前状态校验, 折扣以 差额+税 为底
	var discount int64
	if promoCode != "" {
		promo, err := s.promo.Validate(ctx, promoCode, promodomain.ContextMarketplace, promodomain.Fact{
			Category: string(listing.Category),
			Tier:     string(target),
			UserID:   userID,
			Amount:   base,
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		discount = promo.DiscountFor(base + pricing.Tax(base))
	}

	quote, err := pricing.UpgradeQuote(listing.Category, listing.Tier, target, discount, promoCode)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 4. 零差额签升级令牌, 否则向支付方下单。
	// 升级令牌额外固化目标档位与营销码, 只能走升级兑换接口。
	if quote.IsFree() {
		token, err := s.tokens.IssueUpgrade(listingID, userID, string(target), promoCode, domain.MaxFreeTokenTTL)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		logger.Ctx(ctx).Printf("Issued free upgrade token for listing %s, target tier %s.", listingID, target)
		return &CreateOrderResponse{Free: true, CompletionToken: token}, nil
	}

	ref := &domain.OrderReference{
		Kind:       pricing.KindListingUpgrade,
		ResourceID: listingID,
		UserID:     userID,
		Tier:       target,
		PromoCode:  promoCode,
	}
	return s.createProviderOrder(ctx, ref, quote.FinalAmount)
}

func (s *PaymentService) createProviderOrder(ctx context.Context, ref *domain.OrderReference, amount int64) (*CreateOrderResponse, error) {
	orderID, err := s.provider.CreateOrder(ctx, amount, s.currency, ref.Serialize())
	if err != nil {
		return nil, errors.Wrap(err, "provider create order failed")
	}

	order, err := domain.NewPayableOrder(orderID, ref, amount)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		// 本地影子记录写失败时订单已存在于支付方, 记全上下文供对账
		logger.Ctx(ctx).Error().Err(err).
			Str("provider_order_id", orderID).
			Str("resource_id", ref.ResourceID).
			Msg("failed to persist payable order after provider create")
		return nil, err
	}

	logger.Ctx(ctx).Printf("Created provider order %s for %s %s, amount %d.", orderID, ref.Kind, ref.ResourceID, amount)
	return &CreateOrderResponse{OrderID: orderID, Amount: amount}, nil
}

// Capture 捕获一笔支付方订单并把它恰好一次地落到领域状态。
// 校验顺序是本服务的核心正确性约束:
//  1. 支付方订单必须是 COMPLETED;
//  2. 解析内嵌引用串, 缺字段或未知格式直接拒绝;
//  3. 引用的资源必须等于调用方声称的资源, 不一致是欺诈信号;
//  4. 引用串必须与下单时固化的影子订单逐字段一致, 金额同理;
//  5. 订单状态机流转到 CAPTURED, 已落账的订单在这里判重放;
//  6. 以上全部通过后, 才在资源锁内执行带"尚未支付"守卫的落账。
func (s *PaymentService) Capture(ctx context.Context, orderID, expectedResourceID string) (*CaptureResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CapturePaymentOrder")
	defer span.End()
	span.SetAttributes(attribute.String("payment.provider_order_id", orderID))

	// 1. 捕获并要求完成态
	po, err := s.provider.CaptureOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "provider capture failed")
	}
	if !po.Completed() {
		return nil, domain.ErrOrderNotCompleted
	}

	// 2. 解析内嵌引用
	ref, err := domain.ParseReference(po.CustomID)
	if err != nil {
		metrics.FraudSignalsTotal.WithLabelValues("unknown", "malformed_reference").Inc()
		logger.Ctx(ctx).Error().
			Str("provider_order_id", orderID).
			Str("custom_id", po.CustomID).
			Msg("FRAUD SIGNAL: captured order carries malformed reference")
		return nil, err
	}

	// 3. 资源交叉校验
	if expectedResourceID != "" && ref.ResourceID != expectedResourceID {
		metrics.FraudSignalsTotal.WithLabelValues(string(ref.Kind), "resource_mismatch").Inc()
		logger.Ctx(ctx).Error().
			Str("provider_order_id", orderID).
			Str("referenced_resource", ref.ResourceID).
			Str("expected_resource", expectedResourceID).
			Msg("FRAUD SIGNAL: captured order references a different resource")
		return nil, domain.ErrOrderResourceMismatch
	}

	// 4. 引用与金额比对, 以下单时固化的影子订单为准
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if order.Reference().Serialize() != ref.Serialize() {
		metrics.FraudSignalsTotal.WithLabelValues(string(ref.Kind), "resource_mismatch").Inc()
		return nil, domain.ErrOrderResourceMismatch
	}
	if po.Amount != order.ExpectedAmount {
		metrics.FraudSignalsTotal.WithLabelValues(string(ref.Kind), "amount_mismatch").Inc()
		logger.Ctx(ctx).Error().
			Str("provider_order_id", orderID).
			Int64("reported_amount", po.Amount).
			Int64("expected_amount", order.ExpectedAmount).
			Msg("FRAUD SIGNAL: captured amount disagrees with server-side amount")
		return nil, domain.ErrAmountTampered
	}

	// 5. 状态机流转: APPLIED 的订单在这里直接判重放
	if err := order.MarkCaptured(); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("provider_order_id", orderID).Msg("failed to persist captured order status")
	}

	// 6. 锁内落账
	txnID, err := s.applyCaptured(ctx, order, ref)
	if err != nil {
		metrics.CapturesTotal.WithLabelValues(string(ref.Kind), "failed").Inc()
		return nil, err
	}

	metrics.CapturesTotal.WithLabelValues(string(ref.Kind), "applied").Inc()
	return &CaptureResponse{Status: "COMPLETED", TransactionID: txnID}, nil
}

// CompleteUpgrade 把一笔客户端侧已捕获的升级支付入账到刊登。
// 这里只读地复核支付方订单(GetOrder), 不再发起捕获。
func (s *PaymentService) CompleteUpgrade(ctx context.Context, listingID string, req *CompleteUpgradeRequest) (*CompleteUpgradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CompleteUpgrade")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.resource_id", listingID),
		attribute.String("payment.provider_order_id", req.OrderID),
	)

	target := pricing.Tier(req.NewTier)

	// 1. 只读复核支付方订单
	po, err := s.provider.GetOrder(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "provider get order failed")
	}
	if !po.Completed() {
		return nil, domain.ErrOrderNotCompleted
	}

	// 2. 引用串必须指向这个刊登的这次升级
	ref, err := domain.ParseReference(po.CustomID)
	if err != nil {
		metrics.FraudSignalsTotal.WithLabelValues(string(pricing.KindListingUpgrade), "malformed_reference").Inc()
		return nil, err
	}
	if ref.Kind != pricing.KindListingUpgrade || ref.ResourceID != listingID || ref.Tier != target {
		metrics.FraudSignalsTotal.WithLabelValues(string(pricing.KindListingUpgrade), "resource_mismatch").Inc()
		logger.Ctx(ctx).Error().
			Str("provider_order_id", req.OrderID).
			Str("referenced_resource", ref.ResourceID).
			Str("expected_resource", listingID).
			Msg("FRAUD SIGNAL: upgrade order references a different listing or tier")
		return nil, domain.ErrOrderResourceMismatch
	}

	// 3. 金额比对
	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if po.Amount != order.ExpectedAmount {
		metrics.FraudSignalsTotal.WithLabelValues(string(pricing.KindListingUpgrade), "amount_mismatch").Inc()
		return nil, domain.ErrAmountTampered
	}

	// 4. 状态机流转: 已落账的订单在这里直接判重放
	if err := order.MarkCaptured(); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("provider_order_id", req.OrderID).Msg("failed to persist captured order status")
	}

	// 5. 锁内做重放检查 + 档位前移 + 订单号登记
	var updated *domain.Listing
	err = s.locker.WithLock(ctx, listingID, func(ctx context.Context) error {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if err := listing.ApplyUpgrade(req.OrderID, target); err != nil {
			return err
		}
		if err := s.listings.SaveUpgrade(ctx, listing, req.OrderID); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		metrics.CapturesTotal.WithLabelValues(string(pricing.KindListingUpgrade), "failed").Inc()
		if !errors.Is(err, domain.ErrAlreadyCaptured) && !errors.Is(err, pricing.ErrInvalidUpgrade) {
			s.markFailed(ctx, order)
			s.reportReconciliation(ctx, ref, req.OrderID, po.Amount, err)
		}
		return nil, err
	}

	txnID := s.settle(ctx, order, ref)
	metrics.CapturesTotal.WithLabelValues(string(pricing.KindListingUpgrade), "applied").Inc()

	return &CompleteUpgradeResponse{
		Listing: &ListingDTO{
			ID:                  updated.ID,
			Tier:                string(updated.Tier),
			MonthlyFee:          updated.MonthlyFee,
			PaymentStatus:       string(updated.PaymentStatus),
			UpgradeTransactions: updated.UpgradeTransactions,
		},
		TransactionID: txnID,
	}, nil
}

// CompleteFreeOrder 兑换免支付完成令牌。
// 效果等同一次成功捕获: 同样的"尚未支付"守卫、同样的核销与台账,
// 区别只是从头到尾不接触支付方。
func (s *PaymentService) CompleteFreeOrder(ctx context.Context, kind pricing.ResourceKind, resourceID, token, callerIdentity string) (*CaptureResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CompleteFreeOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.kind", string(kind)),
		attribute.String("payment.resource_id", resourceID),
	)

	// 1. 令牌校验: 签名、类型、资源绑定、身份绑定、有效期
	claims, err := s.tokens.Redeem(token, resourceID, callerIdentity)
	if err != nil {
		metrics.FreeCompletionsTotal.WithLabelValues(string(kind), "invalid_token").Inc()
		return nil, err
	}
	// 升级令牌绑定了目标档位, 只能走升级兑换接口
	if claims.Tier != "" {
		metrics.FreeCompletionsTotal.WithLabelValues(string(kind), "invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}

	applier, ok := s.appliers[kind]
	if !ok {
		return nil, domain.ErrUnknownResourceKind
	}

	// 2. 兑换时重算金额, 码可能在签发与兑换之间失效
	amount, promoCode, err := applier.RecomputeAmount(ctx, resourceID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if amount != 0 {
		metrics.FreeCompletionsTotal.WithLabelValues(string(kind), "not_free").Inc()
		logger.Ctx(ctx).Printf("Free completion rejected for %s %s: recomputed amount is %d.", kind, resourceID, amount)
		return nil, domain.ErrNotActuallyFree
	}

	// 3. 锁内落账, 守卫与付费路径完全一致
	txnID := "free-" + uuid.NewString()
	ref := &domain.OrderReference{Kind: kind, ResourceID: resourceID, UserID: callerIdentity, PromoCode: promoCode}
	err = s.locker.WithLock(ctx, resourceID, func(ctx context.Context) error {
		return applier.Apply(ctx, ref, txnID)
	})
	if err != nil {
		metrics.FreeCompletionsTotal.WithLabelValues(string(kind), "failed").Inc()
		return nil, err
	}

	s.recordLedger(ctx, ref, txnID, txnID, 0)
	metrics.FreeCompletionsTotal.WithLabelValues(string(kind), "completed").Inc()
	logger.Ctx(ctx).Printf("SUCCESS: Free completion applied for %s %s.", kind, resourceID)
	return &CaptureResponse{Status: "COMPLETED", TransactionID: txnID}, nil
}

// CompleteFreeUpgrade 兑换免支付的档位升级令牌。
// 与付费升级同一套守卫: 档位只能前移、订单号恰好登记一次,
// 差额在兑换时以令牌固化的目标档位和营销码重算, 不再为零则拒绝。
func (s *PaymentService) CompleteFreeUpgrade(ctx context.Context, listingID string, req *CompleteFreeUpgradeRequest, callerIdentity string) (*CompleteUpgradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CompleteFreeUpgrade")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.resource_id", listingID),
		attribute.String("payment.target_tier", req.NewTier),
	)

	target := pricing.Tier(req.NewTier)
	kindLabel := string(pricing.KindListingUpgrade)

	// 1. 令牌校验, 目标档位必须与签发时固化的一致
	claims, err := s.tokens.Redeem(req.CompletionToken, listingID, callerIdentity)
	if err != nil {
		metrics.FreeCompletionsTotal.WithLabelValues(kindLabel, "invalid_token").Inc()
		return nil, err
	}
	if claims.Tier != string(target) {
		metrics.FreeCompletionsTotal.WithLabelValues(kindLabel, "invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}

	// 2. 兑换时重算差额, 码可能在签发与兑换之间失效
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	base, err := pricing.UpgradeBase(listing.Category, listing.Tier, target)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	var discount int64
	if claims.PromoCode != "" {
		promo, err := s.promo.Validate(ctx, claims.PromoCode, promodomain.ContextMarketplace, promodomain.Fact{
			Category: string(listing.Category),
			Tier:     string(target),
			UserID:   callerIdentity,
			Amount:   base,
		})
		if err != nil {
			span.RecordError(err)
		} else {
			discount = promo.DiscountFor(base + pricing.Tax(base))
		}
	}
	quote, err := pricing.UpgradeQuote(listing.Category, listing.Tier, target, discount, claims.PromoCode)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !quote.IsFree() {
		metrics.FreeCompletionsTotal.WithLabelValues(kindLabel, "not_free").Inc()
		logger.Ctx(ctx).Printf("Free upgrade rejected for listing %s: recomputed amount is %d.", listingID, quote.FinalAmount)
		return nil, domain.ErrNotActuallyFree
	}

	// 3. 锁内做重放检查 + 档位前移 + 订单号登记
	txnID := "free-" + uuid.NewString()
	var updated *domain.Listing
	err = s.locker.WithLock(ctx, listingID, func(ctx context.Context) error {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if err := listing.ApplyUpgrade(txnID, target); err != nil {
			return err
		}
		if err := s.listings.SaveUpgrade(ctx, listing, txnID); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		metrics.FreeCompletionsTotal.WithLabelValues(kindLabel, "failed").Inc()
		return nil, err
	}

	ref := &domain.OrderReference{
		Kind:       pricing.KindListingUpgrade,
		ResourceID: listingID,
		UserID:     callerIdentity,
		Tier:       target,
		PromoCode:  claims.PromoCode,
	}
	s.recordLedger(ctx, ref, txnID, txnID, 0)
	metrics.FreeCompletionsTotal.WithLabelValues(kindLabel, "completed").Inc()
	logger.Ctx(ctx).Printf("SUCCESS: Free upgrade applied to listing %s.", listingID)

	return &CompleteUpgradeResponse{
		Listing: &ListingDTO{
			ID:                  updated.ID,
			Tier:                string(updated.Tier),
			MonthlyFee:          updated.MonthlyFee,
			PaymentStatus:       string(updated.PaymentStatus),
			UpgradeTransactions: updated.UpgradeTransactions,
		},
		TransactionID: txnID,
	}, nil
}

// applyCaptured 在资源锁内执行落账, 失败时发对账事件。
// 捕获是不可逆的外部副作用: 落账失败绝不自动重试,
// 订单钉死在 FAILED, 带全支付方订单号上报人工对账。
func (s *PaymentService) applyCaptured(ctx context.Context, order *domain.PayableOrder, ref *domain.OrderReference) (string, error) {
	applier, ok := s.appliers[ref.Kind]
	if !ok {
		return "", domain.ErrUnknownResourceKind
	}

	txnID := uuid.NewString()
	err := s.locker.WithLock(ctx, ref.ResourceID, func(ctx context.Context) error {
		return applier.Apply(ctx, ref, txnID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCaptured) {
			return "", err
		}
		s.markFailed(ctx, order)
		s.reportReconciliation(ctx, ref, order.ID, order.ExpectedAmount, err)
		return "", err
	}

	s.settleWithTxnID(ctx, order, ref, txnID)
	return txnID, nil
}

// settle 走完状态机的 APPLIED 流转、登记台账、核销营销码并发布落账事件
func (s *PaymentService) settle(ctx context.Context, order *domain.PayableOrder, ref *domain.OrderReference) string {
	txnID := uuid.NewString()
	s.settleWithTxnID(ctx, order, ref, txnID)
	return txnID
}

func (s *PaymentService) settleWithTxnID(ctx context.Context, order *domain.PayableOrder, ref *domain.OrderReference, txnID string) {
	if err := order.MarkApplied(); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("provider_order_id", order.ID).Msg("order rejected the applied transition")
	} else if err := s.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("provider_order_id", order.ID).Msg("failed to mark order applied")
	}
	s.recordLedger(ctx, ref, txnID, order.ID, order.ExpectedAmount)
	logger.Ctx(ctx).Printf("SUCCESS: Payment %s applied to %s %s.", order.ID, ref.Kind, ref.ResourceID)
}

func (s *PaymentService) markFailed(ctx context.Context, order *domain.PayableOrder) {
	order.MarkFailed()
	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("provider_order_id", order.ID).Msg("failed to mark order failed")
	}
}

func (s *PaymentService) recordLedger(ctx context.Context, ref *domain.OrderReference, txnID, providerOrderID string, amount int64) {
	txn := &domain.Transaction{
		ID:              txnID,
		ProviderOrderID: providerOrderID,
		Kind:            string(ref.Kind),
		ResourceID:      ref.ResourceID,
		UserID:          ref.UserID,
		Amount:          amount,
		PromoCode:       ref.PromoCode,
		CreatedAt:       time.Now(),
	}
	if err := s.txns.Record(ctx, txn); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("provider_order_id", providerOrderID).
			Str("resource_id", ref.ResourceID).
			Msg("failed to record transaction ledger row")
	}

	if ref.PromoCode != "" {
		err := s.promo.Redeem(ctx, ref.PromoCode, ref.ResourceID, ref.UserID)
		if err != nil && !errors.Is(err, promodomain.ErrPromoAlreadyApplied) {
			logger.Ctx(ctx).Error().Err(err).
				Str("code", ref.PromoCode).
				Str("resource_id", ref.ResourceID).
				Msg("failed to record promo usage after applied payment")
		}
	}

	s.events.PublishApplied(ctx, &port.PaymentEvent{
		ProviderOrderID: providerOrderID,
		Kind:            string(ref.Kind),
		ResourceID:      ref.ResourceID,
		UserID:          ref.UserID,
		Amount:          amount,
		PromoCode:       ref.PromoCode,
	})
}

func (s *PaymentService) reportReconciliation(ctx context.Context, ref *domain.OrderReference, orderID string, amount int64, cause error) {
	logger.Ctx(ctx).Error().Err(cause).
		Str("provider_order_id", orderID).
		Str("resource_id", ref.ResourceID).
		Msg("RECONCILIATION REQUIRED: provider capture succeeded but domain apply failed")
	s.events.PublishReconciliationRequired(ctx, &port.PaymentEvent{
		ProviderOrderID: orderID,
		Kind:            string(ref.Kind),
		ResourceID:      ref.ResourceID,
		UserID:          ref.UserID,
		Amount:          amount,
		Reason:          cause.Error(),
	})
}
