package application

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain/port"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
	promoapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/application"
	promodomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// ---- fakes ----

type fakeProvider struct {
	mu        sync.Mutex
	orders    map[string]*port.ProviderOrder
	createSeq int
}

func (p *fakeProvider) CreateOrder(_ context.Context, amount int64, currency, reference string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createSeq++
	id := "pp-created-" + strconv.Itoa(p.createSeq)
	p.orders[id] = &port.ProviderOrder{ID: id, Status: "CREATED", Amount: amount, Currency: currency, CustomID: reference}
	return id, nil
}

func (p *fakeProvider) CaptureOrder(_ context.Context, orderID string) (*port.ProviderOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.orders[orderID]
	if !ok {
		return nil, errors.New("provider: no such order")
	}
	return o, nil
}

func (p *fakeProvider) GetOrder(ctx context.Context, orderID string) (*port.ProviderOrder, error) {
	return p.CaptureOrder(ctx, orderID)
}

type fakeLocker struct{ mu sync.Mutex }

func (l *fakeLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

type fakeEvents struct {
	mu             sync.Mutex
	applied        int
	reconciliation int
}

func (e *fakeEvents) PublishApplied(context.Context, *port.PaymentEvent) {
	e.mu.Lock()
	e.applied++
	e.mu.Unlock()
}

func (e *fakeEvents) PublishReconciliationRequired(context.Context, *port.PaymentEvent) {
	e.mu.Lock()
	e.reconciliation++
	e.mu.Unlock()
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.PayableOrder
}

func (r *fakeOrderRepo) Save(_ context.Context, order *domain.PayableOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*domain.PayableOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		o.Status = status
	}
	return nil
}

type fakeListingRepo struct {
	mu          sync.Mutex
	listings    map[string]*domain.Listing
	markPaidErr error
}

func (r *fakeListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	copied := *l
	copied.UpgradeTransactions = append([]string(nil), l.UpgradeTransactions...)
	return &copied, nil
}

func (r *fakeListingRepo) MarkPaid(_ context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markPaidErr != nil {
		return r.markPaidErr
	}
	l, ok := r.listings[listingID]
	if !ok {
		return domain.ErrResourceNotFound
	}
	if l.PaymentStatus == domain.PaymentPaid {
		return domain.ErrAlreadyCaptured
	}
	l.PaymentStatus = domain.PaymentPaid
	return nil
}

func (r *fakeListingRepo) SaveUpgrade(_ context.Context, listing *domain.Listing, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.listings[listing.ID]
	if !ok {
		return domain.ErrResourceNotFound
	}
	for _, id := range stored.UpgradeTransactions {
		if id == orderID {
			return domain.ErrAlreadyCaptured
		}
	}
	stored.Tier = listing.Tier
	stored.MonthlyFee = listing.MonthlyFee
	stored.UpgradeTransactions = append([]string(nil), listing.UpgradeTransactions...)
	return nil
}

type fakeTxnRepo struct {
	mu   sync.Mutex
	rows []*domain.Transaction
}

func (r *fakeTxnRepo) Record(_ context.Context, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, txn)
	return nil
}

func (r *fakeTxnRepo) FindByResource(_ context.Context, resourceID string) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range r.rows {
		if t.ResourceID == resourceID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[string]*promodomain.PromoCode
	usages map[int64]map[string]bool
}

func (r *fakePromoRepo) FindByCode(_ context.Context, code string) (*promodomain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[promodomain.NormalizeCode(code)]
	if !ok {
		return nil, promodomain.ErrPromoNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePromoRepo) ConsumeUse(_ context.Context, promoID int64, subjectID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usages[promoID][subjectID] {
		return promodomain.ErrPromoAlreadyApplied
	}
	for _, p := range r.promos {
		if p.ID == promoID {
			if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
				return promodomain.ErrPromoExhausted
			}
			p.UsedCount++
		}
	}
	if r.usages[promoID] == nil {
		r.usages[promoID] = make(map[string]bool)
	}
	r.usages[promoID][subjectID] = true
	return nil
}

func (r *fakePromoRepo) HasUsage(_ context.Context, promoID int64, subjectID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usages[promoID][subjectID], nil
}

type passRules struct{}

func (passRules) Eligible(string, promodomain.Fact) (bool, error) { return true, nil }

// ---- fixture ----

type fixture struct {
	svc      *PaymentService
	provider *fakeProvider
	orders   *fakeOrderRepo
	listings *fakeListingRepo
	txns     *fakeTxnRepo
	events   *fakeEvents
	promos   *fakePromoRepo
}

func newFixture(promos ...*promodomain.PromoCode) *fixture {
	promoRepo := &fakePromoRepo{
		promos: make(map[string]*promodomain.PromoCode),
		usages: make(map[int64]map[string]bool),
	}
	for _, p := range promos {
		promoRepo.promos[p.Code] = p
	}
	promoSvc := promoapp.NewPromotionService(promoRepo, passRules{}, otel.Tracer("test"))

	f := &fixture{
		provider: &fakeProvider{orders: make(map[string]*port.ProviderOrder)},
		orders:   &fakeOrderRepo{orders: make(map[string]*domain.PayableOrder)},
		listings: &fakeListingRepo{listings: make(map[string]*domain.Listing)},
		txns:     &fakeTxnRepo{},
		events:   &fakeEvents{},
		promos:   promoRepo,
	}
	f.svc = NewPaymentService(
		f.provider, &fakeLocker{}, f.events,
		f.orders, f.listings, f.txns,
		promoSvc, domain.NewTokenIssuer("test-secret"), "USD",
		otel.Tracer("test"),
	)
	f.svc.RegisterApplier(pricing.KindListingFee, NewListingApplier(f.listings, promoSvc))
	return f
}

// seedListingFee 预置一个待支付刊登和对应的已完成支付方订单
func (f *fixture) seedListingFee(orderID string, amount int64) {
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPending,
	}
	ref := &domain.OrderReference{Kind: pricing.KindListingFee, ResourceID: "listing-42", UserID: "user-7"}
	f.provider.orders[orderID] = &port.ProviderOrder{
		ID:       orderID,
		Status:   "COMPLETED",
		Amount:   amount,
		Currency: "USD",
		CustomID: ref.Serialize(),
	}
	f.orders.orders[orderID] = &domain.PayableOrder{
		ID:             orderID,
		Kind:           pricing.KindListingFee,
		ResourceID:     "listing-42",
		UserID:         "user-7",
		ExpectedAmount: 2706, // $25 基准 + 8.25% 税
		Status:         domain.StatusCreated,
	}
}

// ---- tests ----

func TestCaptureAppliesExactlyOnce(t *testing.T) {
	f := newFixture()
	f.seedListingFee("pp-1", 2706)

	resp, err := f.svc.Capture(context.Background(), "pp-1", "")
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	if resp.Status != "COMPLETED" {
		t.Errorf("status: got %s", resp.Status)
	}
	if f.listings.listings["listing-42"].PaymentStatus != domain.PaymentPaid {
		t.Error("listing must be marked paid")
	}
	if f.orders.orders["pp-1"].Status != domain.StatusApplied {
		t.Errorf("order status: got %s, want %s", f.orders.orders["pp-1"].Status, domain.StatusApplied)
	}

	// 重复捕获同一订单: 不允许静默成功, 也不允许重复入账
	if _, err := f.svc.Capture(context.Background(), "pp-1", ""); !errors.Is(err, domain.ErrAlreadyCaptured) {
		t.Fatalf("second capture: got %v, want ErrAlreadyCaptured", err)
	}
	if len(f.txns.rows) != 1 {
		t.Errorf("ledger rows: got %d, want exactly 1", len(f.txns.rows))
	}
	if f.events.applied != 1 {
		t.Errorf("applied events: got %d, want 1", f.events.applied)
	}
}

func TestCaptureRejectsResourceMismatch(t *testing.T) {
	f := newFixture()
	f.seedListingFee("pp-1", 2706)

	_, err := f.svc.Capture(context.Background(), "pp-1", "listing-99")
	if !errors.Is(err, domain.ErrOrderResourceMismatch) {
		t.Fatalf("got %v, want ErrOrderResourceMismatch", err)
	}
	if f.listings.listings["listing-42"].PaymentStatus != domain.PaymentPending {
		t.Error("mismatched capture must not mutate domain state")
	}
}

func TestCaptureRejectsTamperedAmount(t *testing.T) {
	f := newFixture()
	f.seedListingFee("pp-1", 99) // 支付方上报金额与服务端固化金额不符

	_, err := f.svc.Capture(context.Background(), "pp-1", "")
	if !errors.Is(err, domain.ErrAmountTampered) {
		t.Fatalf("got %v, want ErrAmountTampered", err)
	}
	if f.listings.listings["listing-42"].PaymentStatus != domain.PaymentPending {
		t.Error("tampered capture must not mutate domain state")
	}
}

func TestCaptureRejectsMalformedReference(t *testing.T) {
	f := newFixture()
	f.seedListingFee("pp-1", 2706)
	f.provider.orders["pp-1"].CustomID = "not-a-reference"

	if _, err := f.svc.Capture(context.Background(), "pp-1", ""); !errors.Is(err, domain.ErrMalformedReference) {
		t.Fatalf("got %v, want ErrMalformedReference", err)
	}
}

func TestCaptureRequiresCompletedProviderOrder(t *testing.T) {
	f := newFixture()
	f.seedListingFee("pp-1", 2706)
	f.provider.orders["pp-1"].Status = "CREATED"

	if _, err := f.svc.Capture(context.Background(), "pp-1", ""); !errors.Is(err, domain.ErrOrderNotCompleted) {
		t.Fatalf("got %v, want ErrOrderNotCompleted", err)
	}
}

func TestCaptureApplyFailureRaisesReconciliation(t *testing.T) {
	f := newFixture()
	f.seedListingFee("pp-1", 2706)
	f.listings.markPaidErr = errors.New("connection reset")

	if _, err := f.svc.Capture(context.Background(), "pp-1", ""); err == nil {
		t.Fatal("capture must surface the apply failure")
	}
	if f.events.reconciliation != 1 {
		t.Errorf("reconciliation events: got %d, want 1", f.events.reconciliation)
	}
	// 落账失败的订单钉死在 FAILED, 留给人工对账
	if f.orders.orders["pp-1"].Status != domain.StatusFailed {
		t.Errorf("order status: got %s, want %s", f.orders.orders["pp-1"].Status, domain.StatusFailed)
	}
}

func TestCreateOrderIssuesTokenWhenFree(t *testing.T) {
	hundredOff := &promodomain.PromoCode{
		ID:           3,
		Code:         "FREEBIRD",
		DiscountType: promodomain.DiscountTypeWaiveFee,
		IsActive:     true,
		ValidFrom:    time.Now().Add(-time.Hour),
		Contexts:     []promodomain.Context{promodomain.ContextMarketplace},
	}
	f := newFixture(hundredOff)
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PromoCode:     "FREEBIRD",
		PaymentStatus: domain.PaymentPending,
	}

	resp, err := f.svc.CreateOrder(context.Background(), pricing.KindListingFee, "listing-42", "user-7")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !resp.Free || resp.CompletionToken == "" || resp.OrderID != "" {
		t.Fatalf("zero amount must issue a token and skip the provider, got %+v", resp)
	}

	// 兑换令牌: 效果等同一次成功捕获
	capResp, err := f.svc.CompleteFreeOrder(context.Background(), pricing.KindListingFee, "listing-42", resp.CompletionToken, "user-7")
	if err != nil {
		t.Fatalf("complete free order: %v", err)
	}
	if capResp.Status != "COMPLETED" {
		t.Errorf("status: got %s", capResp.Status)
	}
	if f.listings.listings["listing-42"].PaymentStatus != domain.PaymentPaid {
		t.Error("listing must be marked paid")
	}
	if f.promos.promos["FREEBIRD"].UsedCount != 1 {
		t.Errorf("promo used count: got %d, want 1", f.promos.promos["FREEBIRD"].UsedCount)
	}

	// 令牌仍在有效期内, 但资源已经入账: 第二次兑换必须被守卫拦下
	if _, err := f.svc.CompleteFreeOrder(context.Background(), pricing.KindListingFee, "listing-42", resp.CompletionToken, "user-7"); !errors.Is(err, domain.ErrAlreadyCaptured) {
		t.Fatalf("second redemption: got %v, want ErrAlreadyCaptured", err)
	}
}

func TestCompleteFreeOrderRejectsForgedToken(t *testing.T) {
	f := newFixture()
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPending,
	}

	forged, _ := domain.NewTokenIssuer("attacker-secret").Issue("listing-42", "user-7", time.Minute)
	if _, err := f.svc.CompleteFreeOrder(context.Background(), pricing.KindListingFee, "listing-42", forged, "user-7"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestCompleteFreeOrderRejectsWhenNotActuallyFree(t *testing.T) {
	f := newFixture()
	// 刊登没有任何营销码, 重算金额必然大于零
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPending,
	}
	token, _ := domain.NewTokenIssuer("test-secret").Issue("listing-42", "user-7", time.Minute)

	if _, err := f.svc.CompleteFreeOrder(context.Background(), pricing.KindListingFee, "listing-42", token, "user-7"); !errors.Is(err, domain.ErrNotActuallyFree) {
		t.Fatalf("got %v, want ErrNotActuallyFree", err)
	}
	if f.listings.listings["listing-42"].PaymentStatus != domain.PaymentPending {
		t.Error("rejected redemption must not mutate domain state")
	}
}

// basic($25) -> standard($40): 差额 $15, 税 8.25% ⇒ 应付 $16.24。
// 入账后档位前移、月费重算, 订单号恰好追加一次。
func TestCompleteUpgradeHappyPathAndReplay(t *testing.T) {
	f := newFixture()
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPaid,
		MonthlyFee:    2500,
	}
	ref := &domain.OrderReference{
		Kind:       pricing.KindListingUpgrade,
		ResourceID: "listing-42",
		UserID:     "user-7",
		Tier:       pricing.TierStandard,
	}
	f.provider.orders["pp-up"] = &port.ProviderOrder{
		ID:       "pp-up",
		Status:   "COMPLETED",
		Amount:   1624,
		Currency: "USD",
		CustomID: ref.Serialize(),
	}
	f.orders.orders["pp-up"] = &domain.PayableOrder{
		ID:             "pp-up",
		Kind:           pricing.KindListingUpgrade,
		ResourceID:     "listing-42",
		UserID:         "user-7",
		Tier:           pricing.TierStandard,
		ExpectedAmount: 1624,
		Status:         domain.StatusCreated,
	}

	req := &CompleteUpgradeRequest{NewTier: "standard", OrderID: "pp-up"}
	resp, err := f.svc.CompleteUpgrade(context.Background(), "listing-42", req)
	if err != nil {
		t.Fatalf("complete upgrade: %v", err)
	}
	if resp.Listing.Tier != "standard" || resp.Listing.MonthlyFee != 4000 {
		t.Errorf("listing after upgrade: %+v", resp.Listing)
	}
	if len(resp.Listing.UpgradeTransactions) != 1 {
		t.Errorf("transactions: got %v, want exactly one", resp.Listing.UpgradeTransactions)
	}

	// 同一订单号再次入账: 重放保护
	if _, err := f.svc.CompleteUpgrade(context.Background(), "listing-42", req); !errors.Is(err, domain.ErrAlreadyCaptured) {
		t.Fatalf("replay: got %v, want ErrAlreadyCaptured", err)
	}
	stored := f.listings.listings["listing-42"]
	if stored.Tier != pricing.TierStandard || len(stored.UpgradeTransactions) != 1 {
		t.Errorf("replay must not mutate: tier=%s transactions=%v", stored.Tier, stored.UpgradeTransactions)
	}
}

func TestCompleteUpgradeRejectsWrongListing(t *testing.T) {
	f := newFixture()
	ref := &domain.OrderReference{
		Kind:       pricing.KindListingUpgrade,
		ResourceID: "listing-42",
		UserID:     "user-7",
		Tier:       pricing.TierStandard,
	}
	f.provider.orders["pp-up"] = &port.ProviderOrder{
		ID: "pp-up", Status: "COMPLETED", Amount: 1624, Currency: "USD", CustomID: ref.Serialize(),
	}

	req := &CompleteUpgradeRequest{NewTier: "standard", OrderID: "pp-up"}
	if _, err := f.svc.CompleteUpgrade(context.Background(), "listing-99", req); !errors.Is(err, domain.ErrOrderResourceMismatch) {
		t.Fatalf("got %v, want ErrOrderResourceMismatch", err)
	}
}

func TestCreateUpgradeOrderComputesDelta(t *testing.T) {
	f := newFixture()
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPaid,
		MonthlyFee:    2500,
	}

	resp, err := f.svc.CreateUpgradeOrder(context.Background(), "listing-42", "user-7", pricing.TierStandard, "")
	if err != nil {
		t.Fatalf("create upgrade order: %v", err)
	}
	if resp.Free {
		t.Fatal("paid upgrade must not take the free branch")
	}
	if resp.Amount != 1624 {
		t.Errorf("amount: got %d, want 1624", resp.Amount)
	}

	// 降级与原地升级在下单阶段就被拒绝
	if _, err := f.svc.CreateUpgradeOrder(context.Background(), "listing-42", "user-7", pricing.TierBasic, ""); !errors.Is(err, pricing.ErrInvalidUpgrade) {
		t.Fatalf("same tier: got %v, want ErrInvalidUpgrade", err)
	}
}

// 全额折扣的升级走免支付分支: 下单签升级令牌, 兑换后档位前移、月费重算,
// 同一令牌第二次兑换时档位已经前移, 重算直接拒绝。
func TestFreeUpgradeTokenRedeemsExactlyOnce(t *testing.T) {
	freeUpgrade := &promodomain.PromoCode{
		ID:           4,
		Code:         "UPGRADEFREE",
		DiscountType: promodomain.DiscountTypeWaiveFee,
		IsActive:     true,
		ValidFrom:    time.Now().Add(-time.Hour),
		Contexts:     []promodomain.Context{promodomain.ContextMarketplace},
	}
	f := newFixture(freeUpgrade)
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPaid,
		MonthlyFee:    2500,
	}

	resp, err := f.svc.CreateUpgradeOrder(context.Background(), "listing-42", "user-7", pricing.TierStandard, "UPGRADEFREE")
	if err != nil {
		t.Fatalf("create upgrade order: %v", err)
	}
	if !resp.Free || resp.CompletionToken == "" || resp.OrderID != "" {
		t.Fatalf("fully discounted upgrade must issue a token and skip the provider, got %+v", resp)
	}

	req := &CompleteFreeUpgradeRequest{NewTier: "standard", CompletionToken: resp.CompletionToken}
	upResp, err := f.svc.CompleteFreeUpgrade(context.Background(), "listing-42", req, "user-7")
	if err != nil {
		t.Fatalf("complete free upgrade: %v", err)
	}
	if upResp.Listing.Tier != "standard" || upResp.Listing.MonthlyFee != 4000 {
		t.Errorf("listing after free upgrade: %+v", upResp.Listing)
	}
	if f.promos.promos["UPGRADEFREE"].UsedCount != 1 {
		t.Errorf("promo used count: got %d, want 1", f.promos.promos["UPGRADEFREE"].UsedCount)
	}
	if f.events.applied != 1 {
		t.Errorf("applied events: got %d, want 1", f.events.applied)
	}

	// 令牌仍在有效期内, 但档位已经前移: 重算差额挡下第二次兑换
	if _, err := f.svc.CompleteFreeUpgrade(context.Background(), "listing-42", req, "user-7"); !errors.Is(err, pricing.ErrInvalidUpgrade) {
		t.Fatalf("second redemption: got %v, want ErrInvalidUpgrade", err)
	}
	stored := f.listings.listings["listing-42"]
	if len(stored.UpgradeTransactions) != 1 {
		t.Errorf("transactions: got %v, want exactly one", stored.UpgradeTransactions)
	}
}

func TestCompleteFreeUpgradeRejectsTierMismatch(t *testing.T) {
	f := newFixture()
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPaid,
		MonthlyFee:    2500,
	}
	token, _ := domain.NewTokenIssuer("test-secret").IssueUpgrade("listing-42", "user-7", "standard", "", time.Minute)

	// 令牌固化的是 standard, 拿它兑换 premium 必须被拒绝
	req := &CompleteFreeUpgradeRequest{NewTier: "premium", CompletionToken: token}
	if _, err := f.svc.CompleteFreeUpgrade(context.Background(), "listing-42", req, "user-7"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
	if f.listings.listings["listing-42"].Tier != pricing.TierBasic {
		t.Error("rejected redemption must not mutate domain state")
	}
}

func TestCompleteFreeOrderRejectsUpgradeToken(t *testing.T) {
	f := newFixture()
	f.listings.listings["listing-42"] = &domain.Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: domain.PaymentPending,
	}
	token, _ := domain.NewTokenIssuer("test-secret").IssueUpgrade("listing-42", "user-7", "standard", "", time.Minute)

	// 升级令牌绑定了目标档位, 不能拿去清掉刊登费
	if _, err := f.svc.CompleteFreeOrder(context.Background(), pricing.KindListingFee, "listing-42", token, "user-7"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
	if f.listings.listings["listing-42"].PaymentStatus != domain.PaymentPending {
		t.Error("rejected redemption must not mutate domain state")
	}
}
