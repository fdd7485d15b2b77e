package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// fakePromoRepo 在内存里复刻仓储的并发语义:
// 余量检查与自增在同一把锁内完成, 对应生产实现中的单条条件 UPDATE。
type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[string]*domain.PromoCode
	usages map[int64]map[string]bool
}

func newFakePromoRepo(promos ...*domain.PromoCode) *fakePromoRepo {
	r := &fakePromoRepo{
		promos: make(map[string]*domain.PromoCode),
		usages: make(map[int64]map[string]bool),
	}
	for _, p := range promos {
		r.promos[p.Code] = p
	}
	return r
}

func (r *fakePromoRepo) FindByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[domain.NormalizeCode(code)]
	if !ok {
		return nil, domain.ErrPromoNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePromoRepo) ConsumeUse(_ context.Context, promoID int64, subjectID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var promo *domain.PromoCode
	for _, p := range r.promos {
		if p.ID == promoID {
			promo = p
			break
		}
	}
	if promo == nil {
		return domain.ErrPromoNotFound
	}
	if r.usages[promoID][subjectID] {
		return domain.ErrPromoAlreadyApplied
	}
	if promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses {
		return domain.ErrPromoExhausted
	}
	promo.UsedCount++
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

func (passRules) Eligible(string, domain.Fact) (bool, error) { return true, nil }

func newTestService(promos ...*domain.PromoCode) (*PromotionService, *fakePromoRepo) {
	repo := newFakePromoRepo(promos...)
	svc := NewPromotionService(repo, passRules{}, otel.Tracer("test"))
	return svc, repo
}

func activePromo() *domain.PromoCode {
	return &domain.PromoCode{
		ID:            7,
		Code:          "TAKEOFF",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: 50,
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
		Contexts:      []domain.Context{domain.ContextMarketplace},
	}
}

func TestValidateHappyPath(t *testing.T) {
	svc, _ := newTestService(activePromo())
	promo, err := svc.Validate(context.Background(), "takeoff", domain.ContextMarketplace, domain.Fact{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if promo.Code != "TAKEOFF" {
		t.Errorf("got code %s", promo.Code)
	}
}

func TestValidateWrongContext(t *testing.T) {
	svc, _ := newTestService(activePromo())
	_, err := svc.Validate(context.Background(), "TAKEOFF", domain.ContextAdvertising, domain.Fact{})
	if err != domain.ErrPromoWrongContext {
		t.Fatalf("got %v, want ErrPromoWrongContext", err)
	}
}

func TestValidateUnknownCode(t *testing.T) {
	svc, _ := newTestService(activePromo())
	_, err := svc.Validate(context.Background(), "NOPE", domain.ContextMarketplace, domain.Fact{})
	if err != domain.ErrPromoNotFound {
		t.Fatalf("got %v, want ErrPromoNotFound", err)
	}
}

type denyRules struct{}

func (denyRules) Eligible(string, domain.Fact) (bool, error) { return false, nil }

func TestValidateRuleRejected(t *testing.T) {
	repo := newFakePromoRepo(activePromo())
	svc := NewPromotionService(repo, denyRules{}, otel.Tracer("test"))
	_, err := svc.Validate(context.Background(), "TAKEOFF", domain.ContextMarketplace, domain.Fact{})
	if err != domain.ErrPromoRuleRejected {
		t.Fatalf("got %v, want ErrPromoRuleRejected", err)
	}
}

// 两个并发核销争夺 maxUses=1 的营销码: 恰好一个成功, 一个 ErrPromoExhausted,
// used_count 最终为 1。
func TestConcurrentRedemptionOfSingleUseCode(t *testing.T) {
	one := int64(1)
	promo := activePromo()
	promo.MaxUses = &one
	svc, repo := newTestService(promo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subject := []string{"listing-a", "listing-b"}[i]
			errs[i] = svc.RecordUsage(context.Background(), promo.ID, subject, "user-1")
		}(i)
	}
	wg.Wait()

	var successes, exhausted int
	for _, err := range errs {
		switch err {
		case nil:
			successes++
		case domain.ErrPromoExhausted:
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || exhausted != 1 {
		t.Fatalf("got %d successes and %d exhausted, want exactly 1 and 1", successes, exhausted)
	}
	if repo.promos["TAKEOFF"].UsedCount != 1 {
		t.Errorf("used count: got %d, want 1", repo.promos["TAKEOFF"].UsedCount)
	}
}

func TestRecordUsageSameSubjectTwice(t *testing.T) {
	svc, _ := newTestService(activePromo())
	if err := svc.RecordUsage(context.Background(), 7, "listing-a", "user-1"); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	if err := svc.RecordUsage(context.Background(), 7, "listing-a", "user-1"); err != domain.ErrPromoAlreadyApplied {
		t.Fatalf("second usage: got %v, want ErrPromoAlreadyApplied", err)
	}
}

func TestPreview(t *testing.T) {
	svc, _ := newTestService(activePromo())
	resp := svc.Preview(context.Background(), &ValidatePromoRequest{Code: "TAKEOFF", Context: "marketplace"})
	if !resp.Valid || resp.DiscountType != "percentage" || resp.DiscountValue != 50 {
		t.Errorf("unexpected preview: %+v", resp)
	}

	bad := svc.Preview(context.Background(), &ValidatePromoRequest{Code: "NOPE", Context: "marketplace"})
	if bad.Valid || bad.Message == "" {
		t.Errorf("invalid code must yield valid=false with message, got %+v", bad)
	}
}

// 带 subject_id 的预检: 已核销过的资源直接返回 valid=false,
// 不带 subject_id 时跳过这一步。
func TestPreviewFlagsAlreadyAppliedSubject(t *testing.T) {
	svc, _ := newTestService(activePromo())
	if err := svc.RecordUsage(context.Background(), 7, "listing-a", "user-1"); err != nil {
		t.Fatalf("record usage: %v", err)
	}

	used := svc.Preview(context.Background(), &ValidatePromoRequest{Code: "TAKEOFF", Context: "marketplace", SubjectID: "listing-a"})
	if used.Valid || used.Message != domain.ErrPromoAlreadyApplied.Error() {
		t.Errorf("used subject must yield valid=false, got %+v", used)
	}

	fresh := svc.Preview(context.Background(), &ValidatePromoRequest{Code: "TAKEOFF", Context: "marketplace", SubjectID: "listing-b"})
	if !fresh.Valid {
		t.Errorf("fresh subject must stay valid, got %+v", fresh)
	}
	anonymous := svc.Preview(context.Background(), &ValidatePromoRequest{Code: "TAKEOFF", Context: "marketplace"})
	if !anonymous.Valid {
		t.Errorf("preview without subject must stay valid, got %+v", anonymous)
	}
}
