package domain

import (
	"testing"

	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
)

func basicListing() *Listing {
	return &Listing{
		ID:            "listing-42",
		OwnerID:       "user-7",
		Category:      pricing.CategoryAircraftSale,
		Tier:          pricing.TierBasic,
		PaymentStatus: PaymentPaid,
		MonthlyFee:    2500,
	}
}

// basic($25) -> standard($40): 月费加 $15 差额, 订单号恰好追加一次。
func TestApplyUpgradeMovesTierAndFee(t *testing.T) {
	l := basicListing()

	if err := l.ApplyUpgrade("order-1", pricing.TierStandard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Tier != pricing.TierStandard {
		t.Errorf("tier: got %s, want standard", l.Tier)
	}
	if l.MonthlyFee != 4000 {
		t.Errorf("monthly fee: got %d, want 4000", l.MonthlyFee)
	}
	if len(l.UpgradeTransactions) != 1 || l.UpgradeTransactions[0] != "order-1" {
		t.Errorf("transactions: got %v, want exactly [order-1]", l.UpgradeTransactions)
	}
}

func TestApplyUpgradeReplayIsRejected(t *testing.T) {
	l := basicListing()
	if err := l.ApplyUpgrade("order-1", pricing.TierStandard); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	err := l.ApplyUpgrade("order-1", pricing.TierPremium)
	if err != ErrAlreadyCaptured {
		t.Fatalf("replay: got %v, want ErrAlreadyCaptured", err)
	}
	if l.Tier != pricing.TierStandard || len(l.UpgradeTransactions) != 1 {
		t.Errorf("replay must not mutate: tier=%s transactions=%v", l.Tier, l.UpgradeTransactions)
	}
}

// 订单号整串比对: 子串关系的订单号不是重放
func TestHasUpgradeTransactionRequiresExactID(t *testing.T) {
	l := basicListing()
	l.UpgradeTransactions = []string{"order-10"}

	if l.HasUpgradeTransaction("order-1") {
		t.Error("substring order id must not count as a replay")
	}
	if !l.HasUpgradeTransaction("order-10") {
		t.Error("stored order id must count as a replay")
	}
	if err := l.ApplyUpgrade("order-1", pricing.TierStandard); err != nil {
		t.Fatalf("substring order id must be accepted: %v", err)
	}
}

func TestApplyUpgradeRejectsNonForwardTiers(t *testing.T) {
	tests := []struct {
		name    string
		current pricing.Tier
		target  pricing.Tier
	}{
		{"downgrade", pricing.TierPremium, pricing.TierBasic},
		{"same tier", pricing.TierStandard, pricing.TierStandard},
		{"unknown target", pricing.TierBasic, pricing.Tier("platinum")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := basicListing()
			l.Tier = tt.current
			if err := l.ApplyUpgrade("order-x", tt.target); err != pricing.ErrInvalidUpgrade {
				t.Errorf("got %v, want ErrInvalidUpgrade", err)
			}
		})
	}
}

func TestPayableOrderTransitions(t *testing.T) {
	ref := &OrderReference{Kind: pricing.KindListingFee, ResourceID: "listing-42", UserID: "user-7"}
	order, err := NewPayableOrder("pp-1", ref, 2706)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if order.Status != StatusCreated {
		t.Fatalf("initial status: got %s", order.Status)
	}

	if err := order.MarkApplied(); err == nil {
		t.Error("apply before capture must fail")
	}
	if err := order.MarkCaptured(); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := order.MarkApplied(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := order.MarkCaptured(); err != ErrAlreadyCaptured {
		t.Errorf("capture after applied: got %v, want ErrAlreadyCaptured", err)
	}
}

func TestNewPayableOrderRejectsZeroAmount(t *testing.T) {
	ref := &OrderReference{Kind: pricing.KindListingFee, ResourceID: "listing-42", UserID: "user-7"}
	if _, err := NewPayableOrder("pp-1", ref, 0); err == nil {
		t.Error("zero-amount provider orders must never be created")
	}
}
