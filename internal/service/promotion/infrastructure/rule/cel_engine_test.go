package rule

import (
	"testing"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

func TestEligible(t *testing.T) {
	engine, err := NewCELRuleEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	fact := domain.Fact{
		Category: "aircraft-sale",
		Tier:     "standard",
		Context:  "marketplace",
		UserID:   "user-1",
		Amount:   4000,
	}

	tests := []struct {
		name    string
		rule    string
		want    bool
		wantErr bool
	}{
		{"empty rule passes", "", true, false},
		{"matching category", `category == "aircraft-sale"`, true, false},
		{"non-matching category", `category == "aircraft-rental"`, false, false},
		{"amount threshold met", `amount >= 2500`, true, false},
		{"amount threshold not met", `amount >= 5000`, false, false},
		{"compound rule", `category == "aircraft-sale" && amount >= 2500`, true, false},
		{"syntax error fails closed", `category === "x"`, false, true},
		{"non-bool result fails closed", `amount + 1`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Eligible(tt.rule, fact)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr=%v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibleCachesPrograms(t *testing.T) {
	engine, err := NewCELRuleEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	rule := `amount >= 100`
	for i := 0; i < 3; i++ {
		if ok, err := engine.Eligible(rule, domain.Fact{Amount: 200}); err != nil || !ok {
			t.Fatalf("iteration %d: got (%v, %v)", i, ok, err)
		}
	}
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	if len(engine.programs) != 1 {
		t.Errorf("expected 1 cached program, got %d", len(engine.programs))
	}
}
