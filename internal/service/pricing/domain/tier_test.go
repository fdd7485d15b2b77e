package domain

import "testing"

func TestValidateUpgrade(t *testing.T) {
	tests := []struct {
		name    string
		current Tier
		target  Tier
		wantErr bool
	}{
		{"basic to standard", TierBasic, TierStandard, false},
		{"basic to premium", TierBasic, TierPremium, false},
		{"standard to premium", TierStandard, TierPremium, false},
		{"premium to basic", TierPremium, TierBasic, true},
		{"standard to standard", TierStandard, TierStandard, true},
		{"unknown current", "gold", TierPremium, true},
		{"unknown target", TierBasic, "gold", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpgrade(tt.current, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpgrade(%s, %s): got %v, wantErr=%v", tt.current, tt.target, err, tt.wantErr)
			}
		})
	}
}

func TestTierIndexOrdering(t *testing.T) {
	if !(TierIndex(TierBasic) < TierIndex(TierStandard) && TierIndex(TierStandard) < TierIndex(TierPremium)) {
		t.Fatal("tier ordering must be basic < standard < premium")
	}
	if TierIndex("platinum") != -1 {
		t.Error("unknown tier must have index -1")
	}
}
