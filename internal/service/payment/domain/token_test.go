package domain

import (
	"strings"
	"testing"
	"time"
)

func issuerAt(now time.Time) *TokenIssuer {
	issuer := NewTokenIssuer("test-secret")
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestTokenIssueAndRedeem(t *testing.T) {
	now := time.Now()
	issuer := issuerAt(now)

	token, err := issuer.Issue("listing-42", "user-7", 5*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Redeem(token, "listing-42", "user-7")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if claims.ResourceID != "listing-42" || claims.BoundIdentity != "user-7" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt != now.Add(5*time.Minute).Unix() {
		t.Errorf("expires_at: got %d, want %d", claims.ExpiresAt, now.Add(5*time.Minute).Unix())
	}
}

func TestTokenTTLIsCapped(t *testing.T) {
	now := time.Now()
	issuer := issuerAt(now)

	token, err := issuer.Issue("listing-42", "user-7", 2*time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Redeem(token, "listing-42", "user-7")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if claims.ExpiresAt != now.Add(MaxFreeTokenTTL).Unix() {
		t.Errorf("ttl must be capped at %v", MaxFreeTokenTTL)
	}
}

func TestTokenRedeemAfterExpiry(t *testing.T) {
	issued := time.Now()
	issuer := issuerAt(issued)
	token, _ := issuer.Issue("listing-42", "user-7", 5*time.Minute)

	issuer.now = func() time.Time { return issued.Add(6 * time.Minute) }
	if _, err := issuer.Redeem(token, "listing-42", "user-7"); err != ErrInvalidToken {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokenRedeemRejections(t *testing.T) {
	issuer := issuerAt(time.Now())
	token, _ := issuer.Issue("listing-42", "user-7", 5*time.Minute)

	tests := []struct {
		name     string
		token    string
		resource string
		identity string
	}{
		{"wrong resource", token, "listing-99", "user-7"},
		{"wrong identity", token, "listing-42", "user-8"},
		{"tampered payload", "x" + token, "listing-42", "user-7"},
		{"tampered signature", token[:len(token)-2] + "zz", "listing-42", "user-7"},
		{"no separator", strings.ReplaceAll(token, ".", ""), "listing-42", "user-7"},
		{"foreign secret", mustIssue(t, NewTokenIssuer("other-secret"), "listing-42", "user-7"), "listing-42", "user-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Redeem(tt.token, tt.resource, tt.identity); err != ErrInvalidToken {
				t.Errorf("got %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestUpgradeTokenBindsTargetTier(t *testing.T) {
	issuer := issuerAt(time.Now())

	token, err := issuer.IssueUpgrade("listing-42", "user-7", "standard", "SAVE10", 5*time.Minute)
	if err != nil {
		t.Fatalf("issue upgrade: %v", err)
	}
	claims, err := issuer.Redeem(token, "listing-42", "user-7")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if claims.Tier != "standard" || claims.PromoCode != "SAVE10" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// 普通令牌不携带档位声明
	plain, _ := issuer.Issue("listing-42", "user-7", 5*time.Minute)
	plainClaims, err := issuer.Redeem(plain, "listing-42", "user-7")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if plainClaims.Tier != "" || plainClaims.PromoCode != "" {
		t.Errorf("plain token must not carry tier claims: %+v", plainClaims)
	}

	if _, err := issuer.IssueUpgrade("listing-42", "user-7", "", "", time.Minute); err != ErrInvalidToken {
		t.Errorf("empty tier: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenIdentityIsCaseInsensitive(t *testing.T) {
	issuer := issuerAt(time.Now())
	token, _ := issuer.Issue("order-9", "Pilot@Example.com", 5*time.Minute)
	if _, err := issuer.Redeem(token, "order-9", "pilot@example.com"); err != nil {
		t.Fatalf("email binding must be case-insensitive: %v", err)
	}
}

func mustIssue(t *testing.T, issuer *TokenIssuer, resourceID, identity string) string {
	t.Helper()
	token, err := issuer.Issue(resourceID, identity, 5*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}
