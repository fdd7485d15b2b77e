// internal/service/payment/domain/token.go
package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// freeCompletionTokenType 是免支付完成令牌唯一合法的类型标识
const freeCompletionTokenType = "free-order-completion"

// MaxFreeTokenTTL 令牌有效期的硬上限
const MaxFreeTokenTTL = 15 * time.Minute

// TokenClaims 是免支付完成令牌承载的声明。
// 令牌不落库, 真伪完全由签名 + 有效期 + 兑换时服务端重算金额为零来证明。
type TokenClaims struct {
	TokenType     string `json:"token_type"`
	ResourceID    string `json:"resource_id"`
	BoundIdentity string `json:"bound_identity"`       // 用户 ID 或广告单登记的邮箱
	Tier          string `json:"tier,omitempty"`       // 仅升级令牌携带: 绑定的目标档位
	PromoCode     string `json:"promo_code,omitempty"` // 仅升级令牌携带: 签发时兑现折扣的营销码
	IssuedAt      int64  `json:"issued_at"`
	ExpiresAt     int64  `json:"expires_at"`
}

// TokenIssuer 用服务端密钥签发与校验免支付完成令牌
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer 创建一个新的令牌签发器
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue 为一次零金额完成签发令牌。ttl 超过上限时按上限截断。
func (t *TokenIssuer) Issue(resourceID, boundIdentity string, ttl time.Duration) (string, error) {
	return t.issue(TokenClaims{ResourceID: resourceID, BoundIdentity: boundIdentity}, ttl)
}

// IssueUpgrade 为一次零差额的档位升级签发令牌。
// 目标档位与签发时的营销码一并固化进声明, 兑换时按同一对条件重算差额。
func (t *TokenIssuer) IssueUpgrade(resourceID, boundIdentity, tier, promoCode string, ttl time.Duration) (string, error) {
	if tier == "" {
		return "", ErrInvalidToken
	}
	return t.issue(TokenClaims{
		ResourceID:    resourceID,
		BoundIdentity: boundIdentity,
		Tier:          tier,
		PromoCode:     promoCode,
	}, ttl)
}

func (t *TokenIssuer) issue(claims TokenClaims, ttl time.Duration) (string, error) {
	if claims.ResourceID == "" || claims.BoundIdentity == "" {
		return "", ErrInvalidToken
	}
	if ttl <= 0 || ttl > MaxFreeTokenTTL {
		ttl = MaxFreeTokenTTL
	}

	now := t.now()
	claims.TokenType = freeCompletionTokenType
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + t.sign(encoded), nil
}

// Redeem 校验令牌并返回其声明。
// 签名、类型、资源绑定、身份绑定、有效期任意一项不符都返回 ErrInvalidToken;
// 金额是否仍然为零由调用方在兑换时另行重算, 不属于令牌自身的职责。
func (t *TokenIssuer) Redeem(token, resourceID, callerIdentity string) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}
	if !hmac.Equal([]byte(t.sign(parts[0])), []byte(parts[1])) {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != freeCompletionTokenType {
		return nil, ErrInvalidToken
	}
	if claims.ResourceID != resourceID {
		return nil, ErrInvalidToken
	}
	if !strings.EqualFold(claims.BoundIdentity, callerIdentity) {
		return nil, ErrInvalidToken
	}
	if t.now().Unix() > claims.ExpiresAt {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (t *TokenIssuer) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
