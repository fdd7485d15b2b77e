// internal/service/payment/domain/reference.go
package domain

import (
	"strings"

	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
)

// referenceFieldCount 引用串固定为五段: kind|resourceId|userId|tier|promoCode
const referenceFieldCount = 5

// OrderReference 是嵌入支付方订单 custom_id 的结构化引用。
// 它是把一笔外部支付绑回领域资源的唯一通道, 捕获时必须重新解析并交叉校验,
// 任何缺字段或未知格式都按非法处理, 绝不默认放行。
type OrderReference struct {
	Kind       pricing.ResourceKind
	ResourceID string
	UserID     string
	Tier       pricing.Tier // 仅升级订单携带
	PromoCode  string       // 下单时登记的营销码, 可为空
}

// Serialize 把引用编码成管道分隔的定长字符串。
// 字段值里不允许出现分隔符, 出现时直接剔除。
func (r *OrderReference) Serialize() string {
	fields := []string{
		string(r.Kind),
		r.ResourceID,
		r.UserID,
		string(r.Tier),
		r.PromoCode,
	}
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, "|", "")
	}
	return strings.Join(fields, "|")
}

// ParseReference 解析 custom_id 并做必填字段检查。
// kind、resourceId、userId 三者缺一不可; kind 必须是已知的资源类型。
func ParseReference(raw string) (*OrderReference, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != referenceFieldCount {
		return nil, ErrMalformedReference
	}

	ref := &OrderReference{
		Kind:       pricing.ResourceKind(parts[0]),
		ResourceID: parts[1],
		UserID:     parts[2],
		Tier:       pricing.Tier(parts[3]),
		PromoCode:  parts[4],
	}

	switch ref.Kind {
	case pricing.KindListingFee, pricing.KindListingUpgrade, pricing.KindRental, pricing.KindAdCampaign:
	default:
		return nil, ErrMalformedReference
	}
	if ref.ResourceID == "" || ref.UserID == "" {
		return nil, ErrMalformedReference
	}
	return ref, nil
}
