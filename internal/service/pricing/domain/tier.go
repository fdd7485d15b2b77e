// internal/service/pricing/domain/tier.go
package domain

// Tier 是刊登套餐的服务档位, 档位之间存在严格的全序关系。
type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// tierOrder 定义档位的先后顺序, 升级只允许沿此顺序向前。
var tierOrder = []Tier{TierBasic, TierStandard, TierPremium}

// TierIndex 返回档位在订购顺序中的下标, 未知档位返回 -1。
func TierIndex(t Tier) int {
	for i, known := range tierOrder {
		if known == t {
			return i
		}
	}
	return -1
}

// ValidateUpgrade 校验一次档位升级是否合法:
// 两个档位都必须是已知档位, 且目标档位严格高于当前档位。
func ValidateUpgrade(current, target Tier) error {
	ci, ti := TierIndex(current), TierIndex(target)
	if ci < 0 || ti < 0 {
		return ErrInvalidUpgrade
	}
	if ti <= ci {
		return ErrInvalidUpgrade
	}
	return nil
}
