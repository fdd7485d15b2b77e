// internal/service/pricing/domain/catalog.go
package domain

// Category 是可计费的刊登类目。
type Category string

const (
	CategoryAircraftSale   Category = "aircraft-sale"
	CategoryAircraftRental Category = "aircraft-rental"
	CategoryAviationParts  Category = "aviation-parts"
	CategoryFlightService  Category = "flight-service"
)

// tieredCatalog 是分档类目的月费表(单位: 分)。
var tieredCatalog = map[Category]map[Tier]int64{
	CategoryAircraftSale: {
		TierBasic:    2500,
		TierStandard: 4000,
		TierPremium:  7000,
	},
}

// flatCatalog 是不分档类目的固定月费表(单位: 分)。
var flatCatalog = map[Category]int64{
	CategoryAircraftRental: 2500,
	CategoryAviationParts:  1000,
	CategoryFlightService:  1500,
}

// BaseAmount 查询 (类目, 档位) 对应的基准价。
// 返回的第二个值标记查询是否精确命中: 未知类目或未知档位会回落到
// 该类目(或售卖类目)最便宜的档位, 调用方应当对回落情况打告警日志,
// 绝不允许悄悄按 0 元处理。
func BaseAmount(category Category, tier Tier) (int64, bool) {
	if flat, ok := flatCatalog[category]; ok {
		return flat, true
	}

	tiers, ok := tieredCatalog[category]
	if !ok {
		// 未知类目: 回落到售卖类目的最低档
		return cheapest(tieredCatalog[CategoryAircraftSale]), false
	}
	if price, ok := tiers[tier]; ok {
		return price, true
	}
	// 类目已知但档位未知: 回落到该类目的最低档
	return cheapest(tiers), false
}

// TierPrice 查询分档类目中某个档位的价格, 未知时回落到最低档。
func TierPrice(category Category, tier Tier) (int64, bool) {
	tiers, ok := tieredCatalog[category]
	if !ok {
		return cheapest(tieredCatalog[CategoryAircraftSale]), false
	}
	if price, ok := tiers[tier]; ok {
		return price, true
	}
	return cheapest(tiers), false
}

// UpgradeBase 计算档位升级应补缴的差价(目标档减当前档)。
// 差价不为正说明不是一次合法升级。
func UpgradeBase(category Category, current, target Tier) (int64, error) {
	if err := ValidateUpgrade(current, target); err != nil {
		return 0, err
	}
	currentPrice, okCur := TierPrice(category, current)
	targetPrice, okTgt := TierPrice(category, target)
	if !okCur || !okTgt {
		return 0, ErrInvalidUpgrade
	}
	delta := targetPrice - currentPrice
	if delta <= 0 {
		return 0, ErrInvalidUpgrade
	}
	return delta, nil
}

func cheapest(tiers map[Tier]int64) int64 {
	var min int64 = -1
	for _, price := range tiers {
		if min < 0 || price < min {
			min = price
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
