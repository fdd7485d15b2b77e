// internal/service/pricing/domain/tax.go
package domain

// TaxRateBasisPoints 是固定税率(万分数表示), 825 即 8.25%。
const TaxRateBasisPoints int64 = 825

// Tax 在基准价上计算税额, 四舍五入到分。
// 全程整数运算, 不引入浮点误差。
func Tax(baseCents int64) int64 {
	if baseCents <= 0 {
		return 0
	}
	return (baseCents*TaxRateBasisPoints + 5000) / 10000
}
