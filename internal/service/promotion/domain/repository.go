// internal/service/promotion/domain/repository.go
package domain

import "context"

// Repository 定义了营销码数据的持久化接口
// 这是领域层与基础设施层之间的“插座”
type Repository interface {
	// FindByCode 按规范化后的 code 查找营销码。
	FindByCode(ctx context.Context, code string) (*PromoCode, error)

	// ConsumeUse 原子地登记一次核销: 写入使用流水并把 used_count 加一。
	// 余量不足时返回 ErrPromoExhausted; 同一 subject 重复核销返回 ErrPromoAlreadyApplied。
	// 增量与余量检查必须是同一条条件更新, 并发核销不允许超发。
	ConsumeUse(ctx context.Context, promoID int64, subjectID, userID string) error

	// HasUsage 查询某个 subject 是否已经核销过该营销码。
	HasUsage(ctx context.Context, promoID int64, subjectID string) (bool, error)
}

// Fact 是规则引擎评估时可见的业务事实。
type Fact struct {
	Category string `json:"category"`
	Tier     string `json:"tier"`
	Context  string `json:"context"`
	UserID   string `json:"user_id"`
	Amount   int64  `json:"amount"`
}

// RuleEngine 评估营销码上挂载的适用规则。
// 规则为空串时视为无条件通过; 规则本身非法时应当返回错误(宁可拒绝, 不可放行)。
type RuleEngine interface {
	Eligible(ruleDefinition string, fact Fact) (bool, error)
}
