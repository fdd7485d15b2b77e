// internal/service/payment/domain/listing.go
package domain

import (
	"time"

	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
)

// PaymentState 是领域资源上的持久化支付状态
type PaymentState string

const (
	PaymentPending PaymentState = "pending"
	PaymentPaid    PaymentState = "paid"
)

// Listing 是刊登实体中与本子系统相关的切片:
// 支付状态、档位、月费, 以及已入账升级订单号的只增列表。
// UpgradeTransactions 是升级支付的重放防线, 一个订单号最多出现一次。
type Listing struct {
	ID                  string
	OwnerID             string
	Category            pricing.Category
	Tier                pricing.Tier
	PromoCode           string // 创建时登记、尚未核销的营销码
	PaymentStatus       PaymentState
	MonthlyFee          int64 // 分
	UpgradeTransactions []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasUpgradeTransaction 查询订单号是否已经入账过
func (l *Listing) HasUpgradeTransaction(orderID string) bool {
	for _, id := range l.UpgradeTransactions {
		if id == orderID {
			return true
		}
	}
	return false
}

// ApplyUpgrade 把一笔已捕获的升级支付作用到刊登上:
// 先做重放检查, 再校验档位只能前进, 然后登记订单号、前移档位并重算月费。
// 月费按差额叠加: oldFee + (目标档位价 - 当前档位价)。
func (l *Listing) ApplyUpgrade(orderID string, target pricing.Tier) error {
	if l.HasUpgradeTransaction(orderID) {
		return ErrAlreadyCaptured
	}
	if err := pricing.ValidateUpgrade(l.Tier, target); err != nil {
		return err
	}

	delta, err := pricing.UpgradeBase(l.Category, l.Tier, target)
	if err != nil {
		return err
	}

	l.UpgradeTransactions = append(l.UpgradeTransactions, orderID)
	l.Tier = target
	l.MonthlyFee += delta
	l.UpdatedAt = time.Now()
	return nil
}
