// internal/service/payment/application/dto.go
package application

// CreateOrderRequest 是为一个资源下单的请求体。
// 金额不在请求里: 应付金额永远由服务端按权威状态重算。
type CreateOrderRequest struct {
	Kind       string `json:"kind"`
	ResourceID string `json:"resource_id"`
}

// CreateOrderResponse 是下单结果。
// 金额为零时不会创建支付方订单, 返回一个免支付完成令牌。
type CreateOrderResponse struct {
	OrderID         string `json:"order_id,omitempty"`
	Free            bool   `json:"free"`
	CompletionToken string `json:"completion_token,omitempty"`
	Amount          int64  `json:"amount"`
}

// CreateUpgradeOrderRequest 是为刊登升级下单的请求体
type CreateUpgradeOrderRequest struct {
	NewTier   string `json:"new_tier"`
	PromoCode string `json:"promo_code,omitempty"`
}

// CaptureResponse 是捕获结果
type CaptureResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// CompleteUpgradeRequest 是升级入账的请求体
type CompleteUpgradeRequest struct {
	NewTier string `json:"new_tier"`
	OrderID string `json:"order_id"`
}

// ListingDTO 是升级入账后返回的刊登视图
type ListingDTO struct {
	ID                  string   `json:"id"`
	Tier                string   `json:"tier"`
	MonthlyFee          int64    `json:"monthly_fee"`
	PaymentStatus       string   `json:"payment_status"`
	UpgradeTransactions []string `json:"upgrade_transactions"`
}

// CompleteUpgradeResponse 是升级入账的响应体
type CompleteUpgradeResponse struct {
	Listing       *ListingDTO `json:"listing"`
	TransactionID string      `json:"transaction_id"`
}

// CompleteFreeOrderRequest 是免支付完成的请求体
type CompleteFreeOrderRequest struct {
	CompletionToken string `json:"completion_token"`
}

// CompleteFreeUpgradeRequest 是免支付升级兑换的请求体
type CompleteFreeUpgradeRequest struct {
	NewTier         string `json:"new_tier"`
	CompletionToken string `json:"completion_token"`
}
