// internal/service/campaign/application/dto.go
package application

// QuoteResponse 是广告单报价的响应体
type QuoteResponse struct {
	OrderID        string `json:"order_id"`
	CreationFee    int64  `json:"creation_fee"`
	Subscription   int64  `json:"subscription"`
	DiscountAmount int64  `json:"discount_amount"`
	GrandTotal     int64  `json:"grand_total"`
	Free           bool   `json:"free"`
}

// ActivateResponse 是激活投放的响应体
type ActivateResponse struct {
	CampaignID string `json:"campaign_id"`
	OrderID    string `json:"order_id"`
	Active     bool   `json:"active"`
}
