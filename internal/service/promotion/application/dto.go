// internal/service/promotion/application/dto.go
package application

// ValidatePromoRequest 是校验营销码的请求体。只读接口, 不消耗使用次数。
type ValidatePromoRequest struct {
	Code     string `json:"code"`
	Context  string `json:"context"`
	Category string `json:"category,omitempty"`
	Tier     string `json:"tier,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	// SubjectID 是折扣作用的资源 ID; 提供时额外预检该资源是否已核销过同一个码
	SubjectID string `json:"subject_id,omitempty"`
}

// ValidatePromoResponse 是校验营销码的响应体。
type ValidatePromoResponse struct {
	Valid         bool   `json:"valid"`
	DiscountType  string `json:"discount_type,omitempty"`
	DiscountValue int64  `json:"discount_value,omitempty"`
	Description   string `json:"description,omitempty"`
	Message       string `json:"message,omitempty"`
}
