// internal/service/promotion/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/application"
)

// PromotionHandler 封装了 promotion 服务的 HTTP 处理器
type PromotionHandler struct {
	service *application.PromotionService
}

// NewPromotionHandler 创建一个新的 HTTP 处理器实例
func NewPromotionHandler(service *application.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /promo-codes/validate", h.handleValidate)
}

// handleValidate 是只读的营销码校验接口, 不消耗使用次数。
func (h *PromotionHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.ValidatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.Context == "" {
		http.Error(w, "code and context are required", http.StatusBadRequest)
		return
	}

	resp := h.service.Preview(ctx, &req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
