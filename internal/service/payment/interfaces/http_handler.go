// internal/service/payment/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/application"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
	promodomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// PaymentHandler 封装了 payment 服务的 HTTP 处理器
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler 创建一个新的 HTTP 处理器实例
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments/create-order", h.handleCreateOrder)
	mux.HandleFunc("POST /payments/capture-order/{orderID}", h.handleCapture)
	mux.HandleFunc("POST /payments/capture-order/{orderID}/{resourceID}", h.handleCapture)
	mux.HandleFunc("POST /listings/{id}/create-upgrade-order", h.handleCreateUpgradeOrder)
	mux.HandleFunc("POST /listings/{id}/complete-upgrade", h.handleCompleteUpgrade)
	mux.HandleFunc("POST /listings/{id}/complete-free-upgrade", h.handleCompleteFreeUpgrade)
	mux.HandleFunc("POST /listings/complete-free-order/{id}", h.handleCompleteFreeListing)
}

func (h *PaymentHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	userID := r.Header.Get("X-User-ID")
	if req.Kind == "" || req.ResourceID == "" || userID == "" {
		http.Error(w, "kind, resource_id and X-User-ID are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateOrder(ctx, pricing.ResourceKind(req.Kind), req.ResourceID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *PaymentHandler) handleCapture(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	orderID := r.PathValue("orderID")
	resourceID := r.PathValue("resourceID") // 可选, 广告等调用方声称资源的流程携带

	resp, err := h.service.Capture(ctx, orderID, resourceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *PaymentHandler) handleCreateUpgradeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req application.CreateUpgradeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	userID := r.Header.Get("X-User-ID")
	if req.NewTier == "" || userID == "" {
		http.Error(w, "new_tier and X-User-ID are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateUpgradeOrder(ctx, r.PathValue("id"), userID, pricing.Tier(req.NewTier), req.PromoCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *PaymentHandler) handleCompleteUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req application.CompleteUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewTier == "" || req.OrderID == "" {
		http.Error(w, "new_tier and order_id are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CompleteUpgrade(ctx, r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *PaymentHandler) handleCompleteFreeUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req application.CompleteFreeUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	identity := r.Header.Get("X-User-ID")
	if req.NewTier == "" || req.CompletionToken == "" || identity == "" {
		http.Error(w, "new_tier, completion_token and X-User-ID are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CompleteFreeUpgrade(ctx, r.PathValue("id"), &req, identity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *PaymentHandler) handleCompleteFreeListing(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req application.CompleteFreeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	identity := r.Header.Get("X-User-ID")
	if req.CompletionToken == "" || identity == "" {
		http.Error(w, "completion_token and X-User-ID are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CompleteFreeOrder(ctx, pricing.KindListingFee, r.PathValue("id"), req.CompletionToken, identity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError 把领域错误映射到 HTTP 状态码。
// 欺诈信号与篡改按 400 返回, 令牌类失败按 403, 其余按 500。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderResourceMismatch),
		errors.Is(err, domain.ErrAmountTampered),
		errors.Is(err, domain.ErrMalformedReference),
		errors.Is(err, domain.ErrAlreadyCaptured),
		errors.Is(err, domain.ErrOrderNotCompleted),
		errors.Is(err, domain.ErrUnknownResourceKind),
		errors.Is(err, pricing.ErrInvalidUpgrade),
		errors.Is(err, promodomain.ErrPromoExhausted),
		errors.Is(err, promodomain.ErrPromoAlreadyApplied),
		errors.Is(err, promodomain.ErrPromoNotFound),
		errors.Is(err, promodomain.ErrPromoInactive),
		errors.Is(err, promodomain.ErrPromoNotStarted),
		errors.Is(err, promodomain.ErrPromoExpired),
		errors.Is(err, promodomain.ErrPromoWrongContext),
		errors.Is(err, promodomain.ErrPromoRuleRejected):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrNotActuallyFree):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrResourceNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("payment handler internal error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
