// internal/service/campaign/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/application"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/domain"
	paymentapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/application"
	paymentdomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
)

// CampaignHandler 封装了 campaign 服务的 HTTP 处理器
type CampaignHandler struct {
	service  *application.CampaignService
	payments *paymentapp.PaymentService
}

// NewCampaignHandler 创建一个新的 HTTP 处理器实例
func NewCampaignHandler(service *application.CampaignService, payments *paymentapp.PaymentService) *CampaignHandler {
	return &CampaignHandler{service: service, payments: payments}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CampaignHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /campaign-orders/{id}/quote", h.handleQuote)
	mux.HandleFunc("POST /campaign-orders/{id}/activate", h.handleActivate)
	mux.HandleFunc("POST /campaign-orders/complete-free-order/{id}", h.handleCompleteFree)
}

func (h *CampaignHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	resp, err := h.service.Quote(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *CampaignHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	resp, err := h.service.Activate(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

// handleCompleteFree 兑换广告单的免支付完成令牌。
// 未登录投放流程里令牌绑定的是广告单登记的邮箱。
func (h *CampaignHandler) handleCompleteFree(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req struct {
		CompletionToken string `json:"completion_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	identity := r.Header.Get("X-User-ID")
	if identity == "" {
		identity = r.Header.Get("X-User-Email")
	}
	if req.CompletionToken == "" || identity == "" {
		http.Error(w, "completion_token and a caller identity are required", http.StatusBadRequest)
		return
	}

	resp, err := h.payments.CompleteFreeOrder(ctx, pricing.KindAdCampaign, r.PathValue("id"), req.CompletionToken, identity)
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
// 激活前置条件失败是调用方可修复的问题, 按 400/402 返回具名消息。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnpaidOrder):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrMissingPaymentReference),
		errors.Is(err, domain.ErrNotApproved),
		errors.Is(err, domain.ErrImageRequired),
		errors.Is(err, domain.ErrAlreadyActivated),
		errors.Is(err, paymentdomain.ErrAlreadyCaptured):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, paymentdomain.ErrInvalidToken),
		errors.Is(err, paymentdomain.ErrNotActuallyFree):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("campaign handler internal error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
