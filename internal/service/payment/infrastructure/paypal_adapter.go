// internal/service/payment/infrastructure/paypal_adapter.go
package infrastructure

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/httpclient"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain/port"
)

// tokenSafetyWindow 在官方过期时间之前提前作废缓存的访问令牌
const tokenSafetyWindow = 60 * time.Second

// PayPalAdapter 是 port.PaymentProvider 的 PayPal Checkout v2 实现。
// OAuth 访问令牌按过期时间缓存, 到期前自动换新。
type PayPalAdapter struct {
	client   *httpclient.Client
	baseURL  string
	clientID string
	secret   string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalAdapter 创建一个新的 PayPal 适配器
func NewPayPalAdapter(client *httpclient.Client, baseURL, clientID, secret string) *PayPalAdapter {
	return &PayPalAdapter{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
	}
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	Amount   paypalAmount `json:"amount"`
	CustomID string       `json:"custom_id,omitempty"`
}

type paypalOrderResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
}

// CreateOrder 以给定金额与引用串创建一笔 PayPal 订单
func (a *PayPalAdapter) CreateOrder(ctx context.Context, amount int64, currency, reference string) (string, error) {
	header, err := a.authHeader(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []paypalPurchaseUnit{{
			Amount: paypalAmount{
				CurrencyCode: currency,
				Value:        centsToDollars(amount),
			},
			CustomID: reference,
		}},
	}

	var resp paypalOrderResponse
	status, err := a.client.DoJSON(ctx, http.MethodPost, a.baseURL+"/v2/checkout/orders", header, body, &resp)
	if err != nil {
		return "", errors.Wrap(err, "paypal create order failed")
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", errors.Errorf("paypal create order returned status %d", status)
	}
	if resp.ID == "" {
		return "", errors.New("paypal create order response missing order id")
	}

	logger.Ctx(ctx).Printf("INFO: Created PayPal order %s, amount %s %s.", resp.ID, centsToDollars(amount), currency)
	return resp.ID, nil
}

// CaptureOrder 捕获一笔订单。
// PayPal 对已完成订单的重复捕获返回 422 ORDER_ALREADY_CAPTURED,
// 这里回落到 GetOrder 取回完成态, 由上层守卫决定是否属于重放。
func (a *PayPalAdapter) CaptureOrder(ctx context.Context, orderID string) (*port.ProviderOrder, error) {
	header, err := a.authHeader(ctx)
	if err != nil {
		return nil, err
	}

	var resp paypalOrderResponse
	status, err := a.client.DoJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/v2/checkout/orders/%s/capture", a.baseURL, url.PathEscape(orderID)),
		header, map[string]interface{}{}, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "paypal capture order failed")
	}
	if status == http.StatusUnprocessableEntity {
		return a.GetOrder(ctx, orderID)
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, errors.Errorf("paypal capture order returned status %d", status)
	}
	return toProviderOrder(&resp)
}

// GetOrder 只读地取回订单详情
func (a *PayPalAdapter) GetOrder(ctx context.Context, orderID string) (*port.ProviderOrder, error) {
	header, err := a.authHeader(ctx)
	if err != nil {
		return nil, err
	}

	var resp paypalOrderResponse
	status, err := a.client.DoJSON(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/checkout/orders/%s", a.baseURL, url.PathEscape(orderID)),
		header, nil, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "paypal get order failed")
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("paypal get order returned status %d", status)
	}
	return toProviderOrder(&resp)
}

// authHeader 返回带 Bearer 令牌的请求头, 必要时先换新令牌
func (a *PayPalAdapter) authHeader(ctx context.Context) (http.Header, error) {
	token, err := a.accessTokenFor(ctx)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return header, nil
}

func (a *PayPalAdapter) accessTokenFor(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	basic := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.secret))
	header := http.Header{}
	header.Set("Authorization", "Basic "+basic)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	status, err := a.client.PostForm(ctx, a.baseURL+"/v1/oauth2/token", header, form, &resp)
	if err != nil {
		return "", errors.Wrap(err, "paypal oauth token request failed")
	}
	if status != http.StatusOK || resp.AccessToken == "" {
		return "", errors.Errorf("paypal oauth token request returned status %d", status)
	}

	a.accessToken = resp.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenSafetyWindow)
	return a.accessToken, nil
}

func toProviderOrder(resp *paypalOrderResponse) (*port.ProviderOrder, error) {
	if len(resp.PurchaseUnits) == 0 {
		return nil, errors.Errorf("paypal order %s has no purchase units", resp.ID)
	}
	unit := resp.PurchaseUnits[0]
	amount, err := dollarsToCents(unit.Amount.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "paypal order %s has malformed amount %q", resp.ID, unit.Amount.Value)
	}
	return &port.ProviderOrder{
		ID:       resp.ID,
		Status:   resp.Status,
		Amount:   amount,
		Currency: unit.Amount.CurrencyCode,
		CustomID: unit.CustomID,
	}, nil
}

// centsToDollars 把分转成 PayPal 要求的两位小数字符串
func centsToDollars(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// dollarsToCents 解析两位小数的金额字符串, 其他格式一律拒绝
func dollarsToCents(value string) (int64, error) {
	parts := strings.Split(value, ".")
	if len(parts) > 2 {
		return 0, errors.Errorf("malformed amount %q", value)
	}
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, errors.Errorf("malformed amount %q", value)
	}
	cents := whole * 100
	if len(parts) == 2 {
		frac := parts[1]
		if len(frac) != 2 {
			return 0, errors.Errorf("malformed amount %q", value)
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, errors.Errorf("malformed amount %q", value)
		}
		cents += f
	}
	return cents, nil
}
