package external

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ovation/internal/models"
)

// PaymentClient prepares the form data a buyer forwards to the payment
// gateway. The gateway's own protocol (redirects, callbacks signatures) stays
// on the gateway's side; this system only correlates callbacks by
// transaction id.
type PaymentClient struct {
	baseURL    string
	merchantID string
	password   string
	httpClient *http.Client
}

type PaymentConfig struct {
	BaseURL    string
	MerchantID string
	Password   string
	Timeout    time.Duration
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PaymentClient{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		password:   cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken signs the request parameters: values are concatenated in
// alphabetical key order together with the merchant credentials, then hashed.
func (pc *PaymentClient) generateToken(params map[string]string) string {
	params["MerchantId"] = pc.merchantID
	params["Password"] = pc.password

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// BuildPaymentForm produces the fields the client submits to the gateway to
// pay for a reservation.
func (pc *PaymentClient) BuildPaymentForm(transactionID string, amount decimal.Decimal, currency string) models.PaymentFormData {
	amountStr := amount.StringFixed(2)

	token := pc.generateToken(map[string]string{
		"Amount":   amountStr,
		"Currency": currency,
		"OrderId":  transactionID,
	})

	return models.PaymentFormData{
		TransactionID: transactionID,
		Amount:        amountStr,
		Currency:      currency,
		Token:         token,
		PayURL:        pc.baseURL + "/api/v1/payments/init",
	}
}
