package ccavenue

import (
	"fmt"
	"sort"
	"strings"
)

// Hosted payment page URLs per environment.
const (
	productionPaymentURL = "https://secure.ccavenue.com/transaction/transaction.do?command=initiateTransaction"
	testPaymentURL       = "https://test.ccavenue.com/transaction/transaction.do?command=initiateTransaction"
)

// Config holds the merchant credentials shared with the gateway.
type Config struct {
	MerchantID  string
	AccessCode  string
	WorkingKey  string
	Environment string // "test" or "production"
	RedirectURL string
	CancelURL   string
}

// Client builds encrypted payment requests and decodes callback responses.
type Client struct {
	cfg Config
}

// NewClient validates the credentials and returns a gateway client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.MerchantID == "" || cfg.AccessCode == "" || cfg.WorkingKey == "" {
		return nil, fmt.Errorf("gateway credentials are not fully configured")
	}
	return &Client{cfg: cfg}, nil
}

// PaymentURL returns the hosted payment page the browser is redirected to.
func (c *Client) PaymentURL() string {
	if c.cfg.Environment == "production" {
		return productionPaymentURL
	}
	return testPaymentURL
}

// MerchantID exposes the merchant identifier for the redirect form.
func (c *Client) MerchantID() string { return c.cfg.MerchantID }

// OrderRequest is the order detail set sent to the gateway. Merchant params
// round-trip opaque values through the gateway back to the callback.
type OrderRequest struct {
	OrderID      string
	Amount       float64
	Currency     string
	BillingName  string
	BillingEmail string
	BillingTel   string
	BillingAddr  string
	// MerchantParam1 carries the internal order ID, MerchantParam2 the user
	// ID; 3 and 4 carry protection level and deposit type.
	MerchantParams [5]string
}

// FormData is what the browser posts to the hosted payment page.
type FormData struct {
	EncRequest string
	AccessCode string
}

// EncodeRequest serializes and encrypts an order request into the form data
// handed to the browser for redirect.
func (c *Client) EncodeRequest(req OrderRequest) (*FormData, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	// The official kit builds a plain key=value&... string with a trailing
	// ampersand and no URL encoding.
	fields := map[string]string{
		"merchant_id":  c.cfg.MerchantID,
		"order_id":     req.OrderID,
		"amount":       fmt.Sprintf("%.2f", req.Amount),
		"currency":     currency,
		"redirect_url": c.cfg.RedirectURL,
		"cancel_url":   c.cfg.CancelURL,
		"language":     "EN",
	}
	optional := map[string]string{
		"billing_name":    req.BillingName,
		"billing_email":   req.BillingEmail,
		"billing_tel":     req.BillingTel,
		"billing_address": req.BillingAddr,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	for i, v := range req.MerchantParams {
		if v != "" {
			fields[fmt.Sprintf("merchant_param%d", i+1)] = v
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte('&')
	}

	encRequest, err := Encrypt(b.String(), c.cfg.WorkingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payment request: %w", err)
	}
	return &FormData{EncRequest: encRequest, AccessCode: c.cfg.AccessCode}, nil
}

// CallbackResponse is the decoded gateway callback.
type CallbackResponse struct {
	OrderID        string
	TrackingID     string
	BankRefNo      string
	OrderStatus    string
	FailureMessage string
	PaymentMode    string
	StatusMessage  string
	Amount         string
	MerchantParams [5]string
}

// Success reports whether the gateway settled the transaction.
func (r *CallbackResponse) Success() bool {
	return r.OrderStatus == "Success"
}

// InternalOrderID returns the order ID round-tripped via merchant_param1.
func (r *CallbackResponse) InternalOrderID() string {
	return r.MerchantParams[0]
}

// DecodeResponse decrypts and parses an encResp callback payload. A payload
// that does not decrypt cleanly yields an error, never a response.
func (c *Client) DecodeResponse(encResponse string) (*CallbackResponse, error) {
	if encResponse == "" {
		return nil, fmt.Errorf("encrypted response is empty")
	}
	plain, err := Decrypt(encResponse, c.cfg.WorkingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt callback payload: %w", err)
	}

	values := map[string]string{}
	for _, pair := range strings.Split(plain, "&") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			values[k] = v
		}
	}
	if values["order_id"] == "" || values["order_status"] == "" {
		return nil, fmt.Errorf("callback payload is missing order_id or order_status")
	}

	resp := &CallbackResponse{
		OrderID:        values["order_id"],
		TrackingID:     values["tracking_id"],
		BankRefNo:      values["bank_ref_no"],
		OrderStatus:    values["order_status"],
		FailureMessage: values["failure_message"],
		PaymentMode:    values["payment_mode"],
		StatusMessage:  values["status_message"],
		Amount:         values["amount"],
	}
	for i := range resp.MerchantParams {
		resp.MerchantParams[i] = values[fmt.Sprintf("merchant_param%d", i+1)]
	}
	return resp, nil
}
