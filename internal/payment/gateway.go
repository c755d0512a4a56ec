package payment

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/google/uuid"
)

// ErrGatewayTimeout is returned when the gateway does not answer within
// the configured budget.  Handlers translate it to 504.
var ErrGatewayTimeout = errors.New("payment gateway timeout")

// ErrGatewayUnavailable covers every other gateway failure.  Handlers
// translate it to 502.  Order state is never mutated on either error.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Gateway creates payment intents with the external payment provider.
type Gateway interface {
    CreateIntent(ctx context.Context, orderID uint64, amountCents uint32, method string) (string, error)
}

// HTTPGateway talks to a real payment provider over HTTP.  Every call is
// bounded by the configured timeout.
type HTTPGateway struct {
    baseURL string
    client  *http.Client
}

// NewHTTPGateway returns a gateway client for the given base URL.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
    return &HTTPGateway{
        baseURL: baseURL,
        client:  &http.Client{Timeout: timeout},
    }
}

type createIntentReq struct {
    OrderID     uint64 `json:"order_id"`
    AmountCents uint32 `json:"amount_cents"`
    Currency    string `json:"currency"`
    Method      string `json:"method"`
}

type createIntentResp struct {
    IntentID string `json:"intent_id"`
}

// CreateIntent asks the provider to open a payment intent for the order
// amount.  It retries once on transport errors, since those are usually
// transient; HTTP-level rejections are not retried.
func (g *HTTPGateway) CreateIntent(ctx context.Context, orderID uint64, amountCents uint32, method string) (string, error) {
    body, err := json.Marshal(createIntentReq{
        OrderID:     orderID,
        AmountCents: amountCents,
        Currency:    "INR",
        Method:      method,
    })
    if err != nil {
        return "", err
    }

    var lastErr error
    for attempt := 0; attempt < 2; attempt++ {
        id, err := g.post(ctx, body)
        if err == nil {
            return id, nil
        }
        lastErr = err
        if errors.Is(err, ErrGatewayTimeout) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
            return "", ErrGatewayTimeout
        }
        if !errors.Is(err, ErrGatewayUnavailable) {
            return "", err
        }
    }
    return "", lastErr
}

func (g *HTTPGateway) post(ctx context.Context, body []byte) (string, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/intents", bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "application/json")

    resp, err := g.client.Do(req)
    if err != nil {
        if errors.Is(err, context.DeadlineExceeded) {
            return "", ErrGatewayTimeout
        }
        return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return "", fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
    }
    var out createIntentResp
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.IntentID == "" {
        return "", fmt.Errorf("%w: bad intent response", ErrGatewayUnavailable)
    }
    return out.IntentID, nil
}

// LocalGateway mints intents locally without an external provider.  Used
// in development when PAYMENT_GATEWAY_URL is unset; confirmation then
// happens through the confirm endpoint instead of a webhook.
type LocalGateway struct{}

func (LocalGateway) CreateIntent(ctx context.Context, orderID uint64, amountCents uint32, method string) (string, error) {
    return "pi_" + uuid.NewString(), nil
}
