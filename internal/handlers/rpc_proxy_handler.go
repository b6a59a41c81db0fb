package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nodegate/rpc-gateway-backend/internal/config"
	"github.com/nodegate/rpc-gateway-backend/internal/services/api_key"
	"github.com/nodegate/rpc-gateway-backend/internal/services/quota"
	"github.com/nodegate/rpc-gateway-backend/internal/services/ratelimit"
)

// RPCProxyHandler forwards authenticated calls to the upstream RPC backend,
// enforcing per-key rate limits and account quotas on the way in and
// recording usage on the way out
type RPCProxyHandler struct {
	cfg          *config.Config
	limiter      *ratelimit.WindowLimiter
	quotaService *quota.Service
	client       *http.Client
}

// NewRPCProxyHandler creates a new RPCProxyHandler instance
func NewRPCProxyHandler(cfg *config.Config, limiter *ratelimit.WindowLimiter, quotaService *quota.Service) *RPCProxyHandler {
	return &RPCProxyHandler{
		cfg:          cfg,
		limiter:      limiter,
		quotaService: quotaService,
		client: &http.Client{
			Timeout: cfg.UpstreamTimeout,
		},
	}
}

// rpcRequestEnvelope is the slice of the request body needed for accounting
type rpcRequestEnvelope struct {
	Method string `json:"method"`
}

// ProxyRequest handles POST /rpc
// @Summary Proxy an RPC call
// @Description Forwards the request body to the upstream RPC backend and relays the response verbatim. Requires a valid API key.
// @Tags rpc
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key credential"
// @Param request body object true "RPC request body"
// @Success 200 {object} map[string]interface{} "Upstream response (relayed verbatim)"
// @Failure 401 {object} map[string]string "Missing or invalid API key"
// @Failure 403 {object} map[string]string "Quota exceeded"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Failure 502 {object} map[string]string "Upstream unreachable"
// @Router /rpc [post]
func (h *RPCProxyHandler) ProxyRequest(c *gin.Context) {
	verification := c.MustGet("verification").(*api_key.Verification)

	rateLimit := verification.RateLimit
	if rateLimit <= 0 {
		rateLimit = h.cfg.DefaultRateLimit
	}

	decision := h.limiter.Check(verification.KeyID, rateLimit, h.cfg.RateWindow)
	h.setRateLimitHeaders(c, decision)
	if !decision.Allowed {
		// The call was never attempted; no usage is recorded
		c.Header("Retry-After", strconv.Itoa(int(decision.RetryAfter/time.Second)))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   "Rate limit exceeded",
		})
		return
	}

	check := h.quotaService.CheckUsage(c.Request.Context(),
		verification.AccountID, verification.KeyID,
		h.cfg.DefaultDailyLimit, verification.MonthlyLimit)
	if !check.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   fmt.Sprintf("%s quota exceeded", check.ExceededCeiling),
		})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Failed to read request body",
		})
		return
	}

	// Method name rides on the usage event only; a body that is not an RPC
	// envelope is still forwarded untouched
	var envelope rpcRequestEnvelope
	_ = json.Unmarshal(body, &envelope)

	start := time.Now()
	status, respBody, err := h.forwardRequest(c, body)
	latencyMs := time.Since(start).Milliseconds()

	success := err == nil && status < http.StatusBadRequest

	// Usage reflects every attempted call, including ones that failed
	// upstream
	h.quotaService.RecordUsage(c.Request.Context(), quota.UsageSample{
		AccountID: verification.AccountID,
		KeyID:     verification.KeyID,
		Method:    envelope.Method,
		Success:   success,
		LatencyMs: latencyMs,
		BytesIn:   int64(len(body)),
		BytesOut:  int64(len(respBody)),
	})

	if err != nil {
		logrus.WithError(err).Error("Failed to forward request to upstream RPC backend")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Failed to reach upstream RPC backend",
		})
		return
	}

	// Relay the upstream response verbatim
	c.Data(status, "application/json", respBody)
}

// forwardRequest forwards the call to the upstream RPC backend and returns
// its status and body
func (h *RPCProxyHandler) forwardRequest(c *gin.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, h.cfg.UpstreamRPCURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Copy headers (excluding some that shouldn't be forwarded)
	for key, values := range c.Request.Header {
		if shouldSkipHeader(key) {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// setRateLimitHeaders attaches the rate limit headers to every decision
func (h *RPCProxyHandler) setRateLimitHeaders(c *gin.Context, decision ratelimit.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	c.Header("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))
}

// shouldSkipHeader determines if a header should be skipped when forwarding
func shouldSkipHeader(key string) bool {
	switch key {
	case "Host", "Content-Length", "Transfer-Encoding", "Connection",
		"Upgrade", "Authorization", "X-Api-Key":
		return true
	}
	return false
}
