package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pump-match/shared/config"
	"pump-match/shared/env"
	"pump-match/shared/logger"
)

const (
	enhancedAPIBase = "https://api.helius.xyz/v0"
	maxRetries      = 3
)

// The enhanced transactions endpoint is the most rate-sensitive Helius
// surface; keep well under the free-tier ceiling.
var enhancedTxLimiter = rate.NewLimiter(rate.Limit(8), 4)

// Client provides the on-chain data used by the wallet analysis engine:
// SOL balance, owned assets, and enriched transaction pages.
type Client struct {
	rpcClient  *rpc.Client
	httpClient *http.Client
	apiKey     string
	apiBase    string
	appLogger  *logger.Logger
}

func NewClient(appLogger *logger.Logger) (*Client, error) {
	rpcURL := env.HeliusRPCURL
	if rpcURL == "" {
		return nil, fmt.Errorf("HELIUS_RPC_URL environment variable not set")
	}
	if env.HeliusAPIKey == "" {
		return nil, fmt.Errorf("HELIUS_API_KEY environment variable not set")
	}

	client := rpc.New(rpcURL)
	_, err := client.GetHealth(context.Background())
	if err != nil {
		appLogger.Error("Failed to connect to Helius RPC during initialization", zap.String("url", sanitizeURL(rpcURL)), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to Helius RPC at %s: %w", sanitizeURL(rpcURL), err)
	}
	appLogger.Info("Helius RPC client initialized successfully", zap.String("url", sanitizeURL(rpcURL)))

	timeout := 15 * time.Second
	if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Helius.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Helius.TimeoutSeconds) * time.Second
	}

	return &Client{
		rpcClient:  client,
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     env.HeliusAPIKey,
		apiBase:    enhancedAPIBase,
		appLogger:  appLogger,
	}, nil
}

func sanitizeURL(rawURL string) string {
	if idx := strings.Index(rawURL, "api-key="); idx != -1 {
		return rawURL[:idx+len("api-key=")] + "HIDDEN_FOR_LOGS"
	}
	return rawURL
}

// GetBalance returns the SOL balance for the address.
func (c *Client) GetBalance(ctx context.Context, address string) (float64, error) {
	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet address '%s': %w", address, err)
	}

	out, err := c.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentFinalized)
	if err != nil {
		c.appLogger.Warn("RPC GetBalance call failed", zap.String("wallet", address), zap.Error(err))
		return 0, fmt.Errorf("GetBalance for %s failed: %w", address, err)
	}
	if out == nil {
		return 0, fmt.Errorf("GetBalance for %s returned nil result", address)
	}
	return float64(out.Value) / float64(solana.LAMPORTS_PER_SOL), nil
}

// GetOwnedAssets fetches one bounded page of assets owned by the address
// via the DAS getAssetsByOwner method, fungible tokens included.
func (c *Client) GetOwnedAssets(ctx context.Context, address string, limit int) (*AssetPage, error) {
	params := map[string]interface{}{
		"ownerAddress": address,
		"page":         1,
		"limit":        limit,
		"displayOptions": map[string]bool{
			"showFungible":              true,
			"showUnverifiedCollections": false,
			"showNativeBalance":         false,
			"showInscription":           false,
		},
	}

	var page AssetPage
	if err := c.rpcRequest(ctx, "getAssetsByOwner", params, &page); err != nil {
		return nil, fmt.Errorf("getAssetsByOwner for %s failed: %w", address, err)
	}
	c.appLogger.Debug("Fetched owned assets", zap.String("wallet", address), zap.Int("items", len(page.Items)), zap.Int("total", page.Total))
	return &page, nil
}

// GetTransactionPage fetches one page of enriched transactions for the
// address, newest first. Pass the last signature of the previous page as
// before to continue paginating.
func (c *Client) GetTransactionPage(ctx context.Context, address string, limit int, before string) ([]EnhancedTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if err := enhancedTxLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	reqURL := fmt.Sprintf("%s/addresses/%s/transactions?api-key=%s&limit=%d", c.apiBase, address, c.apiKey, limit)
	if before != "" {
		reqURL += "&before=" + url.QueryEscape(before)
	}

	body, err := c.fetchWithRetry(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("enhanced transaction page for %s failed: %w", address, err)
	}

	var txs []EnhancedTransaction
	if err := json.Unmarshal(body, &txs); err != nil {
		c.appLogger.Error("Failed to parse enhanced transaction page", zap.String("wallet", address), zap.Error(err))
		return nil, fmt.Errorf("failed to parse enhanced transaction page: %w", err)
	}
	c.appLogger.Debug("Fetched enhanced transaction page", zap.String("wallet", address), zap.Int("count", len(txs)), zap.String("before", before))
	return txs, nil
}

// GetAsset fetches a single asset by mint via the DAS getAsset method.
// Used by governance flows for supply/authority checks, not by the
// analysis engine itself.
func (c *Client) GetAsset(ctx context.Context, mint string) (*AssetDetail, error) {
	var detail AssetDetail
	if err := c.rpcRequest(ctx, "getAsset", map[string]interface{}{"id": mint}, &detail); err != nil {
		return nil, fmt.Errorf("getAsset for %s failed: %w", mint, err)
	}
	return &detail, nil
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcRequest makes a JSON-RPC request against the Helius RPC URL and
// decodes the result field into out.
func (c *Client) rpcRequest(ctx context.Context, method string, params interface{}, out interface{}) error {
	methodField := zap.String("method", method)

	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("pump-match-%s-%d", method, time.Now().UnixNano()),
		"method":  method,
		"params":  params,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	body, err := c.fetchWithRetry(ctx, http.MethodPost, env.HeliusRPCURL, payloadBytes)
	if err != nil {
		return fmt.Errorf("%s request failed after retries: %w", method, err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.appLogger.Error("Failed to parse Helius RPC response", methodField, zap.Error(err))
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if envelope.Error != nil {
		c.appLogger.Warn("Helius API returned an error in JSON response", methodField, zap.Int("code", envelope.Error.Code), zap.String("message", envelope.Error.Message))
		return fmt.Errorf("helius API error: code=%d message=%s", envelope.Error.Code, envelope.Error.Message)
	}
	if len(envelope.Result) == 0 {
		return fmt.Errorf("helius %s response missing 'result' field", method)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// fetchWithRetry performs an HTTP request with capped exponential backoff,
// returning the response body on the first 2xx.
func (c *Client) fetchWithRetry(ctx context.Context, method, reqURL string, payload []byte) ([]byte, error) {
	urlField := zap.String("url", sanitizeURL(reqURL))
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		attemptField := zap.Int("attempt", i+1)

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewBuffer(payload)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if reqErr != nil {
			return nil, fmt.Errorf("failed http request creation: %w", reqErr)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if readErr != nil {
					return nil, fmt.Errorf("failed to read response body: %w", readErr)
				}
				return body, nil
			}
			c.appLogger.Warn("Request failed with non-2xx status", urlField, attemptField, zap.Int("statusCode", resp.StatusCode), zap.ByteString("responseBody", body))
			lastErr = fmt.Errorf("request failed with status: %s", resp.Status)
		} else {
			c.appLogger.Warn("HTTP request failed", urlField, attemptField, zap.Error(err))
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i < maxRetries-1 {
			backoff := time.Duration(math.Pow(2, float64(i))) * time.Second
			if backoff > 15*time.Second {
				backoff = 15 * time.Second
			}
			time.Sleep(backoff)
		}
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}
