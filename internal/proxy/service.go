// Package proxy forwards raw storefront calls to the commerce backend. It
// exists so the browser never needs the backend origin or the publishable
// key: the gateway validates the target path, attaches the key, strips
// browser identity headers, and shields the client from a slow upstream
// with a fixed timeout.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
	"github.com/verdantlane/storefront-gateway/pkg/metrics"
	pkgredis "github.com/verdantlane/storefront-gateway/pkg/redis"
)

// stripHeaders are never forwarded upstream. The backend must see the
// gateway as the caller, not the shopper's browser.
var stripHeaders = []string{
	"Host",
	"Origin",
	"Referer",
	"Cookie",
	"Set-Cookie",
	"Authorization",
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteMatching(ctx context.Context, pattern string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	ProxyCacheKey(method, pathAndQuery string) string
}

// Request is one browser call to be forwarded.
type Request struct {
	Method   string
	Path     string // backend path including query, from ?path=
	Header   http.Header
	Body     []byte
	ClientIP string
}

// Response carries the upstream reply verbatim.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	FromCache   bool
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Service interface {
	Forward(ctx context.Context, req Request) (*Response, error)
}

type service struct {
	baseURL        string
	publishableKey string
	cfg            config.ProxyConfig
	rate           config.RateLimitConfig
	store          cacheStore
	httpClient     *http.Client
	metrics        *metrics.ProxyMetrics
	logger         *logger.Logger
}

func NewService(
	medusaCfg config.MedusaConfig,
	proxyCfg config.ProxyConfig,
	rateCfg config.RateLimitConfig,
	store cacheStore,
	proxyMetrics *metrics.ProxyMetrics,
	logg *logger.Logger,
) Service {
	return &service{
		baseURL:        strings.TrimRight(medusaCfg.BaseURL, "/"),
		publishableKey: medusaCfg.PublishableKey,
		cfg:            proxyCfg,
		rate:           rateCfg,
		store:          store,
		httpClient:     &http.Client{},
		metrics:        proxyMetrics,
		logger:         logg,
	}
}

func (s *service) Forward(ctx context.Context, req Request) (*Response, error) {
	path, err := s.allowedPath(req.Path)
	if err != nil {
		return nil, err
	}
	if err := s.enforceRateLimit(ctx, req.ClientIP); err != nil {
		return nil, err
	}

	cacheable := req.Method == http.MethodGet && s.cfg.CacheTTL > 0 && s.store != nil
	cacheKey := ""
	if cacheable {
		cacheKey = s.store.ProxyCacheKey(req.Method, path)
		if cached := s.cachedResponse(ctx, cacheKey); cached != nil {
			s.metrics.IncCacheHit()
			return cached, nil
		}
		s.metrics.IncCacheMiss()
	}

	resp, err := s.callUpstream(ctx, req, path)
	if err != nil {
		return nil, err
	}

	if cacheable && resp.Status < http.StatusMultipleChoices {
		s.storeResponse(ctx, cacheKey, resp)
	}
	if req.Method != http.MethodGet {
		s.invalidateCartReads(ctx, path)
	}
	return resp, nil
}

func (s *service) allowedPath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path query parameter is required")
	}
	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path is not allowed")
	}
	for _, prefix := range s.cfg.AllowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return path, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "path is not allowed")
}

// enforceRateLimit applies the fixed per-IP window. A broken counter store
// fails open so the storefront keeps working without redis.
func (s *service) enforceRateLimit(ctx context.Context, clientIP string) error {
	if s.store == nil || s.rate.ProxyIPLimit <= 0 || clientIP == "" {
		return nil
	}
	allowed, count, err := s.store.FixedWindowAllow(ctx, "proxy:"+clientIP, int64(s.rate.ProxyIPLimit), s.rate.ProxyWindow)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "proxy rate limit check failed")
		return nil
	}
	if !allowed {
		s.metrics.IncRateLimited()
		s.logger.Warn(s.logger.WithFields(ctx, map[string]any{
			"client_ip": clientIP,
			"count":     count,
		}), "proxy request rate limited")
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests")
	}
	return nil
}

func (s *service) cachedResponse(ctx context.Context, key string) *Response {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "proxy cache read failed")
		}
		return nil
	}
	var cached cachedResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "proxy cache entry corrupt")
		return nil
	}
	return &Response{
		Status:      cached.Status,
		ContentType: cached.ContentType,
		Body:        cached.Body,
		FromCache:   true,
	}
}

func (s *service) storeResponse(ctx context.Context, key string, resp *Response) {
	payload, err := json.Marshal(cachedResponse{
		Status:      resp.Status,
		ContentType: resp.ContentType,
		Body:        resp.Body,
	})
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "proxy cache write failed")
	}
}

// invalidateCartReads drops cached GETs for a cart that was just mutated
// through the proxy, so the next read reflects the write.
func (s *service) invalidateCartReads(ctx context.Context, path string) {
	if s.store == nil {
		return
	}
	cartID := cartIDFromPath(path)
	if cartID == "" {
		return
	}
	pattern := s.store.ProxyCacheKey(http.MethodGet, "*"+cartID+"*")
	if err := s.store.DeleteMatching(ctx, pattern); err != nil {
		s.logger.Warn(s.logger.WithCartID(ctx, cartID), "proxy cache invalidation failed")
	}
}

func cartIDFromPath(path string) string {
	const marker = "/carts/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	rest := path[idx+len(marker):]
	if cut := strings.IndexAny(rest, "/?"); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}

func (s *service) callUpstream(ctx context.Context, req Request, path string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	upstream, err := http.NewRequestWithContext(ctx, req.Method, s.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to build upstream request")
	}

	copyForwardableHeaders(upstream.Header, req.Header)
	if upstream.Header.Get(medusa.PublishableKeyHeader) == "" {
		upstream.Header.Set(medusa.PublishableKeyHeader, s.publishableKey)
	}
	if upstream.Header.Get("Content-Type") == "" && len(req.Body) > 0 {
		upstream.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := s.httpClient.Do(upstream)
	s.metrics.ObserveUpstream(req.Method, time.Since(started))
	if err != nil {
		return nil, s.mapUpstreamError(ctx, err, path)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "failed to read upstream response")
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, nil
}

func (s *service) mapUpstreamError(ctx context.Context, err error, path string) error {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	if timedOut {
		s.metrics.IncTimeout()
		s.logger.Warn(s.logger.WithField(ctx, "path", path), "proxy upstream timed out")
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamTimeout, err, "commerce backend timed out")
	}
	s.logger.Error(s.logger.WithField(ctx, "path", path), "proxy upstream call failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "commerce backend unavailable")
}

func copyForwardableHeaders(dst, src http.Header) {
	for name, values := range src {
		if skipHeader(name) {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

func skipHeader(name string) bool {
	for _, stripped := range stripHeaders {
		if strings.EqualFold(name, stripped) {
			return true
		}
	}
	return false
}
