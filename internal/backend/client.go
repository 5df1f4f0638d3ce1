package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/metrics"
	"sidequest_portal/internal/notify"
	"sidequest_portal/internal/session"
)

// Doer - то, через что сервисы ходят в backend
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error
}

type Options struct {
	BaseURL            string
	BusinessID         string
	Timeout            time.Duration
	Retry              RetryPolicy
	BreakerMaxFailures uint32
	// BreakerOpenTimeout - сколько breaker остается открытым до пробного запроса
	BreakerOpenTimeout time.Duration
	HTTPClient         *http.Client
}

// Client - общий для всех запросов клиент backend API.
// Сессия и уведомления привязываются на время запроса через Bind.
type Client struct {
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = 10
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	maxFailures := opts.BreakerMaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend-api",
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 4xx и 401 - штатные ответы, breaker они не открывают
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAsFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{opts: opts, http: httpClient, breaker: cb, sleep: sleepCtx}
}

func (c *Client) BusinessID() string { return c.opts.BusinessID }

// Bind привязывает к клиенту сессию и уведомления текущего запроса.
// onAuthFailure вызывается на 401 и должен уничтожить сессию.
func (c *Client) Bind(provider session.SessionProvider, notifier notify.Notifier, onAuthFailure func()) *Caller {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Caller{client: c, provider: provider, notifier: notifier, onAuthFailure: onAuthFailure}
}

// Caller - клиент в рамках одного входящего запроса
type Caller struct {
	client        *Client
	provider      session.SessionProvider
	notifier      notify.Notifier
	onAuthFailure func()
}

// ============================================
// Опции запроса
// ============================================

type requestConfig struct {
	query          any
	businessID     string
	successMessage string
	successToast   bool
	idempotencyKey string
}

type RequestOption func(*requestConfig)

// WithQuery - структура с тегами url, кодируется go-querystring
func WithQuery(v any) RequestOption {
	return func(cfg *requestConfig) { cfg.query = v }
}

// WithBusinessID заменяет business_id запроса (админский бизнес)
func WithBusinessID(id string) RequestOption {
	return func(cfg *requestConfig) { cfg.businessID = id }
}

// WithSuccessToast - уведомление при 2xx. Пустой msg - текст по умолчанию.
func WithSuccessToast(msg string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.successToast = true
		cfg.successMessage = msg
	}
}

func WithIdempotencyKey(key string) RequestOption {
	return func(cfg *requestConfig) { cfg.idempotencyKey = key }
}

// ============================================
// Выполнение
// ============================================

func (r *Caller) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return r.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (r *Caller) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return r.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (r *Caller) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return r.Do(ctx, http.MethodPut, path, body, out, opts...)
}

func (r *Caller) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return r.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do выполняет запрос с таймаутом на каждую попытку и повтором 5xx для идемпотентных методов.
// На 401 сессия уничтожается и возвращается *AuthError без уведомления.
func (r *Caller) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	cfg := requestConfig{businessID: r.client.opts.BusinessID}
	for _, opt := range opts {
		opt(&cfg)
	}

	target, err := r.client.url(path, cfg)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	policy := r.client.opts.Retry
	for attempt := 0; ; attempt++ {
		start := time.Now()
		respBody, status, err := r.attempt(ctx, method, target, payload, cfg)
		duration := time.Since(start)
		metrics.ObserveBackend(method, outcome(err), duration)
		logger.BackendLog(method, path, status, attempt+1, duration, err)

		if err == nil {
			if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("decode %s %s: %w", method, path, err)
				}
			}
			if cfg.successToast {
				msg := cfg.successMessage
				if msg == "" {
					msg = notify.DefaultSuccessMessage
				}
				r.notifier.Success(msg)
			}
			return nil
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			if r.onAuthFailure != nil {
				r.onAuthFailure()
			}
			return err
		}

		retry, delay := policy.Next(attempt, method, err)
		if !retry {
			r.notifier.Error(UserMessage(err))
			return err
		}

		r.notifier.Error(fmt.Sprintf(msgRetrying, policy.AttemptsLeft(attempt)))
		metrics.IncBackendRetry(method)
		if sleepErr := r.client.sleep(ctx, delay); sleepErr != nil {
			r.notifier.Error(UserMessage(err))
			return err
		}
	}
}

// attempt - одна попытка через circuit breaker
func (r *Caller) attempt(ctx context.Context, method, target string, payload []byte, cfg requestConfig) ([]byte, int, error) {
	var status int
	res, err := r.client.breaker.Execute(func() (interface{}, error) {
		body, code, err := r.send(ctx, method, target, payload, cfg)
		status = code
		return body, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, http.StatusServiceUnavailable, &HTTPError{
			Status:  http.StatusServiceUnavailable,
			Code:    CodeUnavailable,
			Message: "Backend is temporarily unavailable. Please try again later.",
		}
	}
	body, _ := res.([]byte)
	return body, status, err
}

func (r *Caller) send(ctx context.Context, method, target string, payload []byte, cfg requestConfig) ([]byte, int, error) {
	timeout := r.client.opts.Timeout
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.provider != nil {
		if token := r.provider.CurrentToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if cfg.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", cfg.idempotencyKey)
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		return nil, 0, classifyTransport(ctx, attemptCtx, err, timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, classifyTransport(ctx, attemptCtx, err, timeout)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.StatusCode, nil
	}

	var payloadErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payloadErr)

	if resp.StatusCode == http.StatusUnauthorized {
		msg := payloadErr.Message
		if msg == "" {
			msg = "Authentication failed"
		}
		return nil, resp.StatusCode, &AuthError{Message: msg}
	}

	msg := payloadErr.Message
	if msg == "" {
		msg = MsgDefaultFailure
	}
	return nil, resp.StatusCode, &HTTPError{Status: resp.StatusCode, Code: payloadErr.Code, Message: msg}
}

// classifyTransport отличает таймаут попытки от обрыва соединения
func classifyTransport(parent, attemptCtx context.Context, err error, timeout time.Duration) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return &TimeoutError{After: timeout}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{After: timeout}
	}
	return &NetworkError{Err: err}
}

func (c *Client) url(path string, cfg requestConfig) (string, error) {
	qs, err := buildQuery(cfg.query, cfg.businessID)
	if err != nil {
		return "", err
	}
	target := c.opts.BaseURL + path
	if qs != "" {
		target += "?" + qs
	}
	return target, nil
}

// countsAsFailure - ошибки, из-за которых backend считается нездоровым
func countsAsFailure(err error) bool {
	var (
		httpErr    *HTTPError
		timeoutErr *TimeoutError
		netErr     *NetworkError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status >= 500
	case errors.As(err, &timeoutErr), errors.As(err, &netErr):
		return true
	}
	return false
}

func outcome(err error) string {
	var (
		httpErr    *HTTPError
		authErr    *AuthError
		timeoutErr *TimeoutError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &authErr):
		return metrics.OutcomeAuth
	case errors.As(err, &httpErr):
		if httpErr.Code == CodeUnavailable {
			return metrics.OutcomeUnavailable
		}
		return metrics.OutcomeHTTPError
	case errors.As(err, &timeoutErr):
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeNetwork
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
