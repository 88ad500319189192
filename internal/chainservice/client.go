// Package chainservice реализует клиент внешнего сервиса чеканки билетов.
//
// Сервис выпускает токен билета на адрес кошелька посетителя при покупке
// и погашает его при проходе на событие. Клиент работает поверх HTTP,
// ограничивает каждый вызов таймаутом и делает не более одного повтора
// при транспортной ошибке. Погашенный ранее токен возвращается
// типизированной ошибкой ErrTokenAlreadyUsed.
package chainservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTokenAlreadyUsed возвращается, когда сервис сообщает, что токен уже погашен.
var ErrTokenAlreadyUsed = errors.New("token already used")

// Client клиент сервиса чеканки.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент сервиса чеканки.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doWithRetry выполняет запрос и повторяет его один раз при транспортной
// ошибке или ответе 5xx. Ответы 4xx повтором не считаются.
func (c *Client) doWithRetry(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}
		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if lastErr == nil {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("chain service returned status %d", resp.StatusCode)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// Mint выпускает токен билета на указанный адрес кошелька
// и возвращает его идентификатор.
func (c *Client) Mint(ctx context.Context, walletAddress string) (string, error) {
	const op = "chainservice.Mint"

	resp, err := c.doWithRetry(ctx, http.MethodPost, "/tickets/mint", MintRequest{
		OwnerAddress: walletAddress,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message != "" {
			return "", fmt.Errorf("%s: mint rejected with status %d: %s", op, resp.StatusCode, errResp.Message)
		}
		return "", fmt.Errorf("%s: mint rejected with status %d", op, resp.StatusCode)
	}

	var result MintResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if result.TokenID == "" {
		return "", fmt.Errorf("%s: empty token id in mint response", op)
	}
	return result.TokenID, nil
}

// MarkUsed погашает токен билета. Если сервис сообщает, что токен уже
// погашен, возвращается ErrTokenAlreadyUsed, отличимая от прочих отказов.
func (c *Client) MarkUsed(ctx context.Context, tokenID string) error {
	const op = "chainservice.MarkUsed"

	resp, err := c.doWithRetry(ctx, http.MethodPost, "/tickets/use", UseRequest{
		TokenID: tokenID,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var errResp ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Code == CodeAlreadyUsed {
		return fmt.Errorf("%s: %w", op, ErrTokenAlreadyUsed)
	}
	return fmt.Errorf("%s: mark used rejected with status %d", op, resp.StatusCode)
}
