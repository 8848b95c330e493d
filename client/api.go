package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-city/dto"
	"go-city/entities"
)

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("服务端返回错误 %d: %s", e.Status, e.Message)
}

// Client 游戏状态服务的 HTTP 客户端
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithHTTPClient 替换默认的 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken 为状态覆盖请求附带 Bearer 令牌
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetState(ctx context.Context) (entities.GameState, error) {
	var state entities.GameState
	err := c.do(ctx, http.MethodGet, "/api/game-state", nil, &state)
	return state, err
}

func (c *Client) UpdateState(ctx context.Context, req dto.UpdateStateRequest) (entities.GameState, error) {
	var state entities.GameState
	err := c.do(ctx, http.MethodPost, "/api/game-state", req, &state)
	return state, err
}

func (c *Client) PlaceBuilding(ctx context.Context, req dto.PlaceBuildingRequest) (entities.GameState, error) {
	var state entities.GameState
	err := c.do(ctx, http.MethodPost, "/api/place-building", req, &state)
	return state, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("请求序列化失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s %s 失败: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody dto.ErrorResponse
		if json.Unmarshal(data, &errBody) != nil || errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("响应解析失败: %w", err)
	}
	return nil
}
