// Package friendsapi 封装对外部好友服务的三个 REST 调用
// 只负责收发与解析，toast 文案和刷新逻辑在 service/social
package friendsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"navbar_social/pkg/errorx"
	"navbar_social/pkg/util/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 好友服务路径
const (
	PathMakeRequest       = "/friends/makeRequest"
	PathHandleRequest     = "/friends/handleRequest"
	PathGetFriendRequests = "/complex/getFriendRequests"
)

// Status 处理好友申请的结果
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// API 好友服务调用接口，service 层依赖此接口而非具体实现
type API interface {
	MakeRequest(ctx context.Context, tok, targetEmail string) (*AlertResult, error)
	GetFriendRequests(ctx context.Context, tok string) (*ListResult, error)
	HandleRequest(ctx context.Context, tok, senderEmail string, status Status) (*AlertResult, error)
}

// Client 基于 net/http 的好友服务客户端
type Client struct {
	baseURL string
	http    *http.Client
}

// New 创建客户端
// timeout 为 0 时不设超时，挂起的请求会一直等待
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient 使用外部传入的 http.Client（自定义 Transport、代理等）
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// makeRequestBody POST /friends/makeRequest 请求体
type makeRequestBody struct {
	TargetEmail string `json:"targetEmail"`
}

// handleRequestBody PUT /friends/handleRequest 请求体
type handleRequestBody struct {
	SenderEmail string `json:"senderEmail"`
	Status      Status `json:"status"`
}

// MakeRequest 发送好友申请
func (c *Client) MakeRequest(ctx context.Context, tok, targetEmail string) (*AlertResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, PathMakeRequest, tok, makeRequestBody{TargetEmail: targetEmail})
	if err != nil {
		return nil, err
	}
	return parseAlert(status, body), nil
}

// HandleRequest 接受或拒绝一条好友申请
func (c *Client) HandleRequest(ctx context.Context, tok, senderEmail string, status Status) (*AlertResult, error) {
	code, body, err := c.do(ctx, http.MethodPut, PathHandleRequest, tok, handleRequestBody{
		SenderEmail: senderEmail,
		Status:      status,
	})
	if err != nil {
		return nil, err
	}
	return parseAlert(code, body), nil
}

// GetFriendRequests 拉取待处理的好友申请
func (c *Client) GetFriendRequests(ctx context.Context, tok string) (*ListResult, error) {
	status, body, err := c.do(ctx, http.MethodGet, PathGetFriendRequests, tok, nil)
	if err != nil {
		return nil, err
	}
	return parseList(status, body), nil
}

// do 发送一次带凭证的请求，返回状态码和完整响应体
// 只有请求没有得到响应时才返回错误
func (c *Client) do(ctx context.Context, method, path, tok string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, errorx.Wrap(err, errorx.CodeInvalidParam, "encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, errorx.Wrapf(err, errorx.CodeUpstreamTransport, "build request %s %s", method, path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", token.BearerHeader(tok))
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("friends api transport failure",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return 0, nil, errorx.Wrapf(err, errorx.CodeUpstreamTransport, "%s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errorx.Wrapf(err, errorx.CodeUpstreamTransport, "read response %s %s", method, path)
	}

	zap.L().Debug("friends api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

// ok 与浏览器 Response.ok 一致：2xx 视为成功
func ok(status int) bool {
	return status >= 200 && status < 300
}
