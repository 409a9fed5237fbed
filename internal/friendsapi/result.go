package friendsapi

import (
	"bytes"
	"encoding/json"

	"navbar_social/pkg/errorx"
)

// AlertResult 发送/处理好友申请的响应
type AlertResult struct {
	StatusCode int
	// HasAlert 响应对象上存在 alert 属性（值可以是任意 JSON）
	HasAlert bool
	Alert    string
}

// OK 状态码是否为 2xx
func (r *AlertResult) OK() bool { return ok(r.StatusCode) }

// Err 非 2xx 时返回 CodeUpstreamStatus 错误，供日志使用
func (r *AlertResult) Err() error {
	return statusErr(r.StatusCode)
}

// FriendRequest 一条待处理的好友申请
type FriendRequest struct {
	Email string `json:"email"`
}

// ListResult 待处理好友申请列表的响应
type ListResult struct {
	StatusCode int
	// IsArray 响应体是否为 JSON 数组；不是数组时 Requests 为空且不视为错误
	IsArray  bool
	Requests []FriendRequest
}

// OK 状态码是否为 2xx
func (r *ListResult) OK() bool { return ok(r.StatusCode) }

// Err 非 2xx 返回 CodeUpstreamStatus；2xx 但不是数组返回 CodeMalformedBody
func (r *ListResult) Err() error {
	if err := statusErr(r.StatusCode); err != nil {
		return err
	}
	if !r.IsArray {
		return errorx.New(errorx.CodeMalformedBody, "friend requests body is not an array")
	}
	return nil
}

func statusErr(status int) error {
	if ok(status) {
		return nil
	}
	return errorx.Newf(errorx.CodeUpstreamStatus, "friends api status %d", status)
}

// parseAlert 读取响应对象上的 alert 属性
// 字符串原样返回，其他 JSON 值返回其文本形式（如 null、42）
func parseAlert(status int, body []byte) *AlertResult {
	res := &AlertResult{StatusCode: status}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return res
	}
	raw, found := obj["alert"]
	if !found {
		return res
	}
	res.HasAlert = true

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		res.Alert = s
	} else {
		res.Alert = string(bytes.TrimSpace(raw))
	}
	return res
}

// parseList 解析好友申请数组，只做数组形状检查
// 元素不是对象或没有 email 字段时，email 为空字符串
func parseList(status int, body []byte) *ListResult {
	res := &ListResult{StatusCode: status, Requests: []FriendRequest{}}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		return res
	}
	res.IsArray = true

	for _, item := range items {
		var fr FriendRequest
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err == nil {
			_ = json.Unmarshal(obj["email"], &fr.Email)
		}
		res.Requests = append(res.Requests, fr)
	}
	return res
}
