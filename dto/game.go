package dto

import (
	"encoding/json"
	"math"

	"go-city/entities"
)

// UpdateStateRequest POST /api/game-state 的请求体，未出现或类型不合法的字段为 nil
type UpdateStateRequest struct {
	Turn      *int            `json:"turn,omitempty"`
	Resources *int            `json:"resources,omitempty"`
	Field     *entities.Field `json:"field,omitempty"`
	Residents *int            `json:"residents,omitempty"`
}

// Empty 判断请求是否没有任何可写字段
func (r UpdateStateRequest) Empty() bool {
	return r.Turn == nil && r.Resources == nil && r.Field == nil && r.Residents == nil
}

// Apply 将请求中出现的字段覆盖到 state 上
func (r UpdateStateRequest) Apply(state *entities.GameState) {
	if r.Turn != nil {
		state.Turn = *r.Turn
	}
	if r.Resources != nil {
		state.Resources = *r.Resources
	}
	if r.Field != nil {
		state.Field = *r.Field
	}
	if r.Residents != nil {
		state.Residents = *r.Residents
	}
}

// ParseUpdateStateRequest 从任意 JSON 对象中挑出类型合法的字段，其余字段直接忽略
func ParseUpdateStateRequest(body map[string]interface{}) UpdateStateRequest {
	var req UpdateStateRequest
	if v, ok := AsInt(body["turn"]); ok {
		req.Turn = &v
	}
	if v, ok := AsInt(body["resources"]); ok {
		req.Resources = &v
	}
	if raw, ok := body["field"].([]interface{}); ok {
		if field, err := entities.ParseField(raw); err == nil {
			req.Field = &field
		}
	}
	if v, ok := AsInt(body["residents"]); ok {
		req.Residents = &v
	}
	return req
}

// PlaceBuildingRequest POST /api/place-building 的请求体
type PlaceBuildingRequest struct {
	Building string `json:"building"`
	Index    *int   `json:"index,omitempty"`
}

// PlaceBuildingBody 解析前的原始字段，保留类型信息以便区分错误
type PlaceBuildingBody struct {
	Building   string
	BuildingOK bool
	Index      int
	IndexOK    bool
	HasIndex   bool
}

// ParsePlaceBuildingBody 检查 building 是否为字符串、index 是否为整数
func ParsePlaceBuildingBody(body map[string]interface{}) PlaceBuildingBody {
	var out PlaceBuildingBody
	out.Building, out.BuildingOK = body["building"].(string)
	if raw, ok := body["index"]; ok && raw != nil {
		out.HasIndex = true
		out.Index, out.IndexOK = AsInt(raw)
	}
	return out
}

// ErrorResponse 所有失败请求的响应体
type ErrorResponse struct {
	Error string `json:"error"`
}

// 超出该范围的数字在 JSON 中无法精确表示
const maxSafeInteger = 1<<53 - 1

// AsInt 将 JSON 数字转换为 int，非整数或越界时返回 false
func AsInt(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		return n, true
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > maxSafeInteger || f < -maxSafeInteger {
		return 0, false
	}
	return int(f), true
}

// MessageTypeState 状态推送消息的类型
const MessageTypeState = "state"

// FeedMessage /ws 推送给客户端的消息
type FeedMessage struct {
	Type    string             `json:"type"`
	Payload entities.GameState `json:"payload"`
}
