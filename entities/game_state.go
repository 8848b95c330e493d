package entities

import (
	"encoding/json"
	"fmt"
)

const (
	FieldSize    = 16
	FieldColumns = 4
	SlotSpacing  = 2.0
)

// Field 棋盘的 16 个地块，空字符串表示空地，JSON 中编码为 null
type Field [FieldSize]string

// GameState 服务端唯一的共享游戏状态
type GameState struct {
	Turn      int   `json:"turn"`
	Resources int   `json:"resources"`
	Field     Field `json:"field"`
	Residents int   `json:"residents"`
}

// DefaultGameState 每次服务启动时的初始状态
func DefaultGameState() GameState {
	return GameState{
		Turn:      1,
		Resources: 100,
		Residents: 10,
	}
}

// EmptySlots 按升序返回所有空地块的下标
func (f Field) EmptySlots() []int {
	var empty []int
	for i, slot := range f {
		if slot == "" {
			empty = append(empty, i)
		}
	}
	return empty
}

// Occupied 判断地块上是否已有建筑
func (f Field) Occupied(index int) bool {
	return f[index] != ""
}

func (f Field) MarshalJSON() ([]byte, error) {
	slots := make([]*string, FieldSize)
	for i := range f {
		if f[i] != "" {
			name := f[i]
			slots[i] = &name
		}
	}
	return json.Marshal(slots)
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var slots []*string
	if err := json.Unmarshal(data, &slots); err != nil {
		return fmt.Errorf("field 解析失败: %w", err)
	}
	if len(slots) != FieldSize {
		return fmt.Errorf("field 长度必须为 %d，实际为 %d", FieldSize, len(slots))
	}
	var out Field
	for i, slot := range slots {
		if slot != nil {
			out[i] = *slot
		}
	}
	*f = out
	return nil
}

// ParseField 将解码后的 JSON 数组（元素为 string 或 nil）转换为 Field，长度必须为 FieldSize
func ParseField(raw []interface{}) (Field, error) {
	var out Field
	if len(raw) != FieldSize {
		return out, fmt.Errorf("field 长度必须为 %d，实际为 %d", FieldSize, len(raw))
	}
	for i, v := range raw {
		switch slot := v.(type) {
		case nil:
		case string:
			out[i] = slot
		default:
			return out, fmt.Errorf("field[%d] 类型无效: %T", i, v)
		}
	}
	return out, nil
}
