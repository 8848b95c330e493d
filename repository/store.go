package repository

import (
	"context"
	"errors"

	"go-city/entities"
)

// ErrNotInitialized 存储中还没有游戏状态
var ErrNotInitialized = errors.New("游戏状态尚未初始化")

// StateStore 游戏状态的存储后端。调用方负责串行化读改写。
type StateStore interface {
	// Reset 用给定状态覆盖存储内容，服务启动时调用
	Reset(ctx context.Context, state entities.GameState) error
	Load(ctx context.Context) (entities.GameState, error)
	Save(ctx context.Context, state entities.GameState) error
	Close() error
}
