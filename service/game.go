package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-city/config"
	"go-city/dto"
	"go-city/entities"
	"go-city/repository"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// StateListener 每次状态变更成功后收到最新状态
type StateListener interface {
	Broadcast(state entities.GameState)
}

// Options GameService 的可选参数
type Options struct {
	Mode   config.PlacementMode
	Seed   uint64 // 0 表示使用当前时间
	Logger *zap.Logger
}

// GameService 放置与经济规则。所有操作在同一把锁内完成 读取 → 修改 → 保存。
type GameService struct {
	mu       sync.Mutex
	store    repository.StateStore
	mode     config.PlacementMode
	rng      *rand.Rand
	log      *zap.Logger
	listener StateListener
}

func NewGameService(store repository.StateStore, opts Options) *GameService {
	if opts.Mode == "" {
		opts.Mode = config.PlacementRandom
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &GameService{
		store: store,
		mode:  opts.Mode,
		rng:   newRNG(opts.Seed),
		log:   opts.Logger,
	}
}

// SetListener 设置状态变更的接收者（通常是 ws.Hub）
func (s *GameService) SetListener(l StateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Mode 当前的放置模式
func (s *GameService) Mode() config.PlacementMode {
	return s.mode
}

// Init 把存储重置为初始状态，每次服务启动调用一次
func (s *GameService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := entities.DefaultGameState()
	if err := s.store.Reset(ctx, state); err != nil {
		return fmt.Errorf("初始化游戏状态失败: %w", err)
	}
	s.log.Info("✅ 游戏状态已初始化",
		zap.Int("turn", state.Turn),
		zap.Int("resources", state.Resources),
		zap.Int("residents", state.Residents),
	)
	return nil
}

func (s *GameService) GetState(ctx context.Context) (entities.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// UpdateState 覆盖请求中出现的字段，不做任何一致性校验
func (s *GameService) UpdateState(ctx context.Context, req dto.UpdateStateRequest) (entities.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return state, err
	}
	if req.Empty() {
		return state, nil
	}
	req.Apply(&state)
	if err := s.save(ctx, state); err != nil {
		return state, err
	}
	s.log.Info("游戏状态已更新",
		zap.Int("turn", state.Turn),
		zap.Int("resources", state.Resources),
		zap.Int("residents", state.Residents),
		zap.Bool("fieldReplaced", req.Field != nil),
	)
	return state, nil
}

// PlaceBuilding 按配置的模式放置建筑；random 模式下忽略请求中的 index。
// 空字符串在棋盘上表示空地，不能作为建筑名
func (s *GameService) PlaceBuilding(ctx context.Context, body dto.PlaceBuildingBody) (entities.GameState, error) {
	if !body.BuildingOK || body.Building == "" {
		return entities.GameState{}, s.ruleFailed(ErrInvalidBuilding, body.Building)
	}
	if s.mode == config.PlacementIndex {
		if !body.HasIndex || !body.IndexOK {
			return entities.GameState{}, s.ruleFailed(ErrInvalidIndex, body.Building)
		}
		return s.PlaceAt(ctx, body.Index, body.Building)
	}
	return s.PlaceRandom(ctx, body.Building)
}

// PlaceAt 在指定地块放置建筑
func (s *GameService) PlaceAt(ctx context.Context, index int, building string) (entities.GameState, error) {
	if building == "" {
		return entities.GameState{}, s.ruleFailed(ErrInvalidBuilding, building)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return state, err
	}
	if index < 0 || index >= entities.FieldSize {
		return state, s.ruleFailed(ErrInvalidIndex, building)
	}
	if state.Field.Occupied(index) {
		return state, s.ruleFailed(ErrSlotOccupied, building)
	}
	return s.build(ctx, state, index, building)
}

// PlaceRandom 在随机一个空地块上放置建筑
func (s *GameService) PlaceRandom(ctx context.Context, building string) (entities.GameState, error) {
	if building == "" {
		return entities.GameState{}, s.ruleFailed(ErrInvalidBuilding, building)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return state, err
	}
	empty := state.Field.EmptySlots()
	if len(empty) == 0 {
		return state, s.ruleFailed(ErrNoEmptySlots, building)
	}
	return s.build(ctx, state, pickRandom(s.rng, empty), building)
}

// build 扣除造价并写入建筑，调用方已持有锁且确认地块为空
func (s *GameService) build(ctx context.Context, state entities.GameState, index int, building string) (entities.GameState, error) {
	cost := entities.BuildingCost(building)
	if state.Resources < cost {
		return state, s.ruleFailed(ErrNotEnoughResources, building)
	}
	state.Resources -= cost
	state.Field[index] = building
	if err := s.save(ctx, state); err != nil {
		return state, err
	}
	s.log.Info("建筑已放置",
		zap.String("building", building),
		zap.Int("index", index),
		zap.Int("cost", cost),
		zap.Int("resources", state.Resources),
	)
	return state, nil
}

func (s *GameService) ruleFailed(ruleErr *RuleError, building string) error {
	s.log.Debug("放置请求被拒绝", zap.String("reason", ruleErr.Message), zap.String("building", building))
	return ruleErr
}

func (s *GameService) load(ctx context.Context) (entities.GameState, error) {
	state, err := s.store.Load(ctx)
	if errors.Is(err, repository.ErrNotInitialized) {
		// 存储被外部清空时回到初始状态，和重启后的表现一致
		state = entities.DefaultGameState()
		if err := s.store.Reset(ctx, state); err != nil {
			return state, fmt.Errorf("初始化游戏状态失败: %w", err)
		}
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("获取游戏状态失败: %w", err)
	}
	return state, nil
}

func (s *GameService) save(ctx context.Context, state entities.GameState) error {
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("保存游戏状态失败: %w", err)
	}
	if s.listener != nil {
		s.listener.Broadcast(state)
	}
	return nil
}
