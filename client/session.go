package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-city/dto"
	"go-city/entities"
)

// 本地校验失败时显示的通知
const (
	MsgNotEnoughResources = "Not enough resources!"
	MsgNoPlaceToBuild     = "No place to build!"
	MsgFetchFailed        = "Failed to fetch game state."
	MsgPlaceFailed        = "Failed to place building."
	MsgEffectFailed       = "Failed to update resources."
)

var (
	ErrNotStarted  = errors.New("会话尚未开始")
	ErrUnknownCard = errors.New("手牌中没有该卡牌")
	ErrLocalCheck  = errors.New("本地校验未通过")
)

// SessionOptions 客户端会话参数
type SessionOptions struct {
	// PreCheck 为 true 时在请求前先用本地状态检查资源与空地，并按第一个空地块指定 index
	PreCheck        bool
	NotificationTTL time.Duration
	OnNotify        func(string)
}

// Session 一次客户端会话：本地状态只接受服务端确认过的结果。
// SelectCard 不支持并发调用。
type Session struct {
	api      *Client
	notifier *Notifier
	precheck bool

	mu    sync.Mutex
	state *entities.GameState
	hand  []entities.Card
}

func NewSession(api *Client, opts SessionOptions) *Session {
	return &Session{
		api:      api,
		notifier: NewNotifier(opts.NotificationTTL, opts.OnNotify),
		precheck: opts.PreCheck,
		hand:     entities.DefaultHand(),
	}
}

// Start 获取服务端状态
func (s *Session) Start(ctx context.Context) error {
	state, err := s.api.GetState(ctx)
	if err != nil {
		s.notifier.Show(MsgFetchFailed)
		return fmt.Errorf("获取游戏状态失败: %w", err)
	}
	s.Apply(state)
	return nil
}

// Apply 用服务端确认的状态替换本地状态
func (s *Session) Apply(state entities.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
}

// State 返回本地状态快照，未开始时 ok 为 false
func (s *Session) State() (state entities.GameState, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return state, false
	}
	return *s.state, true
}

func (s *Session) Hand() []entities.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Card(nil), s.hand...)
}

func (s *Session) Notification() string {
	return s.notifier.Current()
}

// SelectCard 打出一张卡牌：放置建筑，确认后移除手牌，再提交卡牌效果
func (s *Session) SelectCard(ctx context.Context, cardID int) error {
	state, ok := s.State()
	if !ok {
		return ErrNotStarted
	}
	card, ok := s.findCard(cardID)
	if !ok {
		return ErrUnknownCard
	}

	req := dto.PlaceBuildingRequest{Building: card.Name}
	if s.precheck {
		if state.Resources < card.Cost {
			s.notifier.Show(MsgNotEnoughResources)
			return ErrLocalCheck
		}
		empty := state.Field.EmptySlots()
		if len(empty) == 0 {
			s.notifier.Show(MsgNoPlaceToBuild)
			return ErrLocalCheck
		}
		req.Index = &empty[0]
	}

	placed, err := s.api.PlaceBuilding(ctx, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			s.notifier.Show(apiErr.Message)
		} else {
			s.notifier.Show(MsgPlaceFailed)
		}
		return fmt.Errorf("放置 %s 失败: %w", card.Name, err)
	}
	s.mu.Lock()
	s.state = &placed
	s.removeCardLocked(card.ID)
	s.mu.Unlock()

	if card.Effect.IsZero() {
		return nil
	}
	updated, err := s.api.UpdateState(ctx, effectPatch(placed, card.Effect))
	if err != nil {
		s.notifier.Show(MsgEffectFailed)
		return fmt.Errorf("提交 %s 卡牌效果失败: %w", card.Name, err)
	}
	s.Apply(updated)
	return nil
}

// effectPatch 基于服务端确认的状态计算效果，只包含有变化的字段
func effectPatch(confirmed entities.GameState, effect entities.Effect) dto.UpdateStateRequest {
	var patch dto.UpdateStateRequest
	if effect.Resources != 0 {
		resources := confirmed.Resources + effect.Resources
		patch.Resources = &resources
	}
	if effect.Residents != 0 {
		residents := confirmed.Residents + effect.Residents
		patch.Residents = &residents
	}
	return patch
}

func (s *Session) findCard(id int) (entities.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range s.hand {
		if card.ID == id {
			return card, true
		}
	}
	return entities.Card{}, false
}

func (s *Session) removeCardLocked(id int) {
	kept := s.hand[:0]
	for _, card := range s.hand {
		if card.ID != id {
			kept = append(kept, card)
		}
	}
	s.hand = kept
}

// Watch 订阅服务端推送并持续更新本地状态，直到 ctx 结束
func (s *Session) Watch(ctx context.Context) error {
	return s.api.Watch(ctx, s.Apply)
}

// Close 释放通知计时器
func (s *Session) Close() {
	s.notifier.Close()
}
