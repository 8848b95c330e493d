// redis.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"go-city/entities"

	"github.com/go-redis/redis/v8"
	"github.com/mitchellh/mapstructure"
)

// RedisOptions Redis 连接参数
type RedisOptions struct {
	Addr     string // Redis 地址（Docker 里用服务名或内网IP）
	Password string
	DB       int
	Key      string // 保存游戏状态的 hash key
}

// RedisStore 把游戏状态保存在一个 Redis hash 中，field 以 JSON 字符串存储
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore 建立连接并 Ping 一次，失败时返回错误
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}
	return NewRedisStoreWithClient(rdb, opts.Key), nil
}

// NewRedisStoreWithClient 复用已有的客户端
func NewRedisStoreWithClient(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Reset(ctx context.Context, state entities.GameState) error {
	values, err := stateToHash(state)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("重置游戏状态失败: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (entities.GameState, error) {
	var state entities.GameState
	data, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return state, fmt.Errorf("读取游戏状态失败: %w", err)
	}
	if len(data) == 0 {
		return state, ErrNotInitialized
	}

	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(stringToIntHookFunc(), stringToFieldHookFunc()),
		Result:     &state,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return state, fmt.Errorf("创建解码器失败: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return state, fmt.Errorf("游戏状态解析失败: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state entities.GameState) error {
	values, err := stateToHash(state)
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, s.key, values).Err(); err != nil {
		return fmt.Errorf("写入游戏状态失败: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func stateToHash(state entities.GameState) (map[string]interface{}, error) {
	fieldJSON, err := json.Marshal(state.Field)
	if err != nil {
		return nil, fmt.Errorf("field 序列化失败: %w", err)
	}
	return map[string]interface{}{
		"turn":      state.Turn,
		"resources": state.Resources,
		"residents": state.Residents,
		"field":     string(fieldJSON),
	}, nil
}

// 自定义 HookFunc，把字符串转换成 int
func stringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from == reflect.String && to == reflect.Int {
			return strconv.Atoi(data.(string))
		}
		return data, nil
	}
}

// 把 JSON 字符串还原成 Field
func stringToFieldHookFunc() mapstructure.DecodeHookFunc {
	fieldType := reflect.TypeOf(entities.Field{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != fieldType {
			return data, nil
		}
		var field entities.Field
		if err := json.Unmarshal([]byte(data.(string)), &field); err != nil {
			return nil, err
		}
		return field, nil
	}
}
