package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreRedis  StoreBackend = "redis"
)

type PlacementMode string

const (
	PlacementRandom PlacementMode = "random"
	PlacementIndex  PlacementMode = "index"
)

// Config 服务启动参数，全部来自环境变量
type Config struct {
	Port          int
	Store         StoreBackend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	PlacementMode PlacementMode
	CORSOrigins   []string
	StaticDir     string
	JWTSecret     string
	RateLimit     float64
	RateBurst     int
	LogLevel      string
	GinMode       string
}

// Default 返回未设置任何环境变量时的配置
func Default() Config {
	return Config{
		Port:          8000,
		Store:         StoreMemory,
		RedisAddr:     "localhost:6379",
		RedisKey:      "city:game_state",
		PlacementMode: PlacementRandom,
		CORSOrigins:   []string{"http://localhost:3000"},
		StaticDir:     "frontend/dist",
		RateBurst:     5,
		LogLevel:      "info",
		GinMode:       "release",
	}
}

// Load 从进程环境变量读取配置
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom 使用给定的查找函数读取配置，便于测试
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("PORT 无效: %q", v)
		}
		cfg.Port = port
	}
	if v, ok := get("STORE"); ok {
		switch StoreBackend(strings.ToLower(v)) {
		case StoreMemory:
			cfg.Store = StoreMemory
		case StoreRedis:
			cfg.Store = StoreRedis
		default:
			return cfg, fmt.Errorf("STORE 无效: %q（可选 memory/redis）", v)
		}
	}
	if v, ok := get("REDIS_ADDR"); ok {
		cfg.RedisAddr = v
	}
	if v, ok := get("REDIS_PASSWORD"); ok {
		cfg.RedisPassword = v
	}
	if v, ok := get("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return cfg, fmt.Errorf("REDIS_DB 无效: %q", v)
		}
		cfg.RedisDB = db
	}
	if v, ok := get("REDIS_KEY"); ok {
		cfg.RedisKey = v
	}
	if v, ok := get("PLACEMENT_MODE"); ok {
		switch PlacementMode(strings.ToLower(v)) {
		case PlacementRandom:
			cfg.PlacementMode = PlacementRandom
		case PlacementIndex:
			cfg.PlacementMode = PlacementIndex
		default:
			return cfg, fmt.Errorf("PLACEMENT_MODE 无效: %q（可选 random/index）", v)
		}
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v, ok := lookup("STATIC_DIR"); ok {
		// 显式设为空字符串表示不提供静态文件
		cfg.StaticDir = strings.TrimSpace(v)
	}
	if v, ok := get("JWT_SECRET"); ok {
		cfg.JWTSecret = v
	}
	if v, ok := get("RATE_LIMIT"); ok {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit < 0 {
			return cfg, fmt.Errorf("RATE_LIMIT 无效: %q", v)
		}
		cfg.RateLimit = limit
	}
	if v, ok := get("RATE_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return cfg, fmt.Errorf("RATE_BURST 无效: %q", v)
		}
		cfg.RateBurst = burst
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("GIN_MODE"); ok {
		cfg.GinMode = v
	}
	return cfg, nil
}

// Addr 监听地址
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
