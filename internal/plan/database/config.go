package database

import "time"

const (
	StoreBolt  = "bolt"
	StoreRedis = "redis"
)

type Config struct {
	Store         string        `envconfig:"RRT_PLAN_STORE" default:"bolt"`
	RedisAddr     string        `envconfig:"RRT_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"RRT_REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"RRT_REDIS_DB" default:"0"`
	TTL           time.Duration `envconfig:"RRT_PLAN_TTL" default:"24h"`
}
