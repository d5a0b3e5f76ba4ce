package database

import "time"

type Config struct {
	FileName    string        `envconfig:"RRT_DB_FILE" default:"rrt.db"`
	OpenTimeout time.Duration `envconfig:"RRT_DB_OPEN_TIMEOUT" default:"1s"`
}
