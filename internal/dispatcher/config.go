package dispatcher

import "time"

type Config struct {
	// Timer for running retention over the stored plans
	RebuildDBTime time.Duration `envconfig:"RRT_DISPATCHER_REBUILD_DB_TIME" default:"15s"`
	// maximum number of plans kept for each trajectory, 0 keeps everything
	MaxPlansStored int `envconfig:"RRT_DISPATCHER_MAX_PLANS_STORED" default:"1000"`
	// maximum retention period of a plan, 0 keeps plans forever
	MaxStorageTime time.Duration `envconfig:"RRT_DISPATCHER_MAX_STORAGE_TIME" default:"0s"`
	// buffer size at which pending plans are flushed to the store
	DBFlushSize int `envconfig:"RRT_DB_FLUSH_SIZE" default:"16"`
	// longest time a plan waits in the buffer
	DBFlushTime time.Duration `envconfig:"RRT_DB_FLUSH_TIME" default:"1s"`
}
