package ids

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	initOnce sync.Once
	initErr  error
)

// Init sets up the snowflake node. Calling it more than once is a no-op.
func Init(nodeID int64) error {
	initOnce.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns a time-ordered unique int64 used as primary key for every table.
func New() int64 {
	if node == nil {
		_ = Init(1)
	}
	return node.Generate().Int64()
}
