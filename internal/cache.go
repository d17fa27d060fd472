package sysdash

import (
	"context"
	"sync"
)

// nodeCache remembers the instance list of a Prometheus server so a fetch
// does not list targets on every tick. It is cleared when the chosen
// instance stops answering.
type nodeCache struct {
	mu    sync.Mutex
	list  func(ctx context.Context) ([]string, error)
	nodes []string
}

func (c *nodeCache) GetInstances(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nodes == nil {
		nodes, err := c.list(ctx)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nodes, nil
		}
		c.nodes = nodes
	}
	return c.nodes, nil
}

func (c *nodeCache) clear() {
	c.mu.Lock()
	c.nodes = nil
	c.mu.Unlock()
}
