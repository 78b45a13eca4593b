package memory

import (
	"context"
	"sync"

	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type Children struct {
	mu       sync.Mutex
	children map[string]entity.Child
}

func NewChildren() *Children {
	return &Children{
		children: make(map[string]entity.Child),
	}
}

func (c *Children) Add(_ context.Context, child entity.Child) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.children[child.ChildID] = child
	return nil
}

func (c *Children) Get(_ context.Context, childID string) (entity.Child, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	child, ok := c.children[childID]
	if !ok {
		return entity.Child{}, entity.ErrChildNotFound
	}
	return child, nil
}

func (c *Children) Deactivate(_ context.Context, childID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	child, ok := c.children[childID]
	if !ok {
		return entity.ErrChildNotFound
	}
	child.Active = false
	c.children[childID] = child

	return nil
}
