package memory

import (
	"context"
	"sync"

	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type Classes struct {
	mu      sync.Mutex
	classes map[string]entity.SchedClass
	// classes that have ever had a slot reserved
	claimed map[string]bool
}

func NewClasses() *Classes {
	return &Classes{
		classes: make(map[string]entity.SchedClass),
		claimed: make(map[string]bool),
	}
}

func (c *Classes) Add(_ context.Context, class entity.SchedClass) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	class.CurrentBookings = 0
	c.classes[class.ClassID] = class
	return nil
}

func (c *Classes) Get(_ context.Context, classID string) (entity.SchedClass, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, ok := c.classes[classID]
	if !ok {
		return entity.SchedClass{}, entity.ErrClassNotFound
	}
	return class, nil
}

func (c *Classes) TryReserve(_ context.Context, classID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, ok := c.classes[classID]
	if !ok || class.CurrentBookings >= class.Capacity {
		return false, nil
	}
	class.CurrentBookings++
	c.classes[classID] = class
	c.claimed[classID] = true

	return true, nil
}

func (c *Classes) Release(_ context.Context, classID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, ok := c.classes[classID]
	if !ok {
		return nil
	}
	if class.CurrentBookings > 0 {
		class.CurrentBookings--
	}
	c.classes[classID] = class

	return nil
}

func (c *Classes) SetStatus(_ context.Context, classID string, status entity.ClassStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, ok := c.classes[classID]
	if !ok {
		return entity.ErrClassNotFound
	}
	class.Status = status
	c.classes[classID] = class

	return nil
}

func (c *Classes) SetCapacity(_ context.Context, classID string, capacity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, ok := c.classes[classID]
	if !ok {
		return entity.ErrClassNotFound
	}
	if class.CurrentBookings > 0 || c.claimed[classID] {
		return entity.ErrCapacityLocked
	}
	class.Capacity = capacity
	c.classes[classID] = class

	return nil
}
