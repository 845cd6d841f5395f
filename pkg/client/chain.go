package client

import "sync"

// Chain é uma lista ordenada de transformações puras aplicadas por fold:
// a primeira registrada é a primeira aplicada. O valor zero é utilizável.
type Chain[T any] struct {
	mu  sync.RWMutex
	fns []func(T) T
}

// Use anexa interceptors ao fim da cadeia.
func (c *Chain[T]) Use(fns ...func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			c.fns = append(c.fns, fn)
		}
	}
}

// Apply aplica todos os interceptors, em ordem, sobre v.
func (c *Chain[T]) Apply(v T) T {
	c.mu.RLock()
	fns := make([]func(T) T, len(c.fns))
	copy(fns, c.fns)
	c.mu.RUnlock()

	for _, fn := range fns {
		v = fn(v)
	}
	return v
}

// Len devolve o número de interceptors registrados.
func (c *Chain[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fns)
}
