package metrics

import (
	"sync"

	"github.com/ByLCY/panes/layout"
)

type widthKey struct {
	font string
	size float64
	text string
}

type heightKey struct {
	font string
	size float64
}

// Cache 记忆化另一个度量实现的结果。折行与字号搜索会反复测量相同的片段，
// 缓存后每个 (字体, 字号, 文本) 只测量一次。错误不会被缓存。
type Cache struct {
	inner layout.Metrics

	mu      sync.Mutex
	widths  map[widthKey]float64
	heights map[heightKey]float64
	hits    int
	misses  int
}

var _ layout.Metrics = (*Cache)(nil)

// NewCache 包装 inner。
func NewCache(inner layout.Metrics) *Cache {
	return &Cache{
		inner:   inner,
		widths:  map[widthKey]float64{},
		heights: map[heightKey]float64{},
	}
}

func (c *Cache) AdvanceWidth(font string, size float64, s string) (float64, error) {
	key := widthKey{font: font, size: size, text: s}
	c.mu.Lock()
	w, ok := c.widths[key]
	c.count(ok)
	c.mu.Unlock()
	if ok {
		return w, nil
	}

	w, err := c.inner.AdvanceWidth(font, size, s)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.widths[key] = w
	c.mu.Unlock()
	return w, nil
}

func (c *Cache) LineHeight(font string, size float64) (float64, error) {
	key := heightKey{font: font, size: size}
	c.mu.Lock()
	h, ok := c.heights[key]
	c.count(ok)
	c.mu.Unlock()
	if ok {
		return h, nil
	}

	h, err := c.inner.LineHeight(font, size)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.heights[key] = h
	c.mu.Unlock()
	return h, nil
}

func (c *Cache) count(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Stats 返回命中与未命中次数。
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset 清空缓存与计数。
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.widths)
	clear(c.heights)
	c.hits, c.misses = 0, 0
}
