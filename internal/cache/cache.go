// Package cache 在两次写入之间缓存公开列表。
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// 列表缓存键。
const (
	KeyProjects = "projects"
	KeySkills   = "skills"
	KeyBlog     = "blog"
)

// Lists 是按列表名索引的读穿缓存。
type Lists struct {
	c *gocache.Cache
}

// New 构造缓存，条目在 ttl 后过期。
func New(ttl time.Duration) *Lists {
	return &Lists{c: gocache.New(ttl, 2*ttl)}
}

// Fetch 返回 key 对应的缓存值，未命中时调用 load 并写入缓存。
// l 为 nil 时每次都调用 load；load 出错时不缓存。
func Fetch[T any](l *Lists, key string, load func() (T, error)) (T, error) {
	if l != nil {
		if data, found := l.c.Get(key); found {
			if v, ok := data.(T); ok {
				return v, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if l != nil {
		l.c.Set(key, v, gocache.DefaultExpiration)
	}
	return v, nil
}

// Invalidate 删除指定列表的缓存。
func (l *Lists) Invalidate(keys ...string) {
	if l == nil {
		return
	}
	for _, k := range keys {
		l.c.Delete(k)
	}
}
