package media

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/metafates/gache"
	"github.com/playsync/playsync/filesystem"
	"github.com/samber/mo"
)

// cacheFs stores the cache through the swappable filesystem backend.
type cacheFs struct{}

func (cacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return filesystem.API().OpenFile(name, flag, perm)
}

func (cacheFs) MkdirAll(path string, perm os.FileMode) error {
	return filesystem.API().MkdirAll(path, perm)
}

type cacheData struct {
	Infos map[string]Info `json:"infos"`
}

// Cache persists probed media information keyed by media path.
type Cache struct {
	internal *gache.Cache[*cacheData]
}

// NewCache creates a cache stored at path. A zero lifetime never expires.
func NewCache(path string, lifetime time.Duration) *Cache {
	return &Cache{
		internal: gache.New[*cacheData](&gache.Options{
			Path:       path,
			Lifetime:   lifetime,
			FileSystem: cacheFs{},
		}),
	}
}

// Get returns the cached info for ref, if any.
func (c *Cache) Get(ref Ref) mo.Option[Info] {
	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[Info]()
	}

	info, ok := data.Infos[ref.Path]
	if !ok {
		return mo.None[Info]()
	}
	return mo.Some(info)
}

// Set stores info for ref.
func (c *Cache) Set(ref Ref, info Info) error {
	data, expired, err := c.internal.Get()
	if err != nil {
		return fmt.Errorf("read probe cache: %w", err)
	}

	if expired || data == nil {
		data = &cacheData{Infos: make(map[string]Info)}
	}
	data.Infos[ref.Path] = info

	return c.internal.Set(data)
}
