package memory

import (
	"time"

	"lms-be/pkg/richtext"

	"github.com/patrickmn/go-cache"
)

// EditorRegistry holds live editor instances keyed by session id. Idle
// editors expire after ttl and are closed on eviction, so late image
// completions against them are dropped.
type EditorRegistry struct {
	cache *cache.Cache
}

func NewEditorRegistry(ttl time.Duration) *EditorRegistry {
	c := cache.New(ttl, time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if e, ok := v.(*richtext.Editor); ok {
			e.Close()
		}
	})
	return &EditorRegistry{cache: c}
}

func (r *EditorRegistry) Put(id string, e *richtext.Editor) {
	r.cache.SetDefault(id, e)
}

// Get returns the editor and refreshes its idle timer.
func (r *EditorRegistry) Get(id string) (*richtext.Editor, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	r.cache.SetDefault(id, x)
	return x.(*richtext.Editor), true
}

func (r *EditorRegistry) Delete(id string) {
	r.cache.Delete(id)
}

func (r *EditorRegistry) Count() int {
	return r.cache.ItemCount()
}
