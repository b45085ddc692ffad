package session

import "octlabel/internal/tiffmeta"

// metaCacheLimit bounds the per-process metadata cache. Human sessions rarely
// touch this many distinct files; when they do, the cache starts over instead
// of growing for the rest of the process.
const metaCacheLimit = 256

type metaCache struct {
	extract func(string) tiffmeta.Result
	limit   int
	entries map[string]tiffmeta.Result
}

func newMetaCache(extract func(string) tiffmeta.Result, limit int) *metaCache {
	return &metaCache{
		extract: extract,
		limit:   limit,
		entries: make(map[string]tiffmeta.Result),
	}
}

// get returns a copy of the cached extraction for path, extracting on miss.
func (c *metaCache) get(path string) tiffmeta.Result {
	if res, ok := c.entries[path]; ok {
		return cloneResult(res)
	}
	res := c.extract(path)
	if len(c.entries) >= c.limit {
		clear(c.entries)
	}
	c.entries[path] = res
	return cloneResult(res)
}

func cloneResult(res tiffmeta.Result) tiffmeta.Result {
	return tiffmeta.Result{
		Fields: append([]tiffmeta.Field(nil), res.Fields...),
		Issues: append([]tiffmeta.Issue(nil), res.Issues...),
	}
}
