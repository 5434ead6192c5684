package sprite

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/scan"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

// Groups detects sprite groups among element ids by shared prefix.
// The returned map is keyed by group prefix; member lists preserve the
// input order. Ids that do not end in digits, or whose prefix is shared
// by no other id, are not grouped.
func Groups(ids []string) map[string][]string {
	byPrefix := make(map[string][]string)
	for _, id := range ids {
		p := prefixOf(id)
		if p == "" {
			continue
		}
		byPrefix[p] = append(byPrefix[p], id)
	}
	for p, members := range byPrefix {
		if len(members) < 2 {
			delete(byPrefix, p)
		}
	}
	return byPrefix
}

// prefixOf strips a trailing counter (digits, optionally preceded by one
// - or _ separator) from an id. It returns "" when the id has no counter
// or nothing remains once it is stripped.
func prefixOf(id string) string {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) || i == 0 {
		return ""
	}
	p := id[:i]
	if strings.HasSuffix(p, "-") || strings.HasSuffix(p, "_") {
		p = p[:len(p)-1]
	}
	if p == "" {
		return ""
	}
	return p
}

// MultiScan scans each id as an independent target, concurrently. Every
// goroutine gets its own engine from newEngine, so no rasterizer session
// is ever shared between in-flight scans.
//
// Any member failure fails the whole call (the context passed to the
// remaining scans is canceled): a partially populated result set is never
// returned, mirroring the single-target rule that failure carries no
// partial bbox.
func MultiScan(ctx context.Context, newEngine func() *scan.Engine, doc *svg.Document, ids []string, opts scan.Options) (map[string]*scan.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make(map[string]*scan.Result, len(ids))

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res, err := newEngine().Scan(ctx, doc, id, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			results[id] = res
		}(id)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// Aggregate unions the global boxes of a completed result set. Union is
// commutative and associative, so iteration order over the map cannot
// change the outcome. The second return value is false for an empty set.
func Aggregate(results map[string]*scan.Result) (scan.Box, bool) {
	boxes := make([]geom.BBox, 0, len(results))
	policy := ""
	for _, r := range results {
		boxes = append(boxes, r.Global.BBox)
		policy = r.Global.Policy
	}
	env, ok := geom.UnionAll(boxes)
	if !ok {
		return scan.Box{}, false
	}
	return scan.Box{Space: "global", Policy: policy, BBox: env}, true
}

// SortedMembers returns a group's member ids in lexical order, for stable
// report output.
func SortedMembers(results map[string]*scan.Result) []string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
