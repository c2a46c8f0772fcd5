package query

import (
	"sort"

	"github.com/adamavenir/weft/internal/types"
)

// causalSort orders replies so every post follows the posts it links
// to via root and fork keys, with the received sequence deciding
// between causally unrelated posts. Links leaving the thread are
// ignored. The walk is iterative; thread depth never touches the
// stack.
func causalSort(root types.Post, replies []types.Post) []types.Post {
	index := make(map[string]int, len(replies)+1)
	index[root.ID] = -1
	for i, reply := range replies {
		index[reply.ID] = i
	}

	children := make(map[int][]int)
	indegree := make([]int, len(replies))
	for i, reply := range replies {
		parents := make(map[int]bool, 2)
		for _, key := range []*string{reply.RootKey, reply.ForkKey} {
			if key == nil {
				continue
			}
			parent, known := index[*key]
			if !known || parent == i || parent == -1 || parents[parent] {
				continue
			}
			parents[parent] = true
			children[parent] = append(children[parent], i)
			indegree[i]++
		}
	}

	ready := make([]int, 0, len(replies))
	for i := range replies {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]types.Post, 0, len(replies))
	emitted := make([]bool, len(replies))
	for len(ready) > 0 {
		// Emit the ready post with the lowest received sequence.
		best := 0
		for i := 1; i < len(ready); i++ {
			if replies[ready[i]].Seq < replies[ready[best]].Seq {
				best = i
			}
		}
		next := ready[best]
		ready = append(ready[:best], ready[best+1:]...)

		emitted[next] = true
		out = append(out, replies[next])
		for _, child := range children[next] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	// Link cycles cannot happen with content-hash ids, but a malformed
	// log must not drop posts: anything left joins in received order.
	if len(out) < len(replies) {
		var rest []types.Post
		for i, reply := range replies {
			if !emitted[i] {
				rest = append(rest, reply)
			}
		}
		sort.Slice(rest, func(i, j int) bool { return rest[i].Seq < rest[j].Seq })
		out = append(out, rest...)
	}
	return out
}
