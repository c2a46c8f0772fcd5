package query

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/adamavenir/weft/internal/core"
	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/types"
)

// Posts returns a filtered, paginated connection over all indexed
// posts. Supplied filters are conjunctive. Causal order is undefined
// across threads and rejected.
func (r *Resolver) Posts(filter types.PostFilter, order types.OrderBy, page types.Page) (types.PostConnection, error) {
	if order == "" {
		order = types.OrderReceived
	}
	if order == types.OrderCausal {
		return types.PostConnection{}, fmt.Errorf("causal order is only defined within a single thread: %w", types.ErrUnsupportedOrdering)
	}

	args, err := resolvePage(page, order)
	if err != nil {
		return types.PostConnection{}, err
	}

	dbFilter, matcher, err := buildPostFilter(filter)
	if err != nil {
		return types.PostConnection{}, err
	}

	var rows []types.Post
	var more bool
	var total int
	if matcher == nil {
		rows, err = db.ListPosts(r.conn, db.PostListOptions{
			Filter: dbFilter,
			Order:  order,
			Desc:   args.backward,
			After:  args.bound,
			Limit:  args.limit + 1,
		})
		if err != nil {
			return types.PostConnection{}, err
		}
		rows, more = trimWindow(rows, args)
		total, err = db.CountPosts(r.conn, dbFilter)
		if err != nil {
			return types.PostConnection{}, err
		}
	} else {
		// Pattern queries refine in memory, so the window is cut from
		// the full filtered listing rather than pushed into SQL.
		all, err := db.ListPosts(r.conn, db.PostListOptions{Filter: dbFilter, Order: order})
		if err != nil {
			return types.PostConnection{}, err
		}
		matched := all[:0:0]
		for _, post := range all {
			if matcher.Match(strings.ToLower(post.Text)) {
				matched = append(matched, post)
			}
		}
		total = len(matched)
		rows, more = windowSlice(matched, order, args)
	}

	edges := make([]types.PostEdge, 0, len(rows))
	for _, post := range rows {
		edges = append(edges, types.PostEdge{Cursor: encodeCursor(order, post), Node: post})
	}
	return types.PostConnection{
		Edges:      edges,
		PageInfo:   pageInfo(order, rows, args, more),
		TotalCount: total,
	}, nil
}

// buildPostFilter translates the connection filter into its SQL form.
// A query with glob metacharacters comes back as a compiled matcher
// instead of a LIKE clause.
func buildPostFilter(filter types.PostFilter) (db.PostFilter, glob.Glob, error) {
	dbFilter := db.PostFilter{
		Authors:  filter.Authors,
		Privacy:  filter.Privacy,
		Mentions: mentionRefs(filter.MentionsAuthors, filter.MentionsChannels),
	}
	if filter.Query == "" {
		return dbFilter, nil, nil
	}
	if !strings.ContainsAny(filter.Query, "*?[{") {
		dbFilter.TextLike = filter.Query
		return dbFilter, nil, nil
	}
	matcher, err := glob.Compile(strings.ToLower(filter.Query))
	if err != nil {
		return db.PostFilter{}, nil, fmt.Errorf("query pattern %q: %v: %w", filter.Query, err, types.ErrValidation)
	}
	return dbFilter, matcher, nil
}

// mentionRefs folds author ids and channel names into the link-target
// form the index stores.
func mentionRefs(authors, channels []string) []string {
	var refs []string
	refs = append(refs, authors...)
	for _, channel := range channels {
		refs = append(refs, core.ChannelSigil+core.NormalizeChannel(channel))
	}
	return refs
}

// windowSlice cuts a pagination window out of an in-memory ascending
// listing, mirroring the SQL keyset semantics.
func windowSlice(posts []types.Post, order types.OrderBy, args pageArgs) ([]types.Post, bool) {
	if args.bound == nil {
		if args.backward {
			if len(posts) <= args.limit {
				return posts, false
			}
			return posts[len(posts)-args.limit:], true
		}
		if len(posts) <= args.limit {
			return posts, false
		}
		return posts[:args.limit], true
	}

	// Find the first index strictly past the bound in ascending order.
	split := 0
	for split < len(posts) {
		key := sortKey(order, posts[split])
		if key > args.bound.Key || (key == args.bound.Key && posts[split].Seq > args.bound.Seq) {
			break
		}
		split++
	}

	if args.backward {
		// Everything strictly before the bound, keeping the last limit.
		before := posts[:split]
		if len(before) > 0 {
			last := before[len(before)-1]
			if sortKey(order, last) == args.bound.Key && last.Seq == args.bound.Seq {
				before = before[:len(before)-1]
			}
		}
		if len(before) <= args.limit {
			return before, false
		}
		return before[len(before)-args.limit:], true
	}

	after := posts[split:]
	if len(after) <= args.limit {
		return after, false
	}
	return after[:args.limit], true
}
