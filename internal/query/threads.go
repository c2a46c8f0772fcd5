package query

import (
	"fmt"
	"sort"

	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/types"
)

// Threads returns a paginated connection over thread roots. Selectors
// are disjunctive: a thread qualifies when any one supplied selector
// holds, and privacy applies on top. With no selectors every thread
// qualifies.
func (r *Resolver) Threads(selector types.ThreadSelector, order types.OrderBy, page types.Page) (types.ThreadConnection, error) {
	if order == "" {
		order = types.OrderReceived
	}
	if order == types.OrderCausal {
		return types.ThreadConnection{}, fmt.Errorf("causal order is only defined within a single thread: %w", types.ErrUnsupportedOrdering)
	}

	args, err := resolvePage(page, order)
	if err != nil {
		return types.ThreadConnection{}, err
	}

	filter, err := r.buildThreadFilter(selector)
	if err != nil {
		return types.ThreadConnection{}, err
	}

	roots, err := db.ListThreadRoots(r.conn, db.ThreadListOptions{
		Filter: filter,
		Order:  order,
		Desc:   args.backward,
		After:  args.bound,
		Limit:  args.limit + 1,
	})
	if err != nil {
		return types.ThreadConnection{}, err
	}
	roots, more := trimWindow(roots, args)

	total, err := db.CountThreadRoots(r.conn, filter)
	if err != nil {
		return types.ThreadConnection{}, err
	}

	edges := make([]types.ThreadEdge, 0, len(roots))
	for _, root := range roots {
		thread, err := r.assembleThread(root)
		if err != nil {
			return types.ThreadConnection{}, err
		}
		edges = append(edges, types.ThreadEdge{Cursor: encodeCursor(order, root), Node: thread})
	}
	return types.ThreadConnection{
		Edges:      edges,
		PageInfo:   pageInfo(order, roots, args, more),
		TotalCount: total,
	}, nil
}

// buildThreadFilter resolves follow-indirected selectors into flat
// author sets the SQL layer understands.
func (r *Resolver) buildThreadFilter(selector types.ThreadSelector) (db.ThreadFilter, error) {
	filter := db.ThreadFilter{
		Privacy:  selector.Privacy,
		Mentions: mentionRefs(selector.MentionsAuthors, selector.MentionsChannels),
	}
	filter.HasSelectors = len(selector.RootsAuthoredBy) > 0 ||
		len(selector.RootsAuthoredBySomeoneFollowedBy) > 0 ||
		len(selector.HasRepliesAuthoredBy) > 0 ||
		len(selector.HasRepliesAuthoredBySomeoneFollowedBy) > 0 ||
		len(filter.Mentions) > 0

	rootAuthors, err := r.expandFollows(selector.RootsAuthoredBy, selector.RootsAuthoredBySomeoneFollowedBy)
	if err != nil {
		return db.ThreadFilter{}, err
	}
	filter.RootAuthors = rootAuthors

	replyAuthors, err := r.expandFollows(selector.HasRepliesAuthoredBy, selector.HasRepliesAuthoredBySomeoneFollowedBy)
	if err != nil {
		return db.ThreadFilter{}, err
	}
	filter.ReplyAuthors = replyAuthors
	return filter, nil
}

// expandFollows unions direct authors with the follow sets of the
// indirected ones, deduplicated.
func (r *Resolver) expandFollows(direct, followedBy []string) ([]string, error) {
	seen := make(map[string]bool, len(direct))
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range direct {
		add(id)
	}
	for _, follower := range followedBy {
		followed, err := r.followSet(follower)
		if err != nil {
			return nil, err
		}
		for _, id := range followed {
			add(id)
		}
	}
	return out, nil
}

// Thread returns one thread by any post in it, replies ordered by
// orderBy. Causal order is defined here: replies sort by their
// root/fork ancestry, ties by received sequence.
func (r *Resolver) Thread(postID string, order types.OrderBy) (types.Thread, error) {
	root, err := db.GetPost(r.conn, postID)
	if err != nil {
		return types.Thread{}, err
	}
	if root.RootKey != nil {
		root, err = db.GetPost(r.conn, *root.RootKey)
		if err != nil {
			return types.Thread{}, err
		}
	}
	return r.assembleThreadOrdered(root, order)
}

func (r *Resolver) assembleThread(root types.Post) (types.Thread, error) {
	return r.assembleThreadOrdered(root, types.OrderReceived)
}

func (r *Resolver) assembleThreadOrdered(root types.Post, order types.OrderBy) (types.Thread, error) {
	replies, err := db.Replies(r.conn, root.ID)
	if err != nil {
		return types.Thread{}, err
	}

	switch order {
	case types.OrderReceived, "":
		// Replies already arrive in received order.
	case types.OrderAsserted:
		sort.SliceStable(replies, func(i, j int) bool {
			if replies[i].AssertedAt != replies[j].AssertedAt {
				return replies[i].AssertedAt < replies[j].AssertedAt
			}
			return replies[i].Seq < replies[j].Seq
		})
	case types.OrderCausal:
		replies = causalSort(root, replies)
	default:
		return types.Thread{}, fmt.Errorf("unknown order %q: %w", order, types.ErrValidation)
	}

	return types.Thread{Root: root, Replies: replies, IsPrivate: root.Private}, nil
}
