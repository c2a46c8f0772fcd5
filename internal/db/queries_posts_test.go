package db

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamavenir/weft/internal/types"
)

func postIDs(posts []types.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	return ids
}

func TestListPostsOrderAndKeyset(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	// Asserted timestamps deliberately disagree with received order,
	// and %p1/%p3 tie on the asserted key.
	insertTestPost(t, conn, types.Post{ID: "%p0", Author: "@a", Text: "zero", AssertedAt: 300, Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%p1", Author: "@a", Text: "one", AssertedAt: 100, Seq: 1})
	insertTestPost(t, conn, types.Post{ID: "%p2", Author: "@b", Text: "two", AssertedAt: 200, Seq: 2})
	insertTestPost(t, conn, types.Post{ID: "%p3", Author: "@b", Text: "three", AssertedAt: 100, Seq: 3})

	posts, err := ListPosts(conn, PostListOptions{Order: types.OrderReceived})
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if diff := cmp.Diff([]string{"%p0", "%p1", "%p2", "%p3"}, postIDs(posts)); diff != "" {
		t.Fatalf("received order mismatch (-want +got):\n%s", diff)
	}

	posts, err = ListPosts(conn, PostListOptions{Order: types.OrderAsserted})
	if err != nil {
		t.Fatalf("list asserted: %v", err)
	}
	if diff := cmp.Diff([]string{"%p1", "%p3", "%p2", "%p0"}, postIDs(posts)); diff != "" {
		t.Fatalf("asserted order mismatch (-want +got):\n%s", diff)
	}

	// Resume past the asserted-key tie.
	posts, err = ListPosts(conn, PostListOptions{
		Order: types.OrderAsserted,
		After: &KeysetBound{Key: 100, Seq: 1},
	})
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if diff := cmp.Diff([]string{"%p3", "%p2", "%p0"}, postIDs(posts)); diff != "" {
		t.Fatalf("keyset resume mismatch (-want +got):\n%s", diff)
	}

	// Backward scan from the same bound.
	posts, err = ListPosts(conn, PostListOptions{
		Order: types.OrderAsserted,
		Desc:  true,
		After: &KeysetBound{Key: 200, Seq: 2},
	})
	if err != nil {
		t.Fatalf("list desc: %v", err)
	}
	if diff := cmp.Diff([]string{"%p3", "%p1"}, postIDs(posts)); diff != "" {
		t.Fatalf("backward scan mismatch (-want +got):\n%s", diff)
	}
}

func TestListPostsFiltersAreConjunctive(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%p0", Author: "@a", Text: "go talk", Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%p1", Author: "@a", Text: "rust talk", Seq: 1, Private: true})
	insertTestPost(t, conn, types.Post{ID: "%p2", Author: "@b", Text: "go talk", Seq: 2})

	posts, err := ListPosts(conn, PostListOptions{Filter: PostFilter{
		TextLike: "GO",
		Authors:  []string{"@a"},
		Privacy:  types.PrivacyPublic,
	}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"%p0"}, postIDs(posts)); diff != "" {
		t.Fatalf("conjunction mismatch (-want +got):\n%s", diff)
	}

	count, err := CountPosts(conn, PostFilter{Authors: []string{"@a"}})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
}

func TestListPostsMentionFilter(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%p0", Author: "@a", Text: "hi bob", Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%p1", Author: "@a", Text: "hi all", Seq: 1})
	if err := InsertLink(conn, "%p0", "@bob"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := InsertLink(conn, "%p1", "#go"); err != nil {
		t.Fatalf("link: %v", err)
	}

	posts, err := ListPosts(conn, PostListOptions{Filter: PostFilter{Mentions: []string{"@bob"}}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"%p0"}, postIDs(posts)); diff != "" {
		t.Fatalf("mention filter mismatch (-want +got):\n%s", diff)
	}

	posts, err = ListPosts(conn, PostListOptions{Filter: PostFilter{Mentions: []string{"@bob", "#go"}}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected both posts, got %v", postIDs(posts))
	}
}

func TestListPostsRejectsCausalOrder(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	_, err := ListPosts(conn, PostListOptions{Order: types.OrderCausal})
	if !errors.Is(err, types.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRepliesAndForksAndReferences(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%root", Author: "@a", Text: "root", Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%r1", Author: "@b", Text: "reply", Seq: 1, RootKey: strPtr("%root")})
	insertTestPost(t, conn, types.Post{ID: "%r2", Author: "@c", Text: "fork", Seq: 2, RootKey: strPtr("%root"), ForkKey: strPtr("%r1")})
	insertTestPost(t, conn, types.Post{ID: "%other", Author: "@d", Text: "cite", Seq: 3})
	if err := InsertLink(conn, "%other", "%root"); err != nil {
		t.Fatalf("link: %v", err)
	}

	replies, err := Replies(conn, "%root")
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if diff := cmp.Diff([]string{"%r1", "%r2"}, postIDs(replies)); diff != "" {
		t.Fatalf("replies mismatch (-want +got):\n%s", diff)
	}

	forks, err := Forks(conn, "%r1")
	if err != nil {
		t.Fatalf("forks: %v", err)
	}
	if diff := cmp.Diff([]string{"%r2"}, postIDs(forks)); diff != "" {
		t.Fatalf("forks mismatch (-want +got):\n%s", diff)
	}

	refs, err := References(conn, "%root")
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if diff := cmp.Diff([]string{"%other"}, postIDs(refs)); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestListThreadRootsSelectorsAreDisjunctive(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%t0", Author: "@a", Text: "a's thread", Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%t1", Author: "@b", Text: "b's thread", Seq: 1})
	insertTestPost(t, conn, types.Post{ID: "%t2", Author: "@c", Text: "c's thread", Seq: 2})
	insertTestPost(t, conn, types.Post{ID: "%r0", Author: "@d", Text: "reply", Seq: 3, RootKey: strPtr("%t1")})

	// Replies are never thread roots.
	roots, err := ListThreadRoots(conn, ThreadListOptions{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if diff := cmp.Diff([]string{"%t0", "%t1", "%t2"}, postIDs(roots)); diff != "" {
		t.Fatalf("all roots mismatch (-want +got):\n%s", diff)
	}

	// Either rooted by @a or replied to by @d.
	roots, err = ListThreadRoots(conn, ThreadListOptions{Filter: ThreadFilter{
		HasSelectors: true,
		RootAuthors:  []string{"@a"},
		ReplyAuthors: []string{"@d"},
	}})
	if err != nil {
		t.Fatalf("list selected: %v", err)
	}
	if diff := cmp.Diff([]string{"%t0", "%t1"}, postIDs(roots)); diff != "" {
		t.Fatalf("disjunction mismatch (-want +got):\n%s", diff)
	}

	count, err := CountThreadRoots(conn, ThreadFilter{HasSelectors: true, RootAuthors: []string{"@a"}, ReplyAuthors: []string{"@d"}})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
}

func TestListThreadRootsEmptyResolvedSelectors(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%t0", Author: "@a", Text: "thread", Seq: 0})

	// Selectors were supplied but resolved to nobody: nothing matches.
	roots, err := ListThreadRoots(conn, ThreadListOptions{Filter: ThreadFilter{HasSelectors: true}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roots) != 0 {
		t.Fatalf("expected no roots, got %v", postIDs(roots))
	}
}

func TestListThreadRootsMentionSelectorCoversReplies(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%t0", Author: "@a", Text: "thread", Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%r0", Author: "@b", Text: "cc bob", Seq: 1, RootKey: strPtr("%t0")})
	insertTestPost(t, conn, types.Post{ID: "%t1", Author: "@c", Text: "quiet", Seq: 2})
	if err := InsertLink(conn, "%r0", "@bob"); err != nil {
		t.Fatalf("link: %v", err)
	}

	roots, err := ListThreadRoots(conn, ThreadListOptions{Filter: ThreadFilter{
		HasSelectors: true,
		Mentions:     []string{"@bob"},
	}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"%t0"}, postIDs(roots)); diff != "" {
		t.Fatalf("mention selector mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadRootsPrivacyAppliesOnTop(t *testing.T) {
	conn := openTestDB(t)
	requireSchema(t, conn)

	insertTestPost(t, conn, types.Post{ID: "%t0", Author: "@a", Text: "open", Seq: 0})
	insertTestPost(t, conn, types.Post{ID: "%t1", Author: "@a", Text: "sealed", Seq: 1, Private: true})

	roots, err := ListThreadRoots(conn, ThreadListOptions{Filter: ThreadFilter{
		Privacy:      types.PrivacyPrivate,
		HasSelectors: true,
		RootAuthors:  []string{"@a"},
	}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"%t1"}, postIDs(roots)); diff != "" {
		t.Fatalf("privacy mismatch (-want +got):\n%s", diff)
	}
}
