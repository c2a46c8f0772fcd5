package query

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/types"
)

// cursor is an opaque resume position. It carries the ordering it was
// minted under so a cursor from one ordering cannot silently resume a
// differently-ordered connection.
type cursor struct {
	Order types.OrderBy `json:"o"`
	Key   int64         `json:"k"`
	Seq   int64         `json:"s"`
	ID    string        `json:"id"`
}

func encodeCursor(order types.OrderBy, post types.Post) string {
	c := cursor{Order: order, Key: sortKey(order, post), Seq: post.Seq, ID: post.ID}
	raw, _ := json.Marshal(c)
	return base64.StdEncoding.EncodeToString(raw)
}

func decodeCursor(raw string, order types.OrderBy) (*db.KeysetBound, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("cursor is not valid base64: %w", types.ErrValidation)
	}
	var c cursor
	if err := json.Unmarshal(decoded, &c); err != nil {
		return nil, fmt.Errorf("cursor payload is malformed: %w", types.ErrValidation)
	}
	if c.Order != order {
		return nil, fmt.Errorf("cursor was minted under order %q, not %q: %w", c.Order, order, types.ErrValidation)
	}
	return &db.KeysetBound{Key: c.Key, Seq: c.Seq}, nil
}

// sortKey is the primary sort key of a post under an ordering. The
// received sequence always breaks ties, so (key, seq) is total.
func sortKey(order types.OrderBy, post types.Post) int64 {
	if order == types.OrderAsserted {
		return post.AssertedAt
	}
	return post.Seq
}
