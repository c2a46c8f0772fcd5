package query

import (
	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/types"
)

// AuthorsSearch matches authors by name, and by description when
// includeDescriptions is set. An author is dropped from the result
// when any id in excludeIfBlockedBy publicly blocks them.
func (r *Resolver) AuthorsSearch(queryText string, includeDescriptions bool, excludeIfBlockedBy []string) ([]types.Author, error) {
	authors, err := db.SearchAuthors(r.conn, queryText, includeDescriptions)
	if err != nil {
		return nil, err
	}
	if len(excludeIfBlockedBy) == 0 {
		return authors, nil
	}

	kept := authors[:0:0]
	for _, author := range authors {
		blocked := false
		for _, blocker := range excludeIfBlockedBy {
			blocked, err = db.Blocks(r.conn, blocker, author.ID)
			if err != nil {
				return nil, err
			}
			if blocked {
				break
			}
		}
		if !blocked {
			kept = append(kept, author)
		}
	}
	return kept, nil
}
