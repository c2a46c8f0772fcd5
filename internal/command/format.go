package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/adamavenir/weft/internal/types"
)

func formatPost(out io.Writer, post types.Post) {
	marker := ""
	if post.Private {
		marker = " [private]"
	}
	fmt.Fprintf(out, "%s %s%s\n", post.ID, post.Author, marker)
	text := truncate(post.Text, 120)
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
}

func formatPageInfo(out io.Writer, info types.PageInfo, total int) {
	fmt.Fprintf(out, "Total: %d\n", total)
	if info.HasNextPage && info.EndCursor != nil {
		fmt.Fprintf(out, "Next: --after %s\n", *info.EndCursor)
	}
	if info.HasPreviousPage && info.StartCursor != nil {
		fmt.Fprintf(out, "Previous: --before %s\n", *info.StartCursor)
	}
}

func formatThread(out io.Writer, thread types.Thread) {
	formatPost(out, thread.Root)
	for _, reply := range thread.Replies {
		marker := ""
		if reply.Private {
			marker = " [private]"
		}
		text := reply.Text
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		}
		text = truncate(text, 80)
		fmt.Fprintf(out, "  ↳ %s %s%s: %s\n", reply.ID, reply.Author, marker, text)
	}
}

// truncate shortens text to at most max runes, never splitting a
// multi-byte rune.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}

func formatAuthor(out io.Writer, author types.Author) {
	name := "(unnamed)"
	if author.Name != nil {
		name = *author.Name
	}
	fmt.Fprintf(out, "%s %s\n", author.ID, name)
	if author.Description != nil {
		fmt.Fprintf(out, "  %s\n", *author.Description)
	}
}
