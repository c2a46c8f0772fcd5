package core

import "strings"

// Link sigils. Authors are public keys prefixed with @, posts are
// content hashes prefixed with %, channels are bare names prefixed
// with #.
const (
	AuthorSigil  = "@"
	PostSigil    = "%"
	ChannelSigil = "#"
)

// IsAuthorRef reports whether link refers to an author id.
func IsAuthorRef(link string) bool {
	return strings.HasPrefix(link, AuthorSigil) && len(link) > 1
}

// IsPostRef reports whether link refers to a post id.
func IsPostRef(link string) bool {
	return strings.HasPrefix(link, PostSigil) && len(link) > 1
}

// IsChannelRef reports whether link refers to a channel.
func IsChannelRef(link string) bool {
	return strings.HasPrefix(link, ChannelSigil) && len(link) > 1
}

// NormalizeChannel strips the sigil and lowercases a channel ref so
// #Go and #go index identically.
func NormalizeChannel(link string) string {
	return strings.ToLower(strings.TrimPrefix(link, ChannelSigil))
}
