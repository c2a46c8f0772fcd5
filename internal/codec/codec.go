// Package codec maps raw offset-log entries to typed messages. It is a
// leaf: nothing here touches the indexes or the log.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/weft/internal/core"
	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/types"
)

// DecodeError reports a log entry that could not be decoded. The
// indexer records these and moves on; they never stall a chunk.
type DecodeError struct {
	Seq int64
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode entry %d: %v", e.Seq, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// envelope is the wire shape of one log entry. The content arrives
// already decrypted; Private records whether it was sealed on the
// wire.
type envelope struct {
	Key       string        `json:"key,omitempty"`
	Value     envelopeValue `json:"value"`
	Timestamp int64         `json:"timestamp"`
	Private   bool          `json:"private,omitempty"`
}

type envelopeValue struct {
	Author    string          `json:"author"`
	Sequence  int64           `json:"sequence,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
}

// Decode maps a raw entry to a typed Message. The message id is the
// envelope key when present, otherwise a content hash of the envelope
// value. Unknown content types decode fine; only structural problems
// return a *DecodeError.
func Decode(entry flume.Entry) (types.Message, error) {
	var env envelope
	if err := json.Unmarshal(entry.Raw, &env); err != nil {
		return types.Message{}, &DecodeError{Seq: entry.Seq, Err: err}
	}
	if env.Value.Author == "" {
		return types.Message{}, &DecodeError{Seq: entry.Seq, Err: fmt.Errorf("missing author")}
	}
	if len(env.Value.Content) == 0 {
		return types.Message{}, &DecodeError{Seq: entry.Seq, Err: fmt.Errorf("missing content")}
	}

	var tagged struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(env.Value.Content, &tagged); err != nil {
		return types.Message{}, &DecodeError{Seq: entry.Seq, Err: fmt.Errorf("content is not an object: %w", err)}
	}
	if tagged.Type == "" {
		return types.Message{}, &DecodeError{Seq: entry.Seq, Err: fmt.Errorf("content has no type tag")}
	}

	id := env.Key
	if id == "" {
		value, err := json.Marshal(env.Value)
		if err != nil {
			return types.Message{}, &DecodeError{Seq: entry.Seq, Err: err}
		}
		id = core.MessageID(value)
	}

	return types.Message{
		ID:         id,
		Seq:        entry.Seq,
		Author:     env.Value.Author,
		Type:       types.MessageType(tagged.Type),
		AssertedAt: env.Value.Timestamp,
		ReceivedAt: env.Timestamp,
		Private:    env.Private,
		Content:    env.Value.Content,
		Raw:        entry.Raw,
	}, nil
}

// Mention is one payload link in a post.
type Mention struct {
	Link string `json:"link"`
	Name string `json:"name,omitempty"`
}

// PostContent is the payload of a post-type message.
type PostContent struct {
	Text     string    `json:"text"`
	Root     *string   `json:"root,omitempty"`
	Fork     *string   `json:"fork,omitempty"`
	Channel  *string   `json:"channel,omitempty"`
	Mentions []Mention `json:"mentions,omitempty"`
}

// ContactContent is the payload of a contact-type message.
type ContactContent struct {
	Contact   string `json:"contact"`
	Following *bool  `json:"following,omitempty"`
	Blocking  *bool  `json:"blocking,omitempty"`
}

// State maps the payload flags onto a contact state. Blocking wins
// over following when a payload asserts both.
func (c ContactContent) State() types.ContactState {
	switch {
	case c.Blocking != nil && *c.Blocking:
		return types.ContactBlock
	case c.Following != nil && *c.Following:
		return types.ContactFollow
	default:
		return types.ContactNeutral
	}
}

// AboutContent is the payload of an about-type (profile) message.
type AboutContent struct {
	About       string  `json:"about"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// VoteContent is the payload of a vote-type message.
type VoteContent struct {
	Vote struct {
		Link  string `json:"link"`
		Value int    `json:"value"`
	} `json:"vote"`
}

// ParsePost decodes a post payload.
func ParsePost(msg types.Message) (PostContent, error) {
	var content PostContent
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		return PostContent{}, &DecodeError{Seq: msg.Seq, Err: err}
	}
	return content, nil
}

// ParseContact decodes a contact payload.
func ParseContact(msg types.Message) (ContactContent, error) {
	var content ContactContent
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		return ContactContent{}, &DecodeError{Seq: msg.Seq, Err: err}
	}
	if !core.IsAuthorRef(content.Contact) {
		return ContactContent{}, &DecodeError{Seq: msg.Seq, Err: fmt.Errorf("contact target %q is not an author ref", content.Contact)}
	}
	return content, nil
}

// ParseAbout decodes an about payload.
func ParseAbout(msg types.Message) (AboutContent, error) {
	var content AboutContent
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		return AboutContent{}, &DecodeError{Seq: msg.Seq, Err: err}
	}
	if content.About == "" {
		return AboutContent{}, &DecodeError{Seq: msg.Seq, Err: fmt.Errorf("about payload has no target")}
	}
	return content, nil
}

// ParseVote decodes a vote payload.
func ParseVote(msg types.Message) (VoteContent, error) {
	var content VoteContent
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		return VoteContent{}, &DecodeError{Seq: msg.Seq, Err: err}
	}
	if !core.IsPostRef(content.Vote.Link) {
		return VoteContent{}, &DecodeError{Seq: msg.Seq, Err: fmt.Errorf("vote target %q is not a post ref", content.Vote.Link)}
	}
	return content, nil
}
