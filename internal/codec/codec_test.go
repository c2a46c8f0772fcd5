package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/types"
)

func entry(seq int64, raw string) flume.Entry {
	return flume.Entry{Seq: seq, Raw: []byte(raw)}
}

func TestDecodeEnvelope(t *testing.T) {
	msg, err := Decode(entry(7, `{
		"key": "%abc.sha256",
		"value": {
			"author": "@alice",
			"timestamp": 1000,
			"content": {"type": "post", "text": "hello"}
		},
		"timestamp": 2000,
		"private": true
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ID != "%abc.sha256" {
		t.Fatalf("unexpected id: %s", msg.ID)
	}
	if msg.Seq != 7 || msg.Author != "@alice" {
		t.Fatalf("unexpected seq/author: %d %s", msg.Seq, msg.Author)
	}
	if msg.Type != types.MessageTypePost {
		t.Fatalf("unexpected type: %s", msg.Type)
	}
	if msg.AssertedAt != 1000 || msg.ReceivedAt != 2000 {
		t.Fatalf("unexpected timestamps: %d %d", msg.AssertedAt, msg.ReceivedAt)
	}
	if !msg.Private {
		t.Fatal("expected private")
	}
}

func TestDecodeDerivesIDFromContent(t *testing.T) {
	raw := `{"value":{"author":"@alice","timestamp":1,"content":{"type":"post","text":"x"}},"timestamp":2}`
	first, err := Decode(entry(0, raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(first.ID, "%") || !strings.HasSuffix(first.ID, ".sha256") {
		t.Fatalf("unexpected derived id: %s", first.ID)
	}

	second, err := Decode(entry(1, raw))
	if err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same content produced different ids: %s vs %s", first.ID, second.ID)
	}
}

func TestDecodeFailures(t *testing.T) {
	cases := map[string]string{
		"not json":       `nope`,
		"missing author": `{"value":{"timestamp":1,"content":{"type":"post"}},"timestamp":2}`,
		"no content":     `{"value":{"author":"@a","timestamp":1},"timestamp":2}`,
		"no type tag":    `{"value":{"author":"@a","timestamp":1,"content":{"text":"x"}},"timestamp":2}`,
		"scalar content": `{"value":{"author":"@a","timestamp":1,"content":"hi"},"timestamp":2}`,
	}
	for name, raw := range cases {
		_, err := Decode(entry(3, raw))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("%s: expected DecodeError, got %T", name, err)
		}
		if decodeErr.Seq != 3 {
			t.Fatalf("%s: expected seq 3, got %d", name, decodeErr.Seq)
		}
	}
}

func TestDecodeKeepsUnknownTypes(t *testing.T) {
	msg, err := Decode(entry(0, `{"value":{"author":"@a","timestamp":1,"content":{"type":"gathering"}},"timestamp":2}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != types.MessageType("gathering") {
		t.Fatalf("unexpected type: %s", msg.Type)
	}
}

func TestContactStateBlockingWins(t *testing.T) {
	yes := true
	cases := []struct {
		content ContactContent
		want    types.ContactState
	}{
		{ContactContent{Following: &yes}, types.ContactFollow},
		{ContactContent{Blocking: &yes}, types.ContactBlock},
		{ContactContent{Following: &yes, Blocking: &yes}, types.ContactBlock},
		{ContactContent{}, types.ContactNeutral},
	}
	for _, tc := range cases {
		if got := tc.content.State(); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestParseContactRejectsNonAuthorTarget(t *testing.T) {
	msg := types.Message{Seq: 1, Content: []byte(`{"type":"contact","contact":"%post.sha256"}`)}
	if _, err := ParseContact(msg); err == nil {
		t.Fatal("expected error for non-author contact target")
	}
}

func TestParseVoteRejectsNonPostTarget(t *testing.T) {
	msg := types.Message{Seq: 1, Content: []byte(`{"type":"vote","vote":{"link":"@alice","value":1}}`)}
	if _, err := ParseVote(msg); err == nil {
		t.Fatal("expected error for non-post vote target")
	}
}

func TestParsePost(t *testing.T) {
	msg := types.Message{Seq: 1, Content: []byte(`{
		"type": "post",
		"text": "hey",
		"root": "%root.sha256",
		"channel": "Go",
		"mentions": [{"link": "@bob", "name": "bob"}]
	}`)}
	content, err := ParsePost(msg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if content.Root == nil || *content.Root != "%root.sha256" {
		t.Fatal("expected root key")
	}
	if content.Channel == nil || *content.Channel != "Go" {
		t.Fatal("expected channel")
	}
	if len(content.Mentions) != 1 || content.Mentions[0].Link != "@bob" {
		t.Fatalf("unexpected mentions: %+v", content.Mentions)
	}
}
