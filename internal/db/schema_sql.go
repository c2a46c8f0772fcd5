package db

const schemaSQL = `
-- Process-wide state: log cursor, schema version
CREATE TABLE IF NOT EXISTS weft_state (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

-- Bookkeeping row for every log entry, known or not
CREATE TABLE IF NOT EXISTS weft_messages (
  id TEXT PRIMARY KEY,                 -- content hash, e.g. "%abc...=.sha256"
  seq INTEGER NOT NULL UNIQUE,         -- log offset (received order)
  author TEXT,                         -- null for entries that failed to decode
  type TEXT NOT NULL,                  -- content type tag, 'invalid' for decode failures
  asserted_at INTEGER,                 -- author-claimed timestamp (ms, untrusted)
  received_at INTEGER,                 -- local insert timestamp (ms)
  private INTEGER NOT NULL DEFAULT 0,
  raw TEXT NOT NULL                    -- full envelope for message(id) debugging
);

CREATE INDEX IF NOT EXISTS idx_weft_messages_seq ON weft_messages(seq);
CREATE INDEX IF NOT EXISTS idx_weft_messages_type ON weft_messages(type);

-- Author profiles, last-write-wins by received order
CREATE TABLE IF NOT EXISTS weft_authors (
  id TEXT PRIMARY KEY,                 -- public key string, e.g. "@abc...=.ed25519"
  name TEXT,
  description TEXT,
  image_link TEXT,
  updated_seq INTEGER                  -- seq of the last applied profile write
);

-- Contact graph: one row per (from, to) pair, overwritten never appended
CREATE TABLE IF NOT EXISTS weft_contacts (
  from_author TEXT NOT NULL,
  to_author TEXT NOT NULL,
  public_state TEXT NOT NULL DEFAULT 'neutral',
  private_state TEXT,                  -- null = never privately asserted
  updated_seq INTEGER NOT NULL,
  PRIMARY KEY (from_author, to_author)
);

CREATE INDEX IF NOT EXISTS idx_weft_contacts_to ON weft_contacts(to_author);

-- Posts; a row with no root_key is itself a thread root
CREATE TABLE IF NOT EXISTS weft_posts (
  id TEXT PRIMARY KEY,
  author TEXT NOT NULL,
  text TEXT NOT NULL,
  asserted_at INTEGER NOT NULL,
  received_at INTEGER NOT NULL,
  seq INTEGER NOT NULL,
  root_key TEXT,
  fork_key TEXT,
  private INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_weft_posts_root ON weft_posts(root_key);
CREATE INDEX IF NOT EXISTS idx_weft_posts_fork ON weft_posts(fork_key);
CREATE INDEX IF NOT EXISTS idx_weft_posts_author ON weft_posts(author);
CREATE INDEX IF NOT EXISTS idx_weft_posts_seq ON weft_posts(seq);
CREATE INDEX IF NOT EXISTS idx_weft_posts_asserted ON weft_posts(asserted_at);

-- Payload links (mentions of authors, posts, channels); relationships
-- are id-to-id lookups, never stored back-pointers
CREATE TABLE IF NOT EXISTS weft_links (
  from_post TEXT NOT NULL,
  to_id TEXT NOT NULL,                 -- '@author', '%post' or '#channel'
  PRIMARY KEY (from_post, to_id)
);

CREATE INDEX IF NOT EXISTS idx_weft_links_to ON weft_links(to_id);

-- Live vote state: at most one row per (author, post)
CREATE TABLE IF NOT EXISTS weft_likes (
  author TEXT NOT NULL,
  post_id TEXT NOT NULL,
  value INTEGER NOT NULL,
  updated_seq INTEGER NOT NULL,
  PRIMARY KEY (author, post_id)
);

CREATE INDEX IF NOT EXISTS idx_weft_likes_post ON weft_likes(post_id);
`
