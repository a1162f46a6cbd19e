package storage

const schemaSQL = `
CREATE TABLE IF NOT EXISTS triples (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    s_kind INTEGER NOT NULL,
    s TEXT NOT NULL,
    p TEXT NOT NULL,
    o_kind INTEGER NOT NULL,
    o TEXT NOT NULL,
    o_datatype TEXT NOT NULL DEFAULT '',
    o_lang TEXT NOT NULL DEFAULT '',
    UNIQUE (s_kind, s, p, o_kind, o, o_datatype, o_lang)
);

CREATE INDEX IF NOT EXISTS idx_triples_s ON triples(s);
CREATE INDEX IF NOT EXISTS idx_triples_p_o ON triples(p, o);
CREATE INDEX IF NOT EXISTS idx_triples_o ON triples(o);
`
