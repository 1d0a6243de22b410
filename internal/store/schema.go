package store

// Schema v1 - the seven catalog tables. Surrogate ids are assigned by
// the application (dense on bulk import, max+1 incrementally), never by
// the engine, so the columns are plain integer primary keys. The DDL
// sticks to the type names both SQLite and PostgreSQL accept.
//
// Foreign keys are declared so the engine rejects anything the
// pre-checks in the catalog package missed; the constraints are the
// backstop, not the primary integrity mechanism.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Dimension tables. Names are unique case-insensitively; that invariant
-- is owned by the catalog package, the index here backs it up.
CREATE TABLE IF NOT EXISTS genres (
  genre_id INTEGER PRIMARY KEY,
  genre_nm TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS artists (
  artist_id INTEGER PRIMARY KEY,
  artist_nm TEXT NOT NULL
);

-- Album identity is (artist_id, album_nm): the same album name recurs
-- under different artists.
CREATE TABLE IF NOT EXISTS albums (
  album_id INTEGER PRIMARY KEY,
  artist_id INTEGER NOT NULL REFERENCES artists (artist_id),
  album_nm TEXT NOT NULL
);

-- Central fact table. album_id and genre_id are nullable.
CREATE TABLE IF NOT EXISTS songs (
  song_id INTEGER PRIMARY KEY,
  song_nm TEXT NOT NULL,
  artist_id INTEGER NOT NULL REFERENCES artists (artist_id),
  album_id INTEGER REFERENCES albums (album_id),
  genre_id INTEGER REFERENCES genres (genre_id)
);

-- File attributes, one row per song. file_nm is the join key against
-- the on-disk file set and must be unique across the collection.
CREATE TABLE IF NOT EXISTS song_files (
  song_id INTEGER PRIMARY KEY REFERENCES songs (song_id),
  file_nm TEXT UNIQUE NOT NULL,
  bitrate INTEGER,
  beats_per_min REAL,
  duration INTEGER,
  file_size BIGINT
);

CREATE TABLE IF NOT EXISTS playlists (
  playlist_id INTEGER PRIMARY KEY,
  playlist_nm TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS playlist_songs (
  playlist_id INTEGER NOT NULL REFERENCES playlists (playlist_id),
  song_id INTEGER NOT NULL REFERENCES songs (song_id),
  playlist_order INTEGER,
  PRIMARY KEY (playlist_id, song_id)
);
`

// Schema v2 - indexes for the dimension-resolution lookups and the
// playlist joins
const schemaV2 = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_genres_nm ON genres (LOWER(genre_nm));
CREATE UNIQUE INDEX IF NOT EXISTS idx_artists_nm ON artists (LOWER(artist_nm));
CREATE UNIQUE INDEX IF NOT EXISTS idx_albums_artist_nm ON albums (artist_id, LOWER(album_nm));
CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs (artist_id);
CREATE INDEX IF NOT EXISTS idx_playlist_songs_song ON playlist_songs (song_id);
`
