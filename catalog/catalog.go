/*
Package catalog keeps a small sqlite database of the movies that have been
converted, keyed by output path, so that a library of movies destined for a
device can be listed and traced back to its sources.
*/
package catalog

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3" // register driver
)

// Entry records one conversion.
type Entry struct {
	ID       int64
	Source   string
	SHA1     string // empty for directories of images
	Output   string
	Width    int
	Height   int
	FPSMilli uint32
	Frames   int
	Inverted bool
	Raw      bool
	Created  time.Time
}

// DB is the catalog database.
type DB struct {
	db *sql.DB
}

// Open opens, creating if necessary, the catalog in file.
func Open(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, source TEXT NOT NULL, sha1 TEXT NOT NULL, output TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, fps_milli INTEGER NOT NULL, frames INTEGER NOT NULL, inverted INTEGER NOT NULL, raw INTEGER NOT NULL, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.db.Close()
}

// Add records e, replacing any earlier conversion to the same output, and
// returns its ID.
func (db *DB) Add(e Entry) (int64, error) {
	result, err := db.db.Exec("INSERT OR REPLACE INTO conversion (source, sha1, output, width, height, fps_milli, frames, inverted, raw, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.Source, e.SHA1, e.Output, e.Width, e.Height, e.FPSMilli, e.Frames, e.Inverted, e.Raw, e.Created.Unix())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const columns = "id, source, sha1, output, width, height, fps_milli, frames, inverted, raw, created"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var created int64
	if err := s.Scan(&e.ID, &e.Source, &e.SHA1, &e.Output, &e.Width, &e.Height, &e.FPSMilli, &e.Frames, &e.Inverted, &e.Raw, &created); err != nil {
		return nil, err
	}
	e.Created = time.Unix(created, 0)
	return &e, nil
}

// Find returns the conversion that produced output, or nil if there is none.
func (db *DB) Find(output string) (*Entry, error) {
	e, err := scanEntry(db.db.QueryRow("SELECT "+columns+" FROM conversion WHERE output = ?", output))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}

// List returns every conversion, oldest first.
func (db *DB) List() ([]Entry, error) {
	rows, err := db.db.Query("SELECT " + columns + " FROM conversion ORDER BY created, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// HashFile returns the SHA-1 of the contents of file as upper case hex.
func HashFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}
