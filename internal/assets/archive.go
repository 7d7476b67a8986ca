package assets

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zlib"
	_ "modernc.org/sqlite"
)

// Unix st_mode file type bits as stored in the sqlar mode column.
const (
	modeTypeMask = 0o170000
	modeRegular  = 0o100000
)

// Archive is a SQLite Archive (sqlar) file holding an asset bundle, the
// same format written by `sqlite3 -A`.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens an existing archive.
func OpenArchive(ctx context.Context, path string) (*Archive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("archive missing: %w", err)
	}
	return openArchive(ctx, path)
}

// CreateArchive opens path for writing, creating the file, its parent
// directories and the sqlar table as needed.
func CreateArchive(ctx context.Context, path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	a, err := openArchive(ctx, path)
	if err != nil {
		return nil, err
	}
	query := `
		CREATE TABLE IF NOT EXISTS sqlar (
			name TEXT PRIMARY KEY,
			mode INT,
			mtime INT,
			sz INT,
			data BLOB
		)`
	if _, err := a.db.ExecContext(ctx, query); err != nil {
		a.db.Close()
		return nil, fmt.Errorf("failed to create sqlar table: %w", err)
	}
	return a, nil
}

func openArchive(ctx context.Context, path string) (*Archive, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping archive: %w", err)
	}
	return &Archive{db: sqlDB}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Add stores one file. The data is zlib-compressed when that makes it
// smaller, as sqlar readers expect.
func (a *Archive) Add(ctx context.Context, name string, perm fs.FileMode, mtime time.Time, data []byte) error {
	return addFile(ctx, a.db, name, perm, mtime, data)
}

func addFile(ctx context.Context, db execer, name string, perm fs.FileMode, mtime time.Time, data []byte) error {
	if !ValidPath(name) {
		return fmt.Errorf("invalid archive name %q", name)
	}
	blob, err := deflate(data)
	if err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}
	if len(blob) >= len(data) {
		blob = data
	}
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sqlar (name, mode, mtime, sz, data) VALUES (?, ?, ?, ?, ?)`,
		name, int64(modeRegular|perm.Perm()), mtime.Unix(), int64(len(data)), blob)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", name, err)
	}
	return nil
}

// AddFS stores every regular file of fsys in a single transaction and
// returns how many were written.
func (a *Archive) AddFS(ctx context.Context, fsys fs.FS) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count := 0
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := addFile(ctx, tx, p, info.Mode(), info.ModTime(), data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive: %w", err)
	}
	return count, nil
}

// Store loads every regular file of the archive into a Store.
func (a *Archive) Store(ctx context.Context) (*Store, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT name, mode, sz, data FROM sqlar ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sqlar: %w", err)
	}
	defer rows.Close()

	files := make(map[string][]byte)
	for rows.Next() {
		var (
			name string
			mode sql.NullInt64
			size int64
			blob []byte
		)
		if err := rows.Scan(&name, &mode, &size, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan sqlar row: %w", err)
		}
		if mode.Valid && mode.Int64 != 0 && mode.Int64&modeTypeMask != modeRegular {
			continue
		}
		data, err := unpack(blob, size)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		files[name] = data
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sqlar rows: %w", err)
	}
	return NewStore(files)
}

// LoadArchive opens path, reads it into a Store and closes it again.
func LoadArchive(ctx context.Context, path string) (*Store, error) {
	a, err := OpenArchive(ctx, path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Store(ctx)
}

func unpack(blob []byte, size int64) ([]byte, error) {
	switch {
	case int64(len(blob)) == size:
		if blob == nil {
			return []byte{}, nil
		}
		return blob, nil
	case int64(len(blob)) > size:
		return nil, fmt.Errorf("stored %d bytes for a %d byte file", len(blob), size)
	}
	zr, err := zlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(io.LimitReader(zr, size+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if int64(len(data)) != size {
		return nil, errors.New("inflated size does not match sz column")
	}
	return data, nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
