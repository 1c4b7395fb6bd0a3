package db

import "errors"

// Sentinels shared by every backend.
var (
	ErrKeyNotFound       = errors.New("db: key not found")
	ErrIndexNotFound     = errors.New("db: index not found")
	ErrIndexExists       = errors.New("db: index already exists")
	ErrInvalidDefinition = errors.New("db: invalid index definition")
	ErrInvalidQuery      = errors.New("db: invalid query")
)

// Command names used as Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpUnlink      = "UNLINK"
	OpHSet        = "HSET"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error is a failed command together with the key or index it addressed.
type Error struct {
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Target + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
