package db

import "errors"

// ErrUnavailable signals a store that did not become ready in time.
var ErrUnavailable = errors.New("db: unavailable")

// Op constants map to Valkey/Redis command names for error context.
const (
	OpPing   = "PING"
	OpRPush  = "RPUSH"
	OpLRange = "LRANGE"
	OpExpire = "EXPIRE"
	OpDel    = "DEL"
	OpQuery  = "QUERY"
	OpUpsert = "UPSERT"
	OpDelete = "DELETE"
	OpRead   = "READ"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
