package db

import (
	"context"
	"errors"
)

// Sentinel errors returned by drivers.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Commands issued by drivers. They double as Error.Cmd.
const (
	CmdCreateIndex = "FT.CREATE"
	CmdDropIndex   = "FT.DROPINDEX"
	CmdIndexInfo   = "FT.INFO"
	CmdSearch      = "FT.SEARCH"
	CmdHSet        = "HSET"
	CmdGet         = "GET"
	CmdSet         = "SET"
)

// Error is a command that failed against Target, an index or key name.
type Error struct {
	Cmd    string
	Target string
	Err    error
}

// Wrap attaches cmd and target to err. A nil err stays nil.
func Wrap(cmd, target string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Cmd: cmd, Target: target, Err: err}
}

func (e *Error) Error() string {
	if e.Target == "" {
		return e.Cmd + ": " + e.Err.Error()
	}
	return e.Cmd + " " + e.Target + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the command gave up on its deadline.
func (e *Error) Timeout() bool { return errors.Is(e.Err, context.DeadlineExceeded) }
