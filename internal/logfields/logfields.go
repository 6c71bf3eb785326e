package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyTask       = "task"
	KeyTarget     = "target"
	KeyBuildType  = "build_type"
	KeyStep       = "step"
	KeyResult     = "result"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFiles      = "files"
	KeyBytes      = "bytes"
	KeyOp         = "op"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func Target(name string) slog.Attr    { return slog.String(KeyTarget, name) }
func BuildType(name string) slog.Attr { return slog.String(KeyBuildType, name) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Result(r string) slog.Attr       { return slog.String(KeyResult, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func Bytes(n int64) slog.Attr         { return slog.Int64(KeyBytes, n) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
