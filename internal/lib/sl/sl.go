// Package sl holds small helpers for building slog attributes.
package sl

import "log/slog"

// Err returns an "error" attribute carrying err's message. A nil error
// yields an empty value instead of panicking.
//
//	log.Error("commit failed", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("")}
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Op returns the attribute used to tag log lines with the operation name.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
