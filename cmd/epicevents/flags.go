package main

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/services"
)

// badValue matches the flag package error for a value its flag could not
// parse. Unknown flags and missing arguments stay usage errors.
var badValue = regexp.MustCompile(`^invalid (?:boolean )?value ".*" for (?:flag )?-([\w-]+): `)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags parses args and returns the names of the flags given
// explicitly. Positional arguments are rejected. A malformed value is
// InvalidInput naming the flag.
func parseFlags(fs *flag.FlagSet, args []string, required ...string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		if m := badValue.FindStringSubmatch(err.Error()); m != nil {
			return nil, apperr.InvalidInput(fs.Name(), err.Error(), map[string]string{m[1]: "invalid"})
		}
		return nil, usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return nil, usagef("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range required {
		if !set[name] {
			return nil, usagef("%s: -%s is required", fs.Name(), name)
		}
	}
	return set, nil
}

// opt carries v only when the flag was given, so untouched fields keep
// their stored value on update.
func opt[T any](set map[string]bool, name string, v T) services.Optional[T] {
	if set[name] {
		return services.Some(v)
	}
	return services.Optional[T]{}
}

func ptrIf[T any](set map[string]bool, name string, v T) *T {
	if !set[name] {
		return nil
	}
	return &v
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 or a local "YYYY-MM-DD[ HH:MM]" value.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, want YYYY-MM-DD HH:MM", s)
}

// timeValue is a flag.Value holding a parsed time.
type timeValue struct{ t time.Time }

func (v *timeValue) String() string {
	if v == nil || v.t.IsZero() {
		return ""
	}
	return v.t.Format("2006-01-02 15:04")
}

func (v *timeValue) Set(s string) error {
	t, err := parseTime(s)
	if err != nil {
		return err
	}
	v.t = t
	return nil
}

func timeFlag(fs *flag.FlagSet, name, usage string) *timeValue {
	v := &timeValue{}
	fs.Var(v, name, usage)
	return v
}
