package ref

import "strings"

// Flags tune a single resolve.
type Flags uint8

const (
	// SkipCache re-decodes the record even when it is cached, then refreshes
	// the cached copy with the new decode.
	SkipCache Flags = 1 << iota
	// NoCache does not publish the decoded record into the partition.
	NoCache
	// KeepAlive pins the published entry so capacity limits cannot evict it.
	KeepAlive
	// Strict escalates an absent key to errs.ErrMissingKey.
	Strict
	// Trace logs every step of the resolve chain at debug level.
	Trace
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{SkipCache, "skip-cache"},
	{NoCache, "no-cache"},
	{KeepAlive, "keep-alive"},
	{Strict, "strict"},
	{Trace, "trace"},
}

// Has reports whether every bit of flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}

	names := make([]string, 0, len(flagNames))
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}

	return strings.Join(names, "|")
}
