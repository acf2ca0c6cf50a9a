package remote

import (
	"github.com/dunglas/httpsfv"
)

// ParseRateLimitReset extracts the reset window in seconds from a
// RateLimit response header (RFC 8941 Dictionary, e.g.
// `limit=100, remaining=0, reset=30`). Returns ok=false when the header
// is absent, malformed, or has no reset member.
func ParseRateLimitReset(header string) (int64, bool) {
	if header == "" {
		return 0, false
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return 0, false
	}

	member, ok := dict.Get("reset")
	if !ok {
		return 0, false
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return 0, false
	}

	reset, ok := item.Value.(int64)
	if !ok || reset < 0 {
		return 0, false
	}
	return reset, true
}
