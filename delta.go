package plate

import (
	"strconv"
	"unicode/utf8"
)

const (
	MinDelta Delta = 1
	MaxDelta Delta = 99
)

// Delta is the amount a single submit asks the counter to grow by.
type Delta uint32

func (d Delta) Valid() bool {
	return d >= MinDelta && d <= MaxDelta
}

// ParseDelta reads a submit body. The body must be the bare base-10 text of
// an integer in [MinDelta, MaxDelta]; anything else reports false and the
// caller leaves the counter untouched.
func ParseDelta(body []byte) (Delta, bool) {
	if !utf8.Valid(body) {
		return 0, false
	}

	// ParseUint rejects signs and whitespace
	value, err := strconv.ParseUint(string(body), 10, 32)
	if err != nil {
		return 0, false
	}

	delta := Delta(value)
	if !delta.Valid() {
		return 0, false
	}

	return delta, true
}
