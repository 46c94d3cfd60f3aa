// Package cardreader decodes magnetic-stripe swipes typed by a USB card
// reader acting as a keyboard. Each connection owns its own Reader.
package cardreader

import "unicode/utf8"

const (
	StartSentinel = ";"
	EndSentinel   = "?"

	// UniversityIDLength is the number of leading characters of the track that form the ID.
	UniversityIDLength = 9
)

type State int

const (
	Idle State = iota
	Reading
	Done
)

func (s State) String() string {
	switch s {
	case Reading:
		return "READING"
	case Done:
		return "DONE"
	}
	return "IDLE"
}

// Reader is a small IDLE -> READING -> DONE state machine. It is not safe
// for concurrent use; one Reader belongs to one connection.
type Reader struct {
	state  State
	buffer []string
	last   string
}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) State() State { return r.state }

// Last returns the most recently completed university ID.
func (r *Reader) Last() string { return r.last }

// Feed consumes one key. It returns the decoded university ID and true when
// the key completes a swipe. Multi-character key names (Shift, Enter) are
// ignored while reading.
func (r *Reader) Feed(key string) (string, bool) {
	switch key {
	case StartSentinel:
		r.state = Reading
		r.buffer = r.buffer[:0]
		return "", false
	case EndSentinel:
		if r.state != Reading {
			return "", false
		}
		r.state = Done
		r.last = r.universityID()
		r.buffer = r.buffer[:0]
		return r.last, true
	}

	if r.state == Reading && utf8.RuneCountInString(key) == 1 {
		r.buffer = append(r.buffer, key)
	}
	return "", false
}

// Reset drops any partial swipe.
func (r *Reader) Reset() {
	r.state = Idle
	r.buffer = r.buffer[:0]
}

func (r *Reader) universityID() string {
	n := len(r.buffer)
	if n > UniversityIDLength {
		n = UniversityIDLength
	}
	id := ""
	for _, k := range r.buffer[:n] {
		id += k
	}
	return id
}
