package history

// Log is an in-memory LIFO stack of entries. It is never persisted.
type Log struct {
	entries []Entry
}

func NewLog() *Log { return &Log{} }

// Push appends an entry.
func (l *Log) Push(e Entry) {
	l.entries = append(l.entries, e)
}

// Pop removes and returns the most recent entry.
func (l *Log) Pop() (Entry, bool) {
	if len(l.entries) == 0 {
		return nil, false
	}
	last := len(l.entries) - 1
	e := l.entries[last]
	l.entries[last] = nil
	l.entries = l.entries[:last]
	return e, true
}

func (l *Log) Len() int { return len(l.entries) }

// Clear drops all entries.
func (l *Log) Clear() { l.entries = nil }
