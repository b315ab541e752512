// This file is part of Fused.
//
// Fused is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Fused is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Fused.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// TimeSource provides the timestamp for new log entries.
type TimeSource interface {
	Timestamp() string
}

// Entry represents a single line in the log.
type Entry struct {
	Timestamp string
	Tag       string
	Detail    string

	// number of additional times the entry has been logged
	Repeated int
}

func (e Entry) String() string {
	var s strings.Builder
	if e.Timestamp != "" {
		fmt.Fprintf(&s, "[%s] ", e.Timestamp)
	}
	fmt.Fprintf(&s, "%s: %s", e.Tag, e.Detail)
	if e.Repeated > 0 {
		fmt.Fprintf(&s, " (repeat x%d)", e.Repeated+1)
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is a ring of log entries.
type Logger struct {
	crit sync.Mutex

	maxEntries int
	entries    []Entry

	echo        io.Writer
	time        TimeSource
	recentStart int
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger(maxEntries int) *Logger {
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

// SetTimeSource attaches a source of timestamps. A nil value removes any
// existing time source.
func (l *Logger) SetTimeSource(t TimeSource) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.time = t
}

// SetEcho prints new entries to the writer as they are logged. If writeRecent
// is true then any entries that have been logged since the previous call to
// WriteRecent() are written first.
func (l *Logger) SetEcho(output io.Writer, writeRecent bool) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.echo = output
	if writeRecent && output != nil {
		l.writeRecent(output)
	}
}

func detailString(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Log adds an entry to the log if the permission allows it. The detail
// argument can be a string, an error, a fmt.Stringer or any other value that
// can be formatted with the %v verb.
func (l *Logger) Log(perm Permission, tag string, detail any) {
	if perm != Allow && !perm.AllowLogging() {
		return
	}
	l.log(tag, detailString(detail))
}

// Logf adds a formatted entry to the log if the permission allows it.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...any) {
	if perm != Allow && !perm.AllowLogging() {
		return
	}
	l.log(tag, fmt.Sprintf(format, args...))
}

func (l *Logger) log(tag, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var ts string
	if l.time != nil {
		ts = l.time.Timestamp()
	}

	var e *Entry
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e = &l.entries[n-1]
		e.Repeated++
		e.Timestamp = ts
	} else {
		l.entries = append(l.entries, Entry{Timestamp: ts, Tag: tag, Detail: detail})
		if len(l.entries) > l.maxEntries {
			drop := len(l.entries) - l.maxEntries
			l.entries = l.entries[drop:]
			l.recentStart = max(0, l.recentStart-drop)
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		io.WriteString(l.echo, e.String())
		l.recentStart = len(l.entries)
	}
}

// Clear all entries from the log.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.entries = l.entries[:0]
	l.recentStart = 0
}

// Write the contents of the log to the writer.
func (l *Logger) Write(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	for _, e := range l.entries {
		io.WriteString(output, e.String())
	}
}

// WriteRecent writes the entries logged since the previous call to
// WriteRecent().
func (l *Logger) WriteRecent(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.writeRecent(output)
}

func (l *Logger) writeRecent(output io.Writer) {
	for _, e := range l.entries[l.recentStart:] {
		io.WriteString(output, e.String())
	}
	l.recentStart = len(l.entries)
}

// Tail writes the last n entries to the writer.
func (l *Logger) Tail(output io.Writer, number int) {
	l.crit.Lock()
	defer l.crit.Unlock()
	number = max(0, min(number, len(l.entries)))
	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// Copy returns a copy of the log entries.
func (l *Logger) Copy() []Entry {
	l.crit.Lock()
	defer l.crit.Unlock()
	c := make([]Entry, len(l.entries))
	copy(c, l.entries)
	return c
}
