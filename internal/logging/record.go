package logging

import (
	"strings"
	"time"
)

// TimestampLayout is the record timestamp: ISO 8601, UTC, millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const fileExt = ".log"

var (
	lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`)
	nameUnsafe = strings.NewReplacer(":", "-", ".", "-")
)

// FormatRecord renders one log line, including the trailing newline:
//
//	[2026-10-19T08:30:00.123Z] [INFO] [backend] message
//
// Line breaks inside message and source are escaped so a record always
// occupies exactly one line.
func FormatRecord(t time.Time, level Level, source, message string) string {
	var b strings.Builder
	b.Grow(len(TimestampLayout) + len(source) + len(message) + 16)
	b.WriteByte('[')
	b.WriteString(t.UTC().Format(TimestampLayout))
	b.WriteString("] [")
	b.WriteString(level.String())
	b.WriteString("] [")
	b.WriteString(lineBreaks.Replace(source))
	b.WriteString("] ")
	b.WriteString(lineBreaks.Replace(message))
	b.WriteByte('\n')
	return b.String()
}

// FileName returns the log file name for a file started at t, e.g.
// backend-2026-10-19T08-30-00-123Z.log.
func FileName(prefix string, t time.Time) string {
	return prefix + "-" + nameUnsafe.Replace(t.UTC().Format(TimestampLayout)) + fileExt
}

// IsLogFile reports whether name looks like a file produced with prefix.
func IsLogFile(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+"-") && strings.HasSuffix(name, fileExt)
}
