package chunk

import (
	"regexp"
	"strings"
)

var (
	entryTimestampRe = regexp.MustCompile(`^\[?\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}|^\[?\d{2}:\d{2}:\d{2}`)
	entryLevelRe     = regexp.MustCompile(`^\s*\[?(FATAL|CRITICAL|ERROR|WARNING|WARN|INFO|DEBUG|TRACE)\b`)
	entryBracketRe   = regexp.MustCompile(`^\[[^\]]+\]`)

	timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?|\d{2}:\d{2}:\d{2}(?:\.\d+)?`)
	levelRe     = regexp.MustCompile(`\b(FATAL|CRITICAL|ERROR|WARNING|WARN|INFO|DEBUG|TRACE)\b`)
)

// Log splits log content line by line. A line matching a timestamp, log
// level, or bracket tag starts a new logical entry. A chunk flushes when
// appending the next line would exceed the max size, or when a new entry
// begins, in both cases only once the current chunk has reached the min
// size. Each chunk records the most recently seen timestamp and level.
func Log(content string, opts Options) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	opts = opts.withDefaults()

	var chunks []Chunk
	curStart := 0
	var lastTimestamp, lastLevel string

	flush := func(end int) {
		if end > curStart {
			chunks = append(chunks, Chunk{
				Content:     content[curStart:end],
				StartOffset: curStart,
				EndOffset:   end,
				Metadata:    Metadata{Timestamp: lastTimestamp, LogLevel: lastLevel},
			})
		}
		curStart = end
	}

	pos := 0
	for pos < len(content) {
		nl := strings.IndexByte(content[pos:], '\n')
		lineEnd := len(content)
		if nl >= 0 {
			lineEnd = pos + nl + 1
		}
		line := strings.TrimRight(content[pos:lineEnd], "\n")

		curLen := pos - curStart
		if curLen >= opts.MinChunkSize {
			if curLen+(lineEnd-pos) > opts.MaxChunkSize || isEntryStart(line) {
				flush(pos)
			}
		}

		if ts := timestampRe.FindString(line); ts != "" {
			lastTimestamp = ts
		}
		if lv := levelRe.FindString(line); lv != "" {
			lastLevel = lv
		}

		pos = lineEnd
	}
	flush(len(content))

	return reindex(chunks)
}

func isEntryStart(line string) bool {
	return entryTimestampRe.MatchString(line) ||
		entryLevelRe.MatchString(line) ||
		entryBracketRe.MatchString(line)
}
