package chunk

import "strings"

type span struct {
	start, end int
}

// Text splits generic prose content at paragraph boundaries. Paragraphs
// that exceed the max size are windowed in place, preserving global
// offsets. A trailing chunk shorter than min is appended to the previous
// chunk. Content with no paragraph boundaries falls back to line splitting,
// then to the character window.
func Text(content string, opts Options) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	opts = opts.withDefaults()

	paras := paragraphSpans(content)
	if len(paras) <= 1 {
		if len(content) <= opts.MaxChunkSize {
			return reindex([]Chunk{{Content: content, StartOffset: 0, EndOffset: len(content)}})
		}
		if strings.Contains(content, "\n") {
			return reindex(mergeShortTail(lineSplit(content, 0, opts), opts.MinChunkSize))
		}
		return reindex(window(content, 0, opts))
	}

	var chunks []Chunk
	cur := span{-1, -1}
	flush := func() {
		if cur.start >= 0 {
			chunks = append(chunks, Chunk{
				Content:     content[cur.start:cur.end],
				StartOffset: cur.start,
				EndOffset:   cur.end,
			})
			cur = span{-1, -1}
		}
	}

	for _, p := range paras {
		if p.end-p.start > opts.MaxChunkSize {
			flush()
			chunks = append(chunks, window(content[p.start:p.end], p.start, opts)...)
			continue
		}
		if cur.start < 0 {
			cur = p
			continue
		}
		if p.end-cur.start > opts.MaxChunkSize {
			flush()
			cur = p
			continue
		}
		cur.end = p.end
	}
	flush()

	return reindex(mergeShortTail(chunks, opts.MinChunkSize))
}

// paragraphSpans returns contiguous spans covering the full content, split
// where one or more blank lines separate text. Blank lines attach to the
// preceding paragraph so no bytes are dropped.
func paragraphSpans(content string) []span {
	var spans []span
	parStart := 0
	pendingBreak := false
	seenText := false

	pos := 0
	for pos <= len(content) {
		nl := strings.IndexByte(content[pos:], '\n')
		lineEnd := len(content)
		if nl >= 0 {
			lineEnd = pos + nl
		}
		line := content[pos:lineEnd]

		if strings.TrimSpace(line) == "" {
			if seenText {
				pendingBreak = true
			}
		} else {
			if pendingBreak {
				spans = append(spans, span{parStart, pos})
				parStart = pos
				pendingBreak = false
			}
			seenText = true
		}

		if nl < 0 {
			break
		}
		pos = lineEnd + 1
	}

	return append(spans, span{parStart, len(content)})
}

// lineSplit accumulates whole lines into chunks of at most max bytes. A
// single line larger than max is windowed in place.
func lineSplit(seg string, base int, opts Options) []Chunk {
	var chunks []Chunk
	curStart := 0
	flush := func(end int) {
		if end > curStart {
			chunks = append(chunks, Chunk{
				Content:     seg[curStart:end],
				StartOffset: base + curStart,
				EndOffset:   base + end,
			})
		}
		curStart = end
	}

	pos := 0
	for pos < len(seg) {
		nl := strings.IndexByte(seg[pos:], '\n')
		lineEnd := len(seg)
		if nl >= 0 {
			lineEnd = pos + nl + 1
		}

		switch {
		case lineEnd-pos > opts.MaxChunkSize:
			flush(pos)
			chunks = append(chunks, window(seg[pos:lineEnd], base+pos, opts)...)
			curStart = lineEnd
		case lineEnd-curStart > opts.MaxChunkSize:
			flush(pos)
		}
		pos = lineEnd
	}
	flush(len(seg))

	return chunks
}

// window is the shared character-window fallback. The window end snaps to
// the last space when that still leaves more than min bytes in the chunk.
// Advancement is forced to a full window if overlap would stall it.
func window(seg string, base int, opts Options) []Chunk {
	var chunks []Chunk
	start := 0
	for start < len(seg) {
		end := start + opts.MaxChunkSize
		if end >= len(seg) {
			end = len(seg)
		} else if i := strings.LastIndexByte(seg[start:end], ' '); i > opts.MinChunkSize {
			end = start + i
		}

		chunks = append(chunks, Chunk{
			Content:     seg[start:end],
			StartOffset: base + start,
			EndOffset:   base + end,
		})
		if end == len(seg) {
			break
		}

		next := end - opts.Overlap
		if next <= start {
			next = start + opts.MaxChunkSize
		}
		start = next
	}
	return chunks
}
