// Package chunk splits raw text and log content into bounded,
// offset-addressed segments for downstream scoring. Chunks are transient:
// nothing here is persisted.
package chunk

// Metadata carries optional context extracted while chunking log content.
type Metadata struct {
	Timestamp string `json:"timestamp,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`
}

// Chunk is one bounded segment of the source content. StartOffset and
// EndOffset address the half-open byte range [StartOffset, EndOffset) in
// the original input; for any input the emitted chunks cover the full
// length with monotonically non-decreasing offsets.
type Chunk struct {
	Content     string   `json:"content"`
	Index       int      `json:"index"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Options controls chunk sizing.
type Options struct {
	MaxChunkSize int
	MinChunkSize int
	Overlap      int
}

const (
	DefaultMaxChunkSize = 1500
	DefaultMinChunkSize = 100
)

func DefaultOptions() Options {
	return Options{MaxChunkSize: DefaultMaxChunkSize, MinChunkSize: DefaultMinChunkSize}
}

func (o Options) withDefaults() Options {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = DefaultMaxChunkSize
	}
	if o.MinChunkSize <= 0 {
		o.MinChunkSize = DefaultMinChunkSize
	}
	if o.MinChunkSize > o.MaxChunkSize {
		o.MinChunkSize = o.MaxChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	return o
}

// reindex renumbers chunks after splicing.
func reindex(chunks []Chunk) []Chunk {
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// mergeShortTail folds a trailing chunk shorter than min into the previous
// chunk when the two are contiguous. A lone short chunk is left as is.
func mergeShortTail(chunks []Chunk, min int) []Chunk {
	n := len(chunks)
	if n < 2 || len(chunks[n-1].Content) >= min {
		return chunks
	}
	prev, last := &chunks[n-2], chunks[n-1]
	if prev.EndOffset != last.StartOffset {
		return chunks
	}
	prev.Content += last.Content
	prev.EndOffset = last.EndOffset
	return chunks[:n-1]
}
