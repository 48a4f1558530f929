package ingest

// Default chunking parameters. Overlap keeps sentence fragments near a
// window boundary retrievable from both neighboring chunks.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into successive windows of size runes, advancing the
// start offset by size-overlap each step. The final chunk may be shorter.
// Pure character-offset slicing: no word or sentence awareness, full
// coverage of the input, at least one chunk for non-empty input.
// Deterministic, so re-ingesting a file always yields the same windows.
func Chunk(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 || overlap < 0 || overlap >= size {
		return []string{text}
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}
