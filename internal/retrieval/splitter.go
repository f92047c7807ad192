package retrieval

import "strings"

// separators are tried in order when looking for a chunk boundary, from
// coarsest (paragraph break) to finest (word break).
var separators = []string{"\n\n", "\n", " "}

// SplitText splits text into chunks of at most chunkSize characters with
// the given overlap between consecutive chunks. Boundaries prefer
// paragraph breaks, then line breaks, then word breaks, falling back to a
// hard cut for unbroken runs.
func SplitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = splitPoint(text, start, end)
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// splitPoint finds the best boundary in text[start:limit], searching the
// back half of the window so chunks don't collapse to slivers.
func splitPoint(text string, start, limit int) int {
	window := text[start:limit]
	minCut := len(window) / 2

	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= minCut {
			return start + idx + len(sep)
		}
	}
	return limit
}
