package adapter

import "strings"

// Normalize strips markdown code-fence noise from a raw completion.
//
// Precedence: a fenced block explicitly tagged for the canonical structured
// output grammar (```json, case-insensitive), else the first generic fenced
// block, else the trimmed input unchanged. Normalizing twice yields the same
// text as normalizing once, and normalization never fails.
func Normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if block, ok := taggedFencedBlock(trimmed, "json"); ok {
		return block
	}
	if block, ok := firstFencedBlock(trimmed); ok {
		return block
	}
	return trimmed
}

// taggedFencedBlock extracts the content of the first ```<tag> fence,
// matching the tag case-insensitively.
func taggedFencedBlock(text, tag string) (string, bool) {
	marker := "```" + tag
	lower := strings.ToLower(text)
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return "", false
	}
	// Reject longer tags that merely share the prefix (e.g. ```jsonc).
	after := text[idx+len(marker):]
	if after != "" && after[0] != '\n' && after[0] != '\r' && after[0] != ' ' {
		return "", false
	}
	if end := strings.Index(after, "```"); end >= 0 {
		after = after[:end]
	}
	return strings.TrimSpace(after), true
}

// firstFencedBlock extracts the content of the first generic fence, dropping
// the fence line itself (which may carry a language tag).
func firstFencedBlock(text string) (string, bool) {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return "", false
	}
	after := text[idx+3:]
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		// Fence and content share a line; nothing to drop.
		after = strings.TrimLeft(after, "`")
	}
	if end := strings.Index(after, "```"); end >= 0 {
		after = after[:end]
	}
	return strings.TrimSpace(after), true
}
