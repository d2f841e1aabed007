package pack

import "strings"

// AdjustmentNoteMarker prefixes an optional metadata block that models may
// emit ahead of the asset blocks. Such a block is recognized and dropped; it
// never maps to an asset.
const AdjustmentNoteMarker = "Adjustment Note:"

// ExtractBlocks returns the contents of all fenced blocks in document order.
// A fenced block is delimited by triple-backtick fences; the opening fence
// may carry a language tag. Block content is trimmed of leading and trailing
// whitespace, internal whitespace is preserved verbatim.
func ExtractBlocks(text string) []string {
	var blocks []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				blocks = append(blocks, strings.TrimSpace(strings.Join(current, "\n")))
				current = nil
			}
			inBlock = !inBlock
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}

	return blocks
}

// ParseJob splits a whole-job response into named assets. The text must
// contain exactly len(order) fenced blocks, optionally preceded by a single
// adjustment-note block, mapped 1:1 and in order to the generation order.
// The mapping is positional, not content-sniffed, which is why any count
// deviation is a hard *ParseError.
func ParseJob(text string, order GenerationOrder) (map[string]string, error) {
	blocks := dropAdjustmentNote(ExtractBlocks(text))

	if len(blocks) != len(order) {
		return nil, &ParseError{Expected: len(order), Actual: len(blocks), Order: order}
	}

	assets := make(map[string]string, len(order))
	for i, name := range order {
		assets[name] = blocks[i]
	}
	return assets, nil
}

// ParseSingle extracts one asset's content from a per-asset response: the
// first fenced block after dropping a leading adjustment note. Zero
// remaining blocks is a *ParseError.
func ParseSingle(text string) (string, error) {
	blocks := dropAdjustmentNote(ExtractBlocks(text))
	if len(blocks) == 0 {
		return "", &ParseError{Expected: 1, Actual: 0}
	}
	return blocks[0], nil
}

func dropAdjustmentNote(blocks []string) []string {
	if len(blocks) > 0 && strings.HasPrefix(strings.TrimSpace(blocks[0]), AdjustmentNoteMarker) {
		return blocks[1:]
	}
	return blocks
}
