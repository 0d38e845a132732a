package calc

import "strings"

// DedupeOptions controls how lines are compared.
type DedupeOptions struct {
	// TrimSpace strips leading/trailing whitespace before comparing.
	// Output lines keep their original form.
	TrimSpace bool
	// IgnoreCase compares lines case-insensitively.
	IgnoreCase bool
	// SkipEmpty drops empty lines (after trimming, when enabled) entirely.
	SkipEmpty bool
}

// DedupeResult holds the deduplicated lines and the counts.
// Invariant: Unique + Removed == Total.
type DedupeResult struct {
	Lines   []string
	Total   int
	Unique  int
	Removed int
}

// DedupeLines removes duplicate lines from text, keeping the first
// occurrence of each line in its original order and form.
func DedupeLines(text string, opts DedupeOptions) DedupeResult {
	lines := splitLines(text)

	seen := make(map[string]struct{}, len(lines))
	kept := make([]string, 0, len(lines))
	res := DedupeResult{}

	for _, line := range lines {
		key := line
		if opts.TrimSpace {
			key = strings.TrimSpace(key)
		}
		if opts.SkipEmpty && key == "" {
			continue
		}
		res.Total++

		if opts.IgnoreCase {
			key = strings.ToLower(key)
		}
		if _, dup := seen[key]; dup {
			res.Removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
		res.Unique++
	}

	res.Lines = kept
	return res
}

// splitLines splits on \n, tolerating \r\n endings. A trailing newline does
// not produce a final empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
