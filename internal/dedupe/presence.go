package dedupe

import (
	"fmt"
	"strings"
)

// Describe classifies how widely one logical entry is shared across the
// known copies of a diary day, and whether it is unique to a single
// source. A single-source entry among several copies signals possible
// transcription divergence and is the one case flagged for review.
func Describe(sourcesPresent, sourcesMissing []string, totalSources int) (status string, unique bool) {
	present := dedupeOrdered(sourcesPresent)
	presentCount := len(present)

	if totalSources <= 1 {
		return "only available copy", false
	}
	if presentCount == totalSources {
		return fmt.Sprintf("present in all %d copies", totalSources), false
	}
	if presentCount == 1 {
		current := "unknown source"
		if len(present) > 0 {
			current = present[0]
		}
		suffix := ""
		if len(sourcesMissing) > 0 {
			suffix = " - missing from: " + strings.Join(sourcesMissing, ", ")
		}
		return fmt.Sprintf("single instance in %s%s", current, suffix), true
	}
	suffix := ""
	if len(sourcesMissing) > 0 {
		suffix = "; missing from: " + strings.Join(sourcesMissing, ", ")
	}
	return fmt.Sprintf("in %d/%d copies (%s)%s", presentCount, totalSources, strings.Join(present, ", "), suffix), false
}

func dedupeOrdered(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
