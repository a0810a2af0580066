package gitx

import (
	"strconv"
	"strings"
)

// ParseAheadBehind parses the output of:
//
//	git rev-list --left-right --count HEAD...@{upstream}
//
// Returns (ahead, behind).
func ParseAheadBehind(output string) (int, int) {
	output = strings.TrimSpace(output)
	if output == "" {
		return 0, 0
	}
	parts := strings.SplitN(output, "\t", 2)
	if len(parts) != 2 {
		// Some git versions separate the counts with spaces.
		parts = strings.Fields(output)
		if len(parts) != 2 {
			return 0, 0
		}
	}
	ahead, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	behind, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	return ahead, behind
}

// ParsePorcelainFiles extracts the changed paths from the output of
// `git status --porcelain=v1`. Renames report the destination path.
func ParsePorcelainFiles(output string) []string {
	if strings.TrimSpace(output) == "" {
		return nil
	}
	var files []string
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		// Combined output is trimmed, so column offsets are unreliable for
		// the first line; split on the gap after the XY status code instead.
		parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
		if len(parts) != 2 {
			continue
		}
		path := strings.TrimSpace(parts[1])
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+len(" -> "):]
		}
		path = strings.Trim(path, `"`)
		if path == "" {
			continue
		}
		files = append(files, path)
	}
	return files
}
