package batch

import (
	"fmt"
	"os"
	"strings"
)

// LoadSeeds reads one seed request per line from path. Surrounding
// whitespace is trimmed; blank lines and # comments are skipped. The
// surviving lines are the exact strings used for progress matching, so
// resume must load the same file through this same function.
func LoadSeeds(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("seed file %s contains no seeds", path)
	}
	return seeds, nil
}
