package utils

import (
	"fmt"
	"strings"

	"github.com/concave-dev/prefq/internal/protocol"
)

// ParsePairs turns "left:right" specs into ordered left/right file names.
// Each entry of specs may itself hold several comma-separated pairs, so both
// --pairs=a:b,c:d and repeated --pairs flags work.
func ParsePairs(specs []string) ([][2]string, error) {
	var pairs [][2]string
	for _, spec := range specs {
		for _, item := range strings.Split(spec, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			left, right, ok := strings.Cut(item, ":")
			left, right = strings.TrimSpace(left), strings.TrimSpace(right)
			if !ok || left == "" || right == "" {
				return nil, fmt.Errorf("invalid pair '%s', expected left:right", item)
			}
			if protocol.Extension(left) != protocol.Extension(right) {
				return nil, fmt.Errorf("pair '%s' mixes extensions %q and %q; the server stores both under the left one",
					item, protocol.Extension(left), protocol.Extension(right))
			}
			pairs = append(pairs, [2]string{left, right})
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs given")
	}
	return pairs, nil
}
