package poster

import (
	"strconv"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats a byte count in base-1024 units with one decimal place,
// dropping a trailing ".0": 1536 is "1.5KB", 1073741824 is "1GB".
// Counts of a petabyte or more stay in TB.
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}

	e := 0
	div := int64(1)
	for e < len(sizeUnits)-1 && n/div >= 1024 {
		div *= 1024
		e++
	}

	s := strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + sizeUnits[e]
}
