package metadata

import (
	"fmt"
	"strings"
)

type DisplayColor string

const DefaultDisplayColor DisplayColor = "#CCCCCC"

// NewDisplayColor normalizes a hex color ("fff", "#a1b2c3") to the "#RRGGBB"
// form stored on stock records. An empty value is returned as is.
func NewDisplayColor(value string) (DisplayColor, error) {
	normalized := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if normalized == "" {
		return "", nil
	}

	if len(normalized) == 3 {
		normalized = string([]byte{
			normalized[0], normalized[0],
			normalized[1], normalized[1],
			normalized[2], normalized[2],
		})
	}

	if len(normalized) != 6 || !isHex(normalized) {
		return "", fmt.Errorf("value %q is not a hex color, expected #RRGGBB", value)
	}

	return DisplayColor("#" + normalized), nil
}

func (c DisplayColor) IsEmpty() bool {
	return c == ""
}

func (c DisplayColor) String() string {
	return string(c)
}

func isHex(value string) bool {
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
