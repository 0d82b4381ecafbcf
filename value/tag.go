// SPDX-License-Identifier: EPL-2.0

package value

import "fmt"

// Tag identifies the shape carried by a Value.
type Tag uint8

const (
	Invalid Tag = iota
	Number
	Boolean
	String
	RealArray
	RealMatrix
)

var tagNames = [...]string{
	Invalid:    "invalid",
	Number:     "number",
	Boolean:    "boolean",
	String:     "string",
	RealArray:  "realArray",
	RealMatrix: "realMatrix",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Valid reports whether t names one of the five value shapes.
func (t Tag) Valid() bool {
	return t > Invalid && t <= RealMatrix
}

// ParseTag maps a catalog type name to its Tag.
func ParseTag(s string) (Tag, error) {
	for i, name := range tagNames {
		if i > 0 && name == s {
			return Tag(i), nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownTag, s)
}
