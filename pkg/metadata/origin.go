package metadata

import "strings"

// ReturnType tags a returned project line. Only ReturnTypeReturned puts the
// quantity back on the shelf; the other values are free text.
type ReturnType string

const (
	ReturnTypeReturned ReturnType = "returned"
	ReturnTypeUsed     ReturnType = "used"
	ReturnTypeBroken   ReturnType = "broken"
)

func NewReturnType(value string) ReturnType {
	return ReturnType(strings.ToLower(strings.TrimSpace(value)))
}

// RestoresStock reports whether a return of this type is a true stock return.
func (r ReturnType) RestoresStock() bool {
	return r == ReturnTypeReturned
}

func (r ReturnType) String() string {
	return string(r)
}
