package core

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// Address canonical account identity, produced by the caller
type Address string

func (a Address) String() string {
	return string(a)
}

// Valid printable, bounded and free of the key separator
func (a Address) Valid() bool {
	s := string(a)
	return s != "" &&
		govalidator.IsPrintableASCII(s) &&
		govalidator.ByteLength(s, "1", "128") &&
		!strings.ContainsAny(s, ": ")
}
