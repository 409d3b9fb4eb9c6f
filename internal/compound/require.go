package compound

import "ctoken/core"

// Require returns a market error of kind unless condition holds
func Require(condition bool, kind core.ErrorKind, op string, kv ...interface{}) error {
	if condition {
		return nil
	}

	return core.NewError(kind, op, kv...)
}
