/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package register

import "fmt"

// ErrOutOfRange is returned when a read or write touches an address
// range that no region in the bank fully contains.
type ErrOutOfRange struct {
	Address uint32
	Length  int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("register: out of range: address=0x%X length=%d", e.Address, e.Length)
}

// IsOutOfRange reports whether err is an ErrOutOfRange.
func IsOutOfRange(err error) bool {
	_, ok := err.(*ErrOutOfRange)
	return ok
}
