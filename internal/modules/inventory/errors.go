package inventory

import "errors"

var (
	ErrNotFound           = errors.New("item not found")
	ErrInvalidPayload     = errors.New("invalid item payload")
	ErrStockBelowReserved = errors.New("total stock below reserved quantity")
)
