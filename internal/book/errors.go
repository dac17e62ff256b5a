package book

import "errors"

var (
	// ErrCrossedBook is returned by CheckIntegrity when the best bid is at
	// or above the best ask.
	ErrCrossedBook = errors.New("book: crossed book")
	// ErrUnsupported is returned for operations a book variant does not
	// support, e.g. Add on an L1 book.
	ErrUnsupported = errors.New("book: unsupported operation")
	// ErrOrderNotFound is returned by L3 Modify/Cancel when the order id is
	// not resting in the book.
	ErrOrderNotFound = errors.New("book: order not found")
	// ErrEmptyBook is returned by BestBid/BestAsk/Spread when the
	// respective side has no resting liquidity.
	ErrEmptyBook = errors.New("book: side is empty")
)
