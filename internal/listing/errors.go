package listing

import "errors"

var (
	// ErrInvalidQuery is returned before any network activity when the search term is empty.
	ErrInvalidQuery = errors.New("invalid search query")
	// ErrSourceUnavailable covers network errors, timeouts and non-2xx responses of a single source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrParseMismatch is used when a listing element or a whole page does not match the expected structure.
	ErrParseMismatch = errors.New("parse mismatch")
	// ErrDetailUnavailable is returned by the detail fetcher on any fetch or parse failure.
	ErrDetailUnavailable = errors.New("detail unavailable")
)
