// Package lending implements the CD library's catalog, customer register and
// borrow ledger on SQLite, plus the lending engine that moves copies between
// the shelf and the ledger.
package lending

import "errors"

// Sentinel errors shared across the stores and the engine. Callers match
// them with errors.Is and turn them into user-facing messages; none of them
// is fatal to the process.
var (
	// ErrCDNotFound is returned when a cd_id is not in the catalog.
	ErrCDNotFound = errors.New("cd does not exist")

	// ErrCDUnavailable is returned when a borrow finds zero copies on the
	// shelf. No state changes.
	ErrCDUnavailable = errors.New("cd is not available")

	// ErrBorrowNotFound is returned when a borrow number is not in the ledger.
	ErrBorrowNotFound = errors.New("borrow record does not exist")

	// ErrAlreadyReturned is returned when closing a record that already has a
	// return date. The catalog is not credited a second time.
	ErrAlreadyReturned = errors.New("cd was already returned")

	// ErrDuplicateCustomerID is returned when registering an ID that is
	// already taken. The original record is left untouched.
	ErrDuplicateCustomerID = errors.New("customer with this id already exists")

	// ErrCustomerNotFound is returned when no customer matches the given
	// identity.
	ErrCustomerNotFound = errors.New("customer not found")
)
