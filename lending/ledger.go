package lending

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetBorrow fetches a ledger record by its borrow number.
func (d *Database) GetBorrow(number int64) (*BorrowRecord, error) {
	var rec BorrowRecord
	err := d.db.Get(&rec, `SELECT borrow_number, customer_id, cd_id, borrow_date, return_date, overdue_payment
        FROM borrow WHERE borrow_number=?`, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBorrowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get borrow %d: %w", number, err)
	}
	return &rec, nil
}

// OpenLoansFor returns the customer's open records in the order they were
// created. Closed records are excluded; no loans is an empty slice, not an
// error.
func (d *Database) OpenLoansFor(customerID string) ([]*BorrowRecord, error) {
	var recs []*BorrowRecord
	if err := d.db.Select(&recs, `SELECT borrow_number, customer_id, cd_id, borrow_date, return_date, overdue_payment
        FROM borrow WHERE customer_id=? AND return_date IS NULL ORDER BY borrow_number`, customerID); err != nil {
		return nil, fmt.Errorf("list open loans for %s: %w", customerID, err)
	}
	return recs, nil
}
