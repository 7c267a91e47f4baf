package lending

// Customer is a registered borrower. Identity is the customer-chosen ID plus
// their email; a record is never changed after registration.
type Customer struct {
	ID        string `db:"customer_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

// CD represents one catalog title. Quantity counts the copies currently on
// the shelf; only the engine's Borrow and Return move it.
type CD struct {
	ID           int64  `db:"cd_id"`
	Name         string `db:"cd_name"`
	Type         string `db:"cd_type"`
	Quantity     int64  `db:"cd_quantity"`
	Artist       string `db:"cd_artist"`
	ReleasedYear int64  `db:"cd_released_year"`
}

// BorrowRecord links a customer to one borrowed copy. A record with no
// return date is open: the copy is still checked out. Closing a record sets
// both the return date and the overdue fee, exactly once.
type BorrowRecord struct {
	Number     int64    `db:"borrow_number"`
	CustomerID string   `db:"customer_id"`
	CDID       int64    `db:"cd_id"`
	BorrowDate string   `db:"borrow_date"`
	ReturnDate *string  `db:"return_date"`
	OverdueFee *float64 `db:"overdue_payment"`
}

// IsOpen reports whether the copy is still checked out.
func (r *BorrowRecord) IsOpen() bool { return r.ReturnDate == nil }
