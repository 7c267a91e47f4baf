package lending

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// dateLayout is the wire format for borrow and return dates.
const dateLayout = "2006-01-02"

// Engine applies the lending rules. A borrow takes one copy off the shelf
// and opens a ledger record; a return closes the record and puts the copy
// back. Each side commits both writes in one transaction, so for every CD
// the shelf count plus its open records always equals the original stock.
type Engine struct {
	db        *Database
	graceDays int
	dailyRate float64

	// now is swappable for tests; nil means time.Now.
	now func() time.Time
}

// NewEngine builds an engine over the database using the configured lending
// terms.
func NewEngine(db *Database, cfg Config) *Engine {
	return &Engine{
		db:        db,
		graceDays: cfg.GraceDays,
		dailyRate: cfg.DailyRate,
		now:       time.Now,
	}
}

// ReturnReceipt describes a completed return, for display.
type ReturnReceipt struct {
	BorrowNumber int64
	CDID         int64
	CDName       string
	ReturnDate   string
	OverdueFee   float64
}

// Borrow checks one copy of the CD out to the customer and returns the new
// borrow number. ErrCDNotFound and ErrCDUnavailable leave all state
// untouched.
func (e *Engine) Borrow(cdID int64, customerID string) (int64, error) {
	tx, err := e.db.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var quantity int64
	err = tx.Get(&quantity, `SELECT cd_quantity FROM cds WHERE cd_id=?`, cdID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCDNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("borrow cd %d: %w", cdID, err)
	}
	if quantity == 0 {
		return 0, ErrCDUnavailable
	}

	if _, err := tx.Exec(`UPDATE cds SET cd_quantity=cd_quantity-1 WHERE cd_id=?`, cdID); err != nil {
		return 0, fmt.Errorf("borrow cd %d: %w", cdID, err)
	}
	res, err := tx.Exec(`INSERT INTO borrow(customer_id, cd_id, borrow_date) VALUES(?,?,?)`,
		customerID, cdID, e.today())
	if err != nil {
		return 0, fmt.Errorf("borrow cd %d: %w", cdID, err)
	}
	number, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	e.db.log.Info("cd borrowed",
		zap.Int64("cd_id", cdID),
		zap.String("customer_id", customerID),
		zap.Int64("borrow_number", number))
	return number, nil
}

// Return closes the borrow record, credits the copy back to the catalog and
// computes the overdue fee. A record that is already closed fails with
// ErrAlreadyReturned and is not credited again.
func (e *Engine) Return(borrowNumber int64) (*ReturnReceipt, error) {
	tx, err := e.db.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var rec BorrowRecord
	err = tx.Get(&rec, `SELECT borrow_number, customer_id, cd_id, borrow_date, return_date, overdue_payment
        FROM borrow WHERE borrow_number=?`, borrowNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBorrowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("return %d: %w", borrowNumber, err)
	}
	if !rec.IsOpen() {
		return nil, ErrAlreadyReturned
	}

	borrowed, err := time.Parse(dateLayout, rec.BorrowDate)
	if err != nil {
		return nil, fmt.Errorf("return %d: parse borrow date %q: %w", borrowNumber, rec.BorrowDate, err)
	}
	returnDate := e.today()
	fee := e.overdueFee(borrowed, e.clock())

	var cdName string
	if err := tx.Get(&cdName, `SELECT cd_name FROM cds WHERE cd_id=?`, rec.CDID); err != nil {
		return nil, fmt.Errorf("return %d: %w", borrowNumber, err)
	}
	if _, err := tx.Exec(`UPDATE cds SET cd_quantity=cd_quantity+1 WHERE cd_id=?`, rec.CDID); err != nil {
		return nil, fmt.Errorf("return %d: %w", borrowNumber, err)
	}
	if _, err := tx.Exec(`UPDATE borrow SET return_date=?, overdue_payment=? WHERE borrow_number=?`,
		returnDate, fee, borrowNumber); err != nil {
		return nil, fmt.Errorf("return %d: %w", borrowNumber, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	e.db.log.Info("cd returned",
		zap.Int64("borrow_number", borrowNumber),
		zap.Int64("cd_id", rec.CDID),
		zap.Float64("overdue_fee", fee))
	return &ReturnReceipt{
		BorrowNumber: borrowNumber,
		CDID:         rec.CDID,
		CDName:       cdName,
		ReturnDate:   returnDate,
		OverdueFee:   fee,
	}, nil
}

// ReturnByPosition closes the customer's open loan at the given 1-indexed
// position within OpenLoansFor. Positions outside the list are
// ErrBorrowNotFound. Only the caller's own loans are reachable this way.
func (e *Engine) ReturnByPosition(customerID string, position int) (*ReturnReceipt, error) {
	loans, err := e.db.OpenLoansFor(customerID)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > len(loans) {
		return nil, ErrBorrowNotFound
	}
	return e.Return(loans[position-1].Number)
}

func (e *Engine) today() string {
	return e.clock().Format(dateLayout)
}

func (e *Engine) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

// overdueFee charges one rate unit per whole day beyond the grace period.
// Fractional days are discarded; the fee is never negative.
func (e *Engine) overdueFee(borrowed, returned time.Time) float64 {
	elapsed := int(returned.Sub(borrowed).Hours() / 24)
	overdue := elapsed - e.graceDays
	if overdue < 0 {
		overdue = 0
	}
	return float64(overdue) * e.dailyRate
}
