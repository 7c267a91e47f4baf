package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// testEngine runs with the default terms and a clock frozen at day0. Tests
// move time by reassigning e.now.
func testEngine(db *Database) *Engine {
	e := NewEngine(db, Config{GraceDays: DefaultGraceDays, DailyRate: DefaultDailyRate})
	e.now = func() time.Time { return day0 }
	return e
}

func openCount(t *testing.T, d *Database, cdID int64) int {
	t.Helper()
	var n int
	require.NoError(t, d.db.Get(&n,
		`SELECT COUNT(*) FROM borrow WHERE cd_id=? AND return_date IS NULL`, cdID))
	return n
}

func TestBorrowOpensRecordAndDecrements(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 2)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	number, err := e.Borrow(100, "c1")
	require.NoError(t, err)
	require.Positive(t, number)

	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cd.Quantity)

	rec, err := db.GetBorrow(number)
	require.NoError(t, err)
	assert.True(t, rec.IsOpen())
	assert.Equal(t, "c1", rec.CustomerID)
	assert.Equal(t, int64(100), rec.CDID)
	assert.Equal(t, "2026-03-01", rec.BorrowDate)
	assert.Nil(t, rec.OverdueFee)
}

func TestBorrowUnknownCD(t *testing.T) {
	db := tempDB(t)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	_, err := e.Borrow(99999, "c1")
	require.ErrorIs(t, err, ErrCDNotFound)
}

func TestBorrowUnavailable(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 0)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	_, err := e.Borrow(100, "c1")
	require.ErrorIs(t, err, ErrCDUnavailable)

	// No mutation on failure.
	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cd.Quantity)
	assert.Zero(t, openCount(t, db, 100))
}

func TestQuantityNeverNegative(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 2)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	for i := 0; i < 2; i++ {
		_, err := e.Borrow(100, "c1")
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, err := e.Borrow(100, "c1")
		require.ErrorIs(t, err, ErrCDUnavailable)
	}

	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cd.Quantity)
}

func TestReturnRestoresQuantity(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 3)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	number, err := e.Borrow(100, "c1")
	require.NoError(t, err)

	receipt, err := e.Return(number)
	require.NoError(t, err)
	assert.Equal(t, int64(100), receipt.CDID)
	assert.Equal(t, "Test Album", receipt.CDName)
	assert.Equal(t, "2026-03-01", receipt.ReturnDate)
	assert.Zero(t, receipt.OverdueFee)

	// Quantity is back where it started and the record is closed.
	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cd.Quantity)

	rec, err := db.GetBorrow(number)
	require.NoError(t, err)
	assert.False(t, rec.IsOpen())
	require.NotNil(t, rec.OverdueFee)
	assert.Zero(t, *rec.OverdueFee)
}

func TestReturnUnknownBorrowNumber(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 1)
	e := testEngine(db)

	_, err := e.Return(99999)
	require.ErrorIs(t, err, ErrBorrowNotFound)

	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cd.Quantity)
}

func TestReturnTwiceFailsWithoutSecondCredit(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 1)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	number, err := e.Borrow(100, "c1")
	require.NoError(t, err)

	_, err = e.Return(number)
	require.NoError(t, err)

	_, err = e.Return(number)
	require.ErrorIs(t, err, ErrAlreadyReturned)

	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cd.Quantity, "copy must be credited exactly once")
}

func TestOverdueFee(t *testing.T) {
	e := testEngine(tempDB(t))

	tests := []struct {
		name     string
		returned time.Time
		want     float64
	}{
		{"same day", day0, 0},
		{"day 13", day0.AddDate(0, 0, 13), 0},
		{"day 14, end of grace", day0.AddDate(0, 0, 14), 0},
		{"day 15", day0.AddDate(0, 0, 15), 1.0},
		{"day 20", day0.AddDate(0, 0, 20), 6.0},
		{"fractional day truncated", day0.AddDate(0, 0, 14).Add(23 * time.Hour), 0},
	}

	borrowed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.overdueFee(borrowed, tt.returned))
		})
	}
}

func TestOverdueFeeOnReceipt(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 1)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	number, err := e.Borrow(100, "c1")
	require.NoError(t, err)

	e.now = func() time.Time { return day0.AddDate(0, 0, 20) }
	receipt, err := e.Return(number)
	require.NoError(t, err)
	assert.Equal(t, 6.0, receipt.OverdueFee)
	assert.Equal(t, "2026-03-21", receipt.ReturnDate)

	rec, err := db.GetBorrow(number)
	require.NoError(t, err)
	require.NotNil(t, rec.OverdueFee)
	assert.Equal(t, 6.0, *rec.OverdueFee)
}

func TestConfiguredTerms(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 1)
	addCustomer(t, db, "c1")

	e := NewEngine(db, Config{GraceDays: 7, DailyRate: 0.5})
	e.now = func() time.Time { return day0 }

	number, err := e.Borrow(100, "c1")
	require.NoError(t, err)

	e.now = func() time.Time { return day0.AddDate(0, 0, 10) }
	receipt, err := e.Return(number)
	require.NoError(t, err)
	assert.Equal(t, 1.5, receipt.OverdueFee)
}

func TestOpenLoansOrderAndExclusion(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 5)
	addCD(t, db, 101, 5)
	addCustomer(t, db, "c1")
	addCustomer(t, db, "c2")
	e := testEngine(db)

	n1, err := e.Borrow(100, "c1")
	require.NoError(t, err)
	n2, err := e.Borrow(101, "c1")
	require.NoError(t, err)
	n3, err := e.Borrow(100, "c1")
	require.NoError(t, err)
	_, err = e.Borrow(100, "c2")
	require.NoError(t, err)

	// Close the middle loan; the listing keeps creation order and drops it.
	_, err = e.Return(n2)
	require.NoError(t, err)

	loans, err := db.OpenLoansFor("c1")
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, n1, loans[0].Number)
	assert.Equal(t, n3, loans[1].Number)
}

func TestOpenLoansForCustomerWithNone(t *testing.T) {
	db := tempDB(t)
	addCustomer(t, db, "c1")

	loans, err := db.OpenLoansFor("c1")
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestReturnByPosition(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 5)
	addCD(t, db, 101, 5)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	_, err := e.Borrow(100, "c1")
	require.NoError(t, err)
	_, err = e.Borrow(101, "c1")
	require.NoError(t, err)

	receipt, err := e.ReturnByPosition("c1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(101), receipt.CDID)

	loans, err := db.OpenLoansFor("c1")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, int64(100), loans[0].CDID)
}

func TestReturnByPositionOutOfRange(t *testing.T) {
	db := tempDB(t)
	addCD(t, db, 100, 5)
	addCustomer(t, db, "c1")
	e := testEngine(db)

	_, err := e.Borrow(100, "c1")
	require.NoError(t, err)

	for _, position := range []int{0, -1, 2} {
		_, err := e.ReturnByPosition("c1", position)
		require.ErrorIs(t, err, ErrBorrowNotFound)
	}

	cd, err := db.GetCD(100)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cd.Quantity)
}

// The conservation rule: shelf copies plus open records always equals the
// starting stock, through any mix of borrows and returns.
func TestConservation(t *testing.T) {
	db := tempDB(t)
	const initial = int64(5)
	addCD(t, db, 100, initial)
	addCustomer(t, db, "c1")
	addCustomer(t, db, "c2")
	e := testEngine(db)

	check := func() {
		t.Helper()
		cd, err := db.GetCD(100)
		require.NoError(t, err)
		assert.Equal(t, initial, cd.Quantity+int64(openCount(t, db, 100)))
		assert.GreaterOrEqual(t, cd.Quantity, int64(0))
	}

	n1, _ := e.Borrow(100, "c1")
	check()
	n2, _ := e.Borrow(100, "c2")
	check()
	_, _ = e.Borrow(100, "c1")
	check()

	_, err := e.Return(n2)
	require.NoError(t, err)
	check()

	_, err = e.Return(n2) // double return rejected
	require.ErrorIs(t, err, ErrAlreadyReturned)
	check()

	_, err = e.Return(n1)
	require.NoError(t, err)
	check()

	_, err = e.Borrow(100, "c2")
	require.NoError(t, err)
	check()
}
