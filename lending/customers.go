package lending

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the identity established by a successful login. The shell holds
// one and passes it to operations that need to know who is asking; there is
// no password, identity is the (id, email) pair.
type Session struct {
	ID         string
	CustomerID string
	Name       string
}

// RegisterCustomer adds a new customer. The ID is chosen by the customer and
// must be unique; email uniqueness is not checked.
func (d *Database) RegisterCustomer(id, firstName, lastName, email string) error {
	if _, err := d.addCustomerStmt.Exec(id, firstName, lastName, email); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateCustomerID
		}
		return fmt.Errorf("register customer: %w", err)
	}
	d.log.Info("customer registered", zap.String("customer_id", id))
	return nil
}

// GetCustomer fetches a single customer.
func (d *Database) GetCustomer(id string) (*Customer, error) {
	var c Customer
	err := d.db.Get(&c, `SELECT customer_id, first_name, last_name, email
        FROM customers WHERE customer_id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return &c, nil
}

// Authenticate verifies the (id, email) pair and opens a session. A mismatch
// on either field is ErrCustomerNotFound; the caller drops any previous
// session in that case.
func (d *Database) Authenticate(customerID, email string) (*Session, error) {
	var c Customer
	err := d.db.Get(&c, `SELECT customer_id, first_name, last_name, email
        FROM customers WHERE customer_id=? AND email=?`, customerID, email)
	if errors.Is(err, sql.ErrNoRows) {
		d.log.Warn("login failed", zap.String("customer_id", customerID))
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	s := &Session{
		ID:         uuid.NewString(),
		CustomerID: c.ID,
		Name:       c.FirstName + " " + c.LastName,
	}
	d.log.Info("login", zap.String("customer_id", c.ID), zap.String("session_id", s.ID))
	return s, nil
}
