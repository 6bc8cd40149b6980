// Package expense defines the expense record model: the Expense entity,
// its closed category and payment-method enumerations, and the validation
// rules a record must pass before it enters a ledger.
package expense

import "fmt"

const (
	Food           Category = "Food"
	Transport      Category = "Transport"
	Rent           Category = "Rent"
	Mortgage       Category = "Mortgage"
	IncomeTax      Category = "Income Tax"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Utilities      Category = "Utilities"
	Healthcare     Category = "Healthcare"
	CreditCardBill Category = "Credit Card Bill"
	Other          Category = "Other"
)

const (
	Cash          PaymentMethod = "Cash"
	CreditCard    PaymentMethod = "Credit Card"
	DebitCard     PaymentMethod = "Debit Card"
	BankTransfer  PaymentMethod = "Bank Transfer"
	DigitalWallet PaymentMethod = "Digital Wallet"
)

// MaxDescriptionLen bounds the free-text description.
const MaxDescriptionLen = 200

type (
	Category      string
	PaymentMethod string

	Expense struct {
		ID            int64         `json:"id"`
		Date          Date          `json:"date"`
		Price         Money         `json:"price"`
		Category      Category      `json:"category"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Description   string        `json:"description"`
	}
)

// ValidationError reports the field that failed validation and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Categories returns the full category enumeration in display order.
func Categories() []Category {
	return []Category{
		Food, Transport, Rent, Mortgage, IncomeTax, Entertainment,
		Shopping, Utilities, Healthcare, CreditCardBill, Other,
	}
}

// PaymentMethods returns the full payment-method enumeration.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Cash, CreditCard, DebitCard, BankTransfer, DigitalWallet}
}

// IsValid reports whether c is a member of the closed category set.
func (c Category) IsValid() bool {
	switch c {
	case Food, Transport, Rent, Mortgage, IncomeTax, Entertainment,
		Shopping, Utilities, Healthcare, CreditCardBill, Other:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// IsValid reports whether m is a member of the closed payment-method set.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case Cash, CreditCard, DebitCard, BankTransfer, DigitalWallet:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string { return string(m) }

// Validate checks a candidate record before it enters a ledger. It has no
// side effects and returns a *ValidationError naming the offending field.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Reason: err.Error()}
	}
	if err := e.Price.Validate(); err != nil {
		return &ValidationError{Field: "price", Reason: err.Error()}
	}
	if !e.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", string(e.Category))}
	}
	if !e.PaymentMethod.IsValid() {
		return &ValidationError{Field: "paymentMethod", Reason: fmt.Sprintf("unknown payment method %q", string(e.PaymentMethod))}
	}
	if len(e.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("too long (max %d characters)", MaxDescriptionLen)}
	}
	return nil
}
