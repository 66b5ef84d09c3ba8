package models

import (
	"github.com/shopspring/decimal"
)

type Order struct {
	ID                   int             `json:"orderId"`
	OrderDate            LocalTime       `json:"orderDate"`
	DeliveryDate         LocalTime       `json:"deliveryDate"`
	TotalPrice           decimal.Decimal `json:"totalPrice"`
	AdvancePayment       decimal.Decimal `json:"advancePayment"`
	AdvancePaymentStatus string          `json:"advancePaymentStatus"`
	BalancePayment       decimal.Decimal `json:"balancePayment"`
	BalancePaymentStatus string          `json:"balancePaymentStatus"`
	OrderStatus          string          `json:"orderStatus"`
	CustomerID           int             `json:"customerId"`
	CustomerName         string          `json:"customerName"`
	CustomerEmail        string          `json:"customerEmail"`
	CreatedAt            LocalTime       `json:"createdAt"`
	Items                []OrderItem     `json:"orderItems"`
}

type OrderItem struct {
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	PriceEach   decimal.Decimal `json:"priceEach"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderInput is the create/update body. Items are only sent on create;
// statuses only on update.
type OrderInput struct {
	CustomerID           int              `json:"customerId,omitempty"`
	OrderDate            *LocalTime       `json:"orderDate,omitempty"`
	DeliveryDate         *LocalTime       `json:"deliveryDate,omitempty"`
	TotalPrice           *decimal.Decimal `json:"totalPrice,omitempty"`
	AdvancePayment       *decimal.Decimal `json:"advancePayment,omitempty"`
	BalancePayment       *decimal.Decimal `json:"balancePayment,omitempty"`
	AdvancePaymentStatus string           `json:"advancePaymentStatus,omitempty"`
	BalancePaymentStatus string           `json:"balancePaymentStatus,omitempty"`
	OrderStatus          string           `json:"orderStatus,omitempty"`
	Items                []OrderItem      `json:"orderItems,omitempty"`
}

// PaymentUpdate is the PATCH /orders/{id}/payment body.
type PaymentUpdate struct {
	Type   string           `json:"paymentType"`
	Status string           `json:"paymentStatus"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

const (
	PaymentAdvance = "ADVANCE"
	PaymentBalance = "BALANCE"
)

// Total returns quantity × priceEach.
func (i OrderItem) Total() decimal.Decimal {
	return i.PriceEach.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals is the client-side derivation of an order's money fields.
type Totals struct {
	Lines   []decimal.Decimal
	Total   decimal.Decimal
	Advance decimal.Decimal
	Balance decimal.Decimal
}

// ComputeTotals fills each item's LineTotal and derives total and balance.
// The backend recomputes on save, so the result is advisory.
func ComputeTotals(items []OrderItem, advance decimal.Decimal) Totals {
	t := Totals{Advance: advance, Total: decimal.Zero}
	for i := range items {
		line := items[i].Total()
		items[i].LineTotal = line
		t.Lines = append(t.Lines, line)
		t.Total = t.Total.Add(line)
	}
	t.Balance = t.Total.Sub(advance)
	return t
}

func init() {
	// The backend binds BigDecimal fields from JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
