package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses accepted by the backend.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

var BookingStatuses = []string{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled}

var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "completed", "cancelled", "refunded"}

var PaymentStatuses = []string{"unpaid", "pending", "verified", "failed"}

var Availabilities = []string{"in_stock", "out_of_stock", "preorder", "discontinued"}

// Customer is the authenticated subject of the public site.
type Customer struct {
	ID        int       `json:"customerId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt LocalTime `json:"createdAt"`
}

// AdminUser is the authenticated subject of the admin panel.
type AdminUser struct {
	ID   int    `json:"adminId"`
	NIC  string `json:"adminNic"`
	Name string `json:"adminName"`
}

// CustomerRecord is the admin-side view of a customer row.
type CustomerRecord struct {
	ID        int       `json:"customer_id"`
	Name      string    `json:"customer_name"`
	Email     string    `json:"customer_email"`
	Phone     string    `json:"customer_phone"`
	CreatedAt LocalTime `json:"created_at"`
}

type CustomerInput struct {
	Name     string `json:"customer_name"`
	Email    string `json:"customer_email"`
	Phone    string `json:"customer_phone"`
	Password string `json:"customer_password,omitempty"`
}

type Service struct {
	ID          int             `json:"service_id"`
	Name        string          `json:"service_name"`
	Description string          `json:"service_description"`
	Price       decimal.Decimal `json:"service_price"`
	CreatedAt   string          `json:"created_at"`
}

type ServiceInput struct {
	Name        string          `json:"service_name"`
	Price       decimal.Decimal `json:"service_price"`
	Description string          `json:"service_description"`
}

type Booking struct {
	ID           int       `json:"bookingId"`
	CustomerName string    `json:"customerName"`
	Status       string    `json:"bookingStatus"`
	Description  string    `json:"bookingDescription"`
	CustomerID   int       `json:"customerId"`
	ServiceID    int       `json:"serviceId"`
	ServiceName  string    `json:"serviceName"`
	Date         LocalTime `json:"bookingDate"`
	CreatedAt    LocalTime `json:"createdAt"`
}

// BookingInput is used for both create and update; Status is ignored on create.
type BookingInput struct {
	CustomerName string    `json:"customerName,omitempty"`
	ServiceID    int       `json:"serviceId,omitempty"`
	Date         LocalTime `json:"bookingDate"`
	Description  string    `json:"bookingDescription,omitempty"`
	Status       string    `json:"bookingStatus,omitempty"`
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CategoryInput struct {
	Name        string `json:"pc_name"`
	Description string `json:"pc_description,omitempty"`
}

type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Availability string          `json:"availability"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Category     *Category       `json:"category,omitempty"`
}

type ProductInput struct {
	Name         string          `json:"product_name"`
	Price        decimal.Decimal `json:"product_price"`
	CategoryID   int             `json:"pc_id,omitempty"`
	Description  string          `json:"product_description"`
	Availability string          `json:"availability"`
	ImageURL     string          `json:"image_url,omitempty"`
}

type Supplier struct {
	ID        int       `json:"supplier_id"`
	Name      string    `json:"supplier_name"`
	Phone     string    `json:"supplier_phone"`
	Email     string    `json:"supplier_email"`
	Address   string    `json:"supplier_address"`
	CreatedAt LocalTime `json:"created_at"`
}

type SupplierInput struct {
	Name    string `json:"supplier_name"`
	Phone   string `json:"supplier_phone"`
	Email   string `json:"supplier_email"`
	Address string `json:"supplier_address"`
}

// ContactSubmission is a message left through the public contact form.
type ContactSubmission struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactStats feeds the admin dashboard.
type ContactStats struct {
	Total    int
	LastWeek int
}

// CustomerProfile is the /api/customers/profile payload.
type CustomerProfile struct {
	Customer struct {
		ID        int       `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		CreatedAt LocalTime `json:"createdAt"`
	} `json:"customer"`
	Orders   []ProfileOrder   `json:"orders"`
	Bookings []ProfileBooking `json:"bookings"`
	Payments PaymentSummary   `json:"payments"`
}

type ProfileOrder struct {
	ID                   int             `json:"id"`
	OrderDate            LocalTime       `json:"orderDate"`
	DeliveryDate         LocalTime       `json:"deliveryDate"`
	TotalPrice           decimal.Decimal `json:"totalPrice"`
	AdvancePayment       decimal.Decimal `json:"advancePayment"`
	BalancePayment       decimal.Decimal `json:"balancePayment"`
	AdvancePaymentStatus string          `json:"advancePaymentStatus"`
	BalancePaymentStatus string          `json:"balancePaymentStatus"`
	OrderStatus          string          `json:"orderStatus"`
	Items                []struct {
		ProductID   int             `json:"productId"`
		ProductName string          `json:"productName"`
		Quantity    int             `json:"quantity"`
		PriceEach   decimal.Decimal `json:"priceEach"`
		TotalPrice  decimal.Decimal `json:"totalPrice"`
	} `json:"orderItems"`
	CreatedAt LocalTime `json:"createdAt"`
}

type ProfileBooking struct {
	ID           int       `json:"id"`
	CustomerName string    `json:"customerName"`
	Description  string    `json:"bookingDescription"`
	ServiceName  string    `json:"serviceName"`
	Status       string    `json:"bookingStatus"`
	Date         LocalTime `json:"bookingDate"`
	CreatedAt    LocalTime `json:"createdAt"`
}

type PaymentSummary struct {
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalPending  decimal.Decimal `json:"totalPending"`
	TotalAdvance  decimal.Decimal `json:"totalAdvance"`
	TotalBalance  decimal.Decimal `json:"totalBalance"`
	TotalOrders   int             `json:"totalOrders"`
	PaidOrders    int             `json:"paidOrders"`
	PendingOrders int             `json:"pendingOrders"`
}

// Page is the list envelope returned by every paged backend endpoint.
// Bookings report the index as currentPage, everything else as number.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
	CurrentPage   int `json:"currentPage"`
	Size          int `json:"size"`
}

// Index returns the 0-based page index whichever field carried it.
func (p Page[T]) Index() int {
	if p.Number != 0 {
		return p.Number
	}
	return p.CurrentPage
}
