package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Maheesh09/studio-full-stack/internal/models"
)

// Resource is a paged CRUD collection on the backend. T is the view type
// the backend returns, In the body it accepts on create and update.
type Resource[T, In any] struct {
	client *Client
	path   string
}

func pageQuery(path string, page, size int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return path + "?" + q.Encode()
}

func (r Resource[T, In]) List(ctx context.Context, page, size int) (models.Page[T], error) {
	var out models.Page[T]
	err := r.client.Get(ctx, pageQuery(r.path, page, size), &out)
	return out, err
}

func (r Resource[T, In]) Get(ctx context.Context, id int) (T, error) {
	var out T
	err := r.client.Get(ctx, fmt.Sprintf("%s/%d", r.path, id), &out)
	return out, err
}

func (r Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	var out T
	err := r.client.Send(ctx, http.MethodPost, r.path, in, &out)
	return out, err
}

func (r Resource[T, In]) Update(ctx context.Context, id int, in In) (T, error) {
	var out T
	err := r.client.Send(ctx, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), in, &out)
	return out, err
}

func (r Resource[T, In]) Delete(ctx context.Context, id int) error {
	return r.client.Send(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil, nil)
}

func (c *Client) Customers() Resource[models.CustomerRecord, models.CustomerInput] {
	return Resource[models.CustomerRecord, models.CustomerInput]{client: c, path: "/api/admin/customers"}
}

func (c *Client) Bookings() Resource[models.Booking, models.BookingInput] {
	return Resource[models.Booking, models.BookingInput]{client: c, path: "/api/bookings"}
}

func (c *Client) Orders() Resource[models.Order, models.OrderInput] {
	return Resource[models.Order, models.OrderInput]{client: c, path: "/api/admin/orders"}
}

func (c *Client) Products() Resource[models.Product, models.ProductInput] {
	return Resource[models.Product, models.ProductInput]{client: c, path: "/api/admin/products"}
}

func (c *Client) Categories() Resource[models.Category, models.CategoryInput] {
	return Resource[models.Category, models.CategoryInput]{client: c, path: "/api/admin/categories"}
}

func (c *Client) Services() Resource[models.Service, models.ServiceInput] {
	return Resource[models.Service, models.ServiceInput]{client: c, path: "/api/admin/services"}
}

func (c *Client) Suppliers() Resource[models.Supplier, models.SupplierInput] {
	return Resource[models.Supplier, models.SupplierInput]{client: c, path: "/api/admin/suppliers"}
}

// PublicServices lists services without an admin session.
func (c *Client) PublicServices(ctx context.Context, page, size int) (models.Page[models.Service], error) {
	var out models.Page[models.Service]
	err := c.Get(ctx, pageQuery("/api/services", page, size), &out)
	return out, err
}

// CreateBooking posts a booking as the signed-in customer.
func (c *Client) CreateBooking(ctx context.Context, in models.BookingInput) (models.Booking, error) {
	return c.Bookings().Create(ctx, in)
}

// UpdatePayment sets the status (and optionally the amount) of one side of an order's payment.
func (c *Client) UpdatePayment(ctx context.Context, orderID int, in models.PaymentUpdate) (models.Order, error) {
	var out models.Order
	err := c.Send(ctx, http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d/payment", orderID), in, &out)
	return out, err
}

// MyOrders lists the signed-in customer's orders.
func (c *Client) MyOrders(ctx context.Context, page, size int) (models.Page[models.Order], error) {
	var out models.Page[models.Order]
	err := c.Get(ctx, pageQuery("/api/admin/orders/my-orders", page, size), &out)
	return out, err
}

// AvailableProducts feeds the order form's product picker.
func (c *Client) AvailableProducts(ctx context.Context) ([]models.Product, error) {
	var out models.Page[models.Product]
	if err := c.Get(ctx, pageQuery("/api/admin/orders/available-products", 0, 100), &out); err != nil {
		return nil, err
	}
	return out.Content, nil
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type RegistrationResult struct {
	Status     string `json:"status"`
	CustomerID int    `json:"customerId"`
}

func (c *Client) RegisterCustomer(ctx context.Context, in Registration) (RegistrationResult, error) {
	var out RegistrationResult
	err := c.Send(ctx, http.MethodPost, "/api/customers/register", in, &out)
	return out, err
}

func (c *Client) CustomerProfile(ctx context.Context) (models.CustomerProfile, error) {
	var out models.CustomerProfile
	err := c.Get(ctx, "/api/customers/profile", &out)
	return out, err
}

// CustomerCredentials is the /api/customers/login body.
type CustomerCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminCredentials is the /api/admins/login body.
type AdminCredentials struct {
	NIC      string `json:"adminNic"`
	Password string `json:"password"`
}
