package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/models"
)

func (h *AdminHandler) customersPage() ResourcePage {
	return &resourcePage[models.CustomerRecord, models.CustomerInput]{
		h:        h,
		name:     "customers",
		singular: "customer",
		resource: (*api.Client).Customers,
		id:       func(c models.CustomerRecord) int { return c.ID },
		form:     customerForm,
	}
}

// customerForm requires a password on create only; a blank password on
// edit keeps the current one.
func customerForm(r *http.Request, editing bool) (models.CustomerInput, map[string]string) {
	in := models.CustomerInput{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Password: r.FormValue("password"),
	}
	errs := make(map[string]string)
	switch {
	case in.Name == "":
		errs["name"] = "Name is required."
	case tooLong(in.Name, 20):
		errs["name"] = "Name must be at most 20 characters."
	}
	switch {
	case in.Email == "":
		errs["email"] = "Email is required."
	case tooLong(in.Email, 45) || !isValidEmail(in.Email):
		errs["email"] = "Please enter a valid email address."
	}
	if !phonePattern.MatchString(in.Phone) {
		errs["phone"] = "Phone number may only contain digits, spaces, +, - and parentheses."
	}
	if in.Password != "" || !editing {
		if n := len(in.Password); n < 8 || n > 72 {
			errs["password"] = "Password must be between 8 and 72 characters."
		}
	}
	return in, errs
}

func (h *AdminHandler) bookingsPage() ResourcePage {
	return &resourcePage[models.Booking, models.BookingInput]{
		h:        h,
		name:     "bookings",
		singular: "booking",
		resource: (*api.Client).Bookings,
		id:       func(b models.Booking) int { return b.ID },
		form:     h.bookingForm,
		extras:   withServices,
		// The backend takes the customer from its own session, so an admin
		// session cannot create one.
		createBlocked: "Bookings are made by customers from the booking page.",
	}
}

// bookingForm reuses the public booking validation, except that past dates
// are accepted so existing bookings can still change status.
func (h *AdminHandler) bookingForm(r *http.Request, _ bool) (models.BookingInput, map[string]string) {
	epoch := time.Date(1, 1, 1, 0, 0, 0, 0, h.now().Location())
	in, errs := validateBooking(r.Form, epoch)
	in.Status = r.FormValue("status")
	if in.Status == "" {
		in.Status = models.BookingPending
	}
	if !slices.Contains(models.BookingStatuses, in.Status) {
		errs["status"] = "Invalid status selected."
	}
	return in, errs
}

func withServices(r *http.Request, c *api.Client, data map[string]interface{}) {
	page, err := c.Services().List(r.Context(), 0, maxPageSize)
	if err != nil {
		slog.Warn("Could not load services", "request_id", RequestID(r.Context()), "error", err)
		return
	}
	data["Services"] = page.Content
}
