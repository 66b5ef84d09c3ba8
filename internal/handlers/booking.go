package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/models"
)

// BookingHandler takes service bookings from signed-in customers.
type BookingHandler struct {
	*PublicHandler

	// Now is the clock bookings are validated against.
	Now func() time.Time
}

func (h *BookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *BookingHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, url.Values{
		"customerName": {h.customerName(r)},
		"serviceId":    {r.URL.Query().Get("service")},
	}, nil, "")
}

func (h *BookingHandler) customerName(r *http.Request) string {
	if c, ok := h.Customers.Identity(r); ok {
		return c.Name
	}
	return ""
}

func (h *BookingHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, values url.Values, errs map[string]string, notice string) {
	data := map[string]interface{}{
		"Values":  values,
		"Errors":  errs,
		"Notice":  notice,
		"MinDate": h.now().Format("2006-01-02"),
	}
	services, err := h.API.PublicServices(r.Context(), 0, maxPageSize)
	if err != nil {
		slog.Warn("Could not load services for booking form", "request_id", RequestID(r.Context()), "error", err)
		data["ServicesError"] = api.Message(err)
	} else {
		data["Services"] = services.Content
	}
	h.render(w, r, status, "book.html", data)
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	in, errs := validateBooking(r.PostForm, h.now())
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, r.PostForm, errs, "")
		return
	}

	booking, err := h.Customers.Client(r).CreateBooking(r.Context(), in)
	if err != nil {
		if api.IsUnauthorized(err) {
			h.renderForm(w, r, http.StatusUnauthorized, r.PostForm, nil, "Please log in to make a booking")
			return
		}
		slog.Warn("Booking failed", "request_id", RequestID(r.Context()), "error", err)
		notice := "Booking failed"
		if msg := api.Message(err); msg != "" {
			notice += ": " + msg
		}
		h.renderForm(w, r, http.StatusBadGateway, r.PostForm, nil, notice)
		return
	}

	slog.Info("Booking created", "booking_id", booking.ID, "service_id", in.ServiceID)
	h.flash(r, "success", "Booking created successfully! We will confirm it shortly.")
	h.redirect(w, r, "/book")
}

// validateBooking checks the form without touching the network. The
// appointment must be strictly after now, in the server's local zone.
func validateBooking(form url.Values, now time.Time) (models.BookingInput, map[string]string) {
	errs := make(map[string]string)
	in := models.BookingInput{
		CustomerName: strings.TrimSpace(form.Get("customerName")),
		Description:  strings.TrimSpace(form.Get("description")),
	}

	if in.CustomerName == "" {
		errs["customerName"] = "Name is required."
	}

	serviceID := strings.TrimSpace(form.Get("serviceId"))
	if serviceID == "" {
		errs["serviceId"] = "Please choose a service."
	} else if id, err := strconv.Atoi(serviceID); err != nil || id <= 0 {
		errs["serviceId"] = "Please choose a valid service."
	} else {
		in.ServiceID = id
	}

	date := strings.TrimSpace(form.Get("date"))
	clock := strings.TrimSpace(form.Get("time"))
	if date == "" {
		errs["date"] = "Date is required."
	}
	if clock == "" {
		errs["time"] = "Time is required."
	}
	if date != "" && clock != "" {
		when, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, now.Location())
		switch {
		case err != nil:
			errs["date"] = "Please enter a valid date and time."
		case !when.After(now):
			errs["date"] = "Booking date and time must be in the future."
		default:
			in.Date = models.NewLocalTime(when)
		}
	}
	return in, errs
}
