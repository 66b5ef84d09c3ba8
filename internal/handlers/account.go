package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/Maheesh09/studio-full-stack/internal/session"
)

func (h *PublicHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", map[string]interface{}{})
}

func (h *PublicHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	in, errs := validateRegistration(r.PostForm)
	if len(errs) > 0 {
		h.renderRegister(w, r, http.StatusUnprocessableEntity, errs, "")
		return
	}

	res, err := h.API.RegisterCustomer(r.Context(), in)
	if err != nil {
		var apiErr *api.Error
		switch {
		case api.IsStatus(err, http.StatusConflict):
			h.renderRegister(w, r, http.StatusConflict, map[string]string{"email": "Email already in use"}, "")
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && len(apiErr.Fields()) > 0:
			h.renderRegister(w, r, http.StatusUnprocessableEntity, apiErr.Fields(), "")
		default:
			slog.Warn("Registration failed", "request_id", RequestID(r.Context()), "error", err)
			h.renderRegister(w, r, http.StatusBadGateway, nil, "Registration failed: "+api.Message(err))
		}
		return
	}

	slog.Info("Customer registered", "customer_id", res.CustomerID)
	h.flash(r, "success", "Registration successful! You can now log in.")
	h.redirect(w, r, "/register")
}

func (h *PublicHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, errs map[string]string, notice string) {
	values := url.Values{}
	for k, v := range r.PostForm {
		if k != "password" {
			values[k] = v
		}
	}
	h.render(w, r, status, "register.html", map[string]interface{}{
		"Errors": errs,
		"Values": values,
		"Notice": notice,
	})
}

func validateRegistration(form url.Values) (api.Registration, map[string]string) {
	in := api.Registration{
		Name:     strings.TrimSpace(form.Get("name")),
		Email:    strings.TrimSpace(form.Get("email")),
		Phone:    strings.TrimSpace(form.Get("phone")),
		Password: form.Get("password"),
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
	case tooLong(in.Email, 45):
		errs["email"] = "Email must be at most 45 characters."
	case !isValidEmail(in.Email):
		errs["email"] = "Please enter a valid email address."
	}
	switch {
	case in.Phone == "":
		errs["phone"] = "Phone number is required."
	case !phonePattern.MatchString(in.Phone):
		errs["phone"] = "Phone number may only contain digits, spaces, +, - and parentheses."
	}
	switch n := len(in.Password); {
	case n < 8:
		errs["password"] = "Password must be at least 8 characters."
	case n > 72:
		errs["password"] = "Password must be at most 72 characters."
	}
	return in, errs
}

func (h *PublicHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", map[string]interface{}{
		"Next": safeNext(r.URL.Query().Get("next"), "/"),
	})
}

func (h *PublicHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	next := safeNext(r.PostForm.Get("next"), "/")

	if email == "" || password == "" {
		h.render(w, r, http.StatusUnprocessableEntity, "login.html", map[string]interface{}{
			"Notice": "Email and password are required.",
			"Values": url.Values{"email": {email}},
			"Next":   next,
		})
		return
	}

	who, err := h.Customers.Login(w, r, api.CustomerCredentials{Email: email, Password: password})
	if err != nil {
		msg := "Login failed: " + api.Message(err)
		if errors.Is(err, session.ErrUnauthenticated) || api.IsUnauthorized(err) {
			msg = "Invalid email or password."
		}
		slog.Info("Customer login failed", "email", email, "error", err)
		h.render(w, r, http.StatusUnauthorized, "login.html", map[string]interface{}{
			"Notice": msg,
			"Values": url.Values{"email": {email}},
			"Next":   next,
		})
		return
	}

	if next == "" {
		next = "/profile"
	}
	h.flash(r, "success", "Welcome back, "+who.Name+"!")
	h.redirect(w, r, next)
}

func (h *PublicHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Customers.Logout(w, r)
	h.flash(r, "success", "You have been logged out.")
	h.redirect(w, r, "/")
}

// requireCustomer reconciles the remembered identity with the backend. A
// 401 sends the visitor to the login page; an outage keeps the provisional
// identity when there is one.
func (h *PublicHandler) requireCustomer(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	who, err := h.Customers.Refresh(w, r)
	switch {
	case err == nil:
		return h.Customers.WithIdentity(r, who), true
	case errors.Is(err, session.ErrUnauthenticated):
	default:
		slog.Warn("Could not verify customer session", "request_id", RequestID(r.Context()), "error", err)
		if h.Customers.IsAuthenticated(r) {
			return r, true
		}
	}
	h.flash(r, "error", "Please log in to continue.")
	h.redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()))
	return r, false
}

func (h *PublicHandler) Profile(w http.ResponseWriter, r *http.Request) {
	r, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}

	profile, err := h.Customers.Client(r).CustomerProfile(r.Context())
	if api.IsUnauthorized(err) {
		h.Customers.Logout(w, r)
		h.flash(r, "error", "Your session has expired. Please log in again.")
		h.redirect(w, r, "/login?next=%2Fprofile")
		return
	}
	data := map[string]interface{}{}
	status := http.StatusOK
	if err != nil {
		slog.Warn("Could not load customer profile", "request_id", RequestID(r.Context()), "error", err)
		data["Notice"] = "Could not load your profile: " + api.Message(err)
		status = http.StatusBadGateway
	} else {
		data["Profile"] = profile
	}
	h.render(w, r, status, "profile.html", data)
}

func (h *PublicHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	r, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	orders, err := h.Customers.Client(r).MyOrders(r.Context(), page, size)
	if api.IsUnauthorized(err) {
		h.Customers.Logout(w, r)
		h.flash(r, "error", "Your session has expired. Please log in again.")
		h.redirect(w, r, "/login?next=%2Fmy-orders")
		return
	}
	data := map[string]interface{}{}
	status := http.StatusOK
	if err != nil {
		slog.Warn("Could not load customer orders", "request_id", RequestID(r.Context()), "error", err)
		data["Notice"] = "Could not load your orders: " + api.Message(err)
		status = http.StatusBadGateway
		orders = models.Page[models.Order]{}
	}
	data["Orders"] = orders.Content
	data["Pager"] = pagerFor(r, page, size, orders)
	h.render(w, r, status, "my_orders.html", data)
}
