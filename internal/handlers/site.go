package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/content"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/Maheesh09/studio-full-stack/internal/session"
	"github.com/gorilla/csrf"
)

// ContactStore is the slice of the store the handlers need.
type ContactStore interface {
	CreateContact(ctx context.Context, c *models.ContactSubmission) error
	ListContacts(ctx context.Context, search string, limit, offset int) ([]models.ContactSubmission, error)
	AllContacts(ctx context.Context, search string) ([]models.ContactSubmission, error)
	CountContacts(ctx context.Context, search string) (int, error)
	DeleteContact(ctx context.Context, id int64) error
	GetContactStats(ctx context.Context, now time.Time) (models.ContactStats, error)
}

// PublicHandler serves the customer-facing site.
type PublicHandler struct {
	API          *api.Client
	Customers    *session.Scope[models.Customer]
	Contacts     ContactStore
	Catalog      *content.Catalog
	Templates    *TemplateCache
	ChatWidgetID string
}

// render fills in what the layout needs, clears the flashes and writes the page.
func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	sess := h.Customers.Session(r)
	data["Flashes"] = GetFlash(sess)
	data["CsrfField"] = csrf.TemplateField(r)
	data["ChatWidgetID"] = h.ChatWidgetID
	data["Path"] = r.URL.Path
	if c, ok := h.Customers.Identity(r); ok {
		data["Customer"] = c
	}
	if _, ok := data["Values"]; !ok {
		data["Values"] = url.Values{}
	}
	if errs, _ := data["Errors"].(map[string]string); errs == nil {
		data["Errors"] = map[string]string{}
	}
	if err := sess.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	h.Templates.Render(w, status, "public/"+name, data)
}

// redirect saves the customer session (flashes, backend cookies) and redirects.
func (h *PublicHandler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if err := h.Customers.Session(r).Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *PublicHandler) flash(r *http.Request, kind, message string) {
	addFlash(h.Customers.Session(r), kind, message)
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.render(w, r, http.StatusNotFound, "not_found.html", map[string]interface{}{})
		return
	}
	h.render(w, r, http.StatusOK, "home.html", map[string]interface{}{
		"Services": h.Catalog.All(),
	})
}

// Services lists the catalogue together with the bookable services and
// their current prices from the backend. A backend failure only hides the
// price list.
func (h *PublicHandler) Services(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Services": h.Catalog.All(),
	}
	page, err := h.API.PublicServices(r.Context(), 0, maxPageSize)
	if err != nil {
		slog.Warn("Could not load service prices", "request_id", RequestID(r.Context()), "error", err)
		data["PriceError"] = api.Message(err)
	} else {
		data["Prices"] = page.Content
	}
	h.render(w, r, http.StatusOK, "services.html", data)
}

func (h *PublicHandler) ServiceDetail(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.Catalog.Get(r.PathValue("slug"))
	if !ok {
		h.render(w, r, http.StatusNotFound, "not_found.html", map[string]interface{}{})
		return
	}
	h.render(w, r, http.StatusOK, "service.html", map[string]interface{}{
		"Service": svc,
		"Related": h.Catalog.All(),
	})
}

func (h *PublicHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contact.html", map[string]interface{}{})
}

func (h *PublicHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	c, errs := validateContact(r.PostForm)
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "contact.html", map[string]interface{}{
			"Errors": errs,
			"Values": r.PostForm,
		})
		return
	}

	if err := h.Contacts.CreateContact(r.Context(), &c); err != nil {
		slog.Error("Failed to save contact submission", "error", err)
		h.render(w, r, http.StatusInternalServerError, "contact.html", map[string]interface{}{
			"Notice": "We could not send your message. Please try again.",
			"Values": r.PostForm,
		})
		return
	}

	slog.Info("Contact submission received", "id", c.ID)
	h.flash(r, "success", "Thank you! Your message has been sent. We'll get back to you soon.")
	h.redirect(w, r, "/contact")
}

var phonePattern = regexp.MustCompile(`^[0-9+\-()\s]{0,45}$`)

// Basic email validation regex
var emailRegex = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

func validateContact(form url.Values) (models.ContactSubmission, map[string]string) {
	c := models.ContactSubmission{
		FullName: strings.TrimSpace(form.Get("full_name")),
		Phone:    strings.TrimSpace(form.Get("phone")),
		Message:  strings.TrimSpace(form.Get("message")),
	}

	errs := make(map[string]string)
	switch {
	case c.FullName == "":
		errs["full_name"] = "Full name is required."
	case tooLong(c.FullName, 100):
		errs["full_name"] = "Full name must be at most 100 characters."
	}
	switch {
	case c.Phone == "":
		errs["phone"] = "Phone number is required."
	case !phonePattern.MatchString(c.Phone):
		errs["phone"] = "Phone number may only contain digits, spaces, +, - and parentheses."
	}
	switch {
	case c.Message == "":
		errs["message"] = "Message is required."
	case tooLong(c.Message, 2000):
		errs["message"] = "Message must be at most 2000 characters."
	}
	return c, errs
}

// safeNext accepts only a local path under prefix.
func safeNext(next, prefix string) string {
	if next == "" || !strings.HasPrefix(next, prefix) || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	if u.Path != prefix && !strings.HasPrefix(u.Path, strings.TrimRight(prefix, "/")+"/") {
		return ""
	}
	return next
}
