package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/media"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/Maheesh09/studio-full-stack/internal/realtime"
	"github.com/Maheesh09/studio-full-stack/internal/session"
	"github.com/gorilla/csrf"
)

type AdminHandler struct {
	Admins    *session.Scope[models.AdminUser]
	Contacts  ContactStore
	Hub       *realtime.Hub
	Media     media.Storage
	Templates *TemplateCache
	Now       func() time.Time
}

func (h *AdminHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	sess := h.Admins.Session(r)
	data["Flashes"] = GetFlash(sess)
	data["CsrfField"] = csrf.TemplateField(r)
	data["CsrfToken"] = csrf.Token(r)
	data["Path"] = r.URL.Path
	if a, ok := h.Admins.Identity(r); ok {
		data["Admin"] = a
	}
	if err := sess.Save(r, w); err != nil {
		slog.Error("Failed to save admin session", "error", err)
	}
	h.Templates.Render(w, status, "admin/"+name, data)
}

func (h *AdminHandler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if err := h.Admins.Session(r).Save(r, w); err != nil {
		slog.Error("Failed to save admin session", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *AdminHandler) flash(r *http.Request, kind, message string) {
	addFlash(h.Admins.Session(r), kind, message)
}

// flashErrors adds one flash per field error in a stable order.
func (h *AdminHandler) flashErrors(r *http.Request, errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.flash(r, "error", errs[k])
	}
}

func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", map[string]interface{}{
		"Next": safeNext(r.URL.Query().Get("next"), "/admin"),
		"NIC":  "",
	})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	nic := strings.TrimSpace(r.PostForm.Get("nic"))
	password := r.PostForm.Get("password")
	next := safeNext(r.PostForm.Get("next"), "/admin")

	fail := func(status int, msg string) {
		h.render(w, r, status, "login.html", map[string]interface{}{
			"Notice": msg,
			"NIC":    nic,
			"Next":   next,
		})
	}

	if nic == "" || password == "" {
		fail(http.StatusUnprocessableEntity, "NIC and password are required.")
		return
	}

	who, err := h.Admins.Login(w, r, api.AdminCredentials{NIC: nic, Password: password})
	if err != nil {
		slog.Info("Admin login failed", "nic", nic, "error", err)
		if errors.Is(err, session.ErrUnauthenticated) || api.IsUnauthorized(err) {
			fail(http.StatusUnauthorized, "Invalid NIC or password.")
			return
		}
		fail(http.StatusBadGateway, "Login failed: "+api.Message(err))
		return
	}

	slog.Info("Admin login successful", "admin_id", who.ID)
	if next == "" {
		next = "/admin"
	}
	h.flash(r, "success", "Welcome, "+who.Name+"!")
	h.redirect(w, r, next)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Admins.Logout(w, r)
	h.flash(r, "success", "Logged out successfully!")
	h.redirect(w, r, "/admin/login")
}

// RequireAdmin verifies the admin session with the backend before every
// guarded request. Nothing reaches the response until the check is done:
// a verified admin runs next, anyone else is sent to the login page with
// the original path in ?next.
func (h *AdminHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loginURL := "/admin/login?next=" + url.QueryEscape(r.URL.RequestURI())

		if h.Admins.Expired(r) {
			slog.Info("Admin session idle too long", "path", r.URL.Path)
			h.Admins.Logout(w, r)
			h.flash(r, "error", "Your session expired after a period of inactivity. Please log in again.")
			h.redirect(w, r, loginURL)
			return
		}

		who, err := h.Admins.Refresh(w, r)
		if err != nil {
			if errors.Is(err, session.ErrUnauthenticated) {
				h.flash(r, "error", "You must be logged in to access this page.")
			} else {
				slog.Warn("Could not verify admin session", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
				h.flash(r, "error", "Could not verify your session: "+api.Message(err))
			}
			h.redirect(w, r, loginURL)
			return
		}
		next(w, h.Admins.WithIdentity(r, who))
	}
}

// DashboardStats are the dashboard counters. A nil count means the backend
// could not be asked.
type DashboardStats struct {
	Customers *int
	Bookings  *int
	Orders    *int
	Products  *int
	Contacts  models.ContactStats
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c := h.Admins.Client(r)
	ctx := r.Context()
	var stats DashboardStats

	count := func(name string, list func() (int, error)) *int {
		n, err := list()
		if err != nil {
			slog.Warn("Dashboard count failed", "resource", name, "request_id", RequestID(r.Context()), "error", err)
			return nil
		}
		return &n
	}
	stats.Customers = count("customers", func() (int, error) {
		p, err := c.Customers().List(ctx, 0, 1)
		return p.TotalElements, err
	})
	stats.Bookings = count("bookings", func() (int, error) {
		p, err := c.Bookings().List(ctx, 0, 1)
		return p.TotalElements, err
	})
	stats.Orders = count("orders", func() (int, error) {
		p, err := c.Orders().List(ctx, 0, 1)
		return p.TotalElements, err
	})
	stats.Products = count("products", func() (int, error) {
		p, err := c.Products().List(ctx, 0, 1)
		return p.TotalElements, err
	})

	contactStats, err := h.Contacts.GetContactStats(ctx, h.now())
	if err != nil {
		slog.Error("Failed to load contact stats", "error", err)
	}
	stats.Contacts = contactStats

	h.render(w, r, http.StatusOK, "dashboard.html", map[string]interface{}{
		"Stats": stats,
	})
}

// pathID reads the {id} path segment.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil && id > 0
}

// parseForm handles both urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(10 << 20) // 10MB
	}
	return r.ParseForm()
}

// listURL points back at a list page, keeping the page the form was posted from.
func listURL(base string, r *http.Request) string {
	q := url.Values{}
	if p := r.FormValue("page"); p != "" {
		q.Set("page", p)
	}
	if s := r.FormValue("size"); s != "" {
		q.Set("size", s)
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}
