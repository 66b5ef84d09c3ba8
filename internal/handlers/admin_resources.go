package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Maheesh09/studio-full-stack/internal/api"
)

// ResourcePage is one admin list page backed by a paged backend collection.
type ResourcePage interface {
	Name() string
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// formFunc turns a posted form into a request body. editing is true for updates.
type formFunc[In any] func(r *http.Request, editing bool) (In, map[string]string)

type resourcePage[T, In any] struct {
	h        *AdminHandler
	name     string
	singular string
	resource func(*api.Client) api.Resource[T, In]
	id       func(T) int
	form     formFunc[In]

	// createBlocked, when set, is flashed instead of creating anything.
	createBlocked string

	// fetchEdit loads the row being edited with its own GET. Set it where
	// the list endpoint only returns summaries.
	fetchEdit bool

	// extras adds lookup data (services, categories...) to the page.
	extras func(r *http.Request, c *api.Client, data map[string]interface{})
}

func (p *resourcePage[T, In]) Name() string {
	return p.name
}

func (p *resourcePage[T, In]) base() string {
	return "/admin/" + p.name
}

// List issues one GET for the requested page. ?edit=<id> opens the form on
// a row of that page, or on the full record for fetchEdit pages.
func (p *resourcePage[T, In]) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	client := p.h.Admins.Client(r)

	res, err := p.resource(client).List(r.Context(), page, size)
	data := map[string]interface{}{}
	status := http.StatusOK
	if err != nil {
		slog.Warn("Failed to list resource", "resource", p.name, "request_id", RequestID(r.Context()), "error", err)
		data["Notice"] = "Could not load " + p.name + ": " + api.Message(err)
		status = http.StatusBadGateway
	}
	data["Rows"] = res.Content
	data["Pager"] = pagerFor(r, page, size, res)

	if editID, err := strconv.Atoi(r.URL.Query().Get("edit")); err == nil {
		p.loadEditing(r, client, editID, res.Content, data)
	}

	if p.extras != nil {
		p.extras(r, client, data)
	}
	p.h.render(w, r, status, p.name+".html", data)
}

func (p *resourcePage[T, In]) loadEditing(r *http.Request, client *api.Client, id int, rows []T, data map[string]interface{}) {
	if p.fetchEdit {
		row, err := p.resource(client).Get(r.Context(), id)
		if err != nil {
			slog.Warn("Failed to load resource for editing", "resource", p.name, "id", id, "request_id", RequestID(r.Context()), "error", err)
			data["Notice"] = "Could not load " + p.singular + " #" + strconv.Itoa(id) + ": " + api.Message(err)
			return
		}
		data["Editing"] = row
		data["EditID"] = id
		return
	}
	for _, row := range rows {
		if p.id(row) == id {
			data["Editing"] = row
			data["EditID"] = id
			return
		}
	}
}

func (p *resourcePage[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		p.h.flash(r, "error", "Invalid form data.")
		p.h.redirect(w, r, p.base())
		return
	}
	back := listURL(p.base(), r)

	if p.createBlocked != "" {
		p.h.flash(r, "error", p.createBlocked)
		p.h.redirect(w, r, back)
		return
	}

	in, errs := p.form(r, false)
	if len(errs) > 0 {
		p.h.flashErrors(r, errs)
		p.h.redirect(w, r, back)
		return
	}

	if _, err := p.resource(p.h.Admins.Client(r)).Create(r.Context(), in); err != nil {
		slog.Warn("Failed to create resource", "resource", p.name, "request_id", RequestID(r.Context()), "error", err)
		p.h.flash(r, "error", "Could not create "+p.singular+": "+api.Message(err))
		p.h.redirect(w, r, back)
		return
	}

	slog.Info("Resource created", "resource", p.name)
	p.h.flash(r, "success", capitalize(p.singular)+" created successfully!")
	p.h.redirect(w, r, back)
}

func (p *resourcePage[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := parseForm(r); err != nil {
		p.h.flash(r, "error", "Invalid form data.")
		p.h.redirect(w, r, p.base())
		return
	}
	back := listURL(p.base(), r)

	in, errs := p.form(r, true)
	if len(errs) > 0 {
		p.h.flashErrors(r, errs)
		p.h.redirect(w, r, withEdit(back, id))
		return
	}

	if _, err := p.resource(p.h.Admins.Client(r)).Update(r.Context(), id, in); err != nil {
		slog.Warn("Failed to update resource", "resource", p.name, "id", id, "request_id", RequestID(r.Context()), "error", err)
		p.h.flash(r, "error", "Could not update "+p.singular+": "+api.Message(err))
		p.h.redirect(w, r, withEdit(back, id))
		return
	}

	slog.Info("Resource updated", "resource", p.name, "id", id)
	p.h.flash(r, "success", capitalize(p.singular)+" updated successfully!")
	p.h.redirect(w, r, back)
}

func (p *resourcePage[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	back := listURL(p.base(), r)

	if err := p.resource(p.h.Admins.Client(r)).Delete(r.Context(), id); err != nil {
		slog.Warn("Failed to delete resource", "resource", p.name, "id", id, "request_id", RequestID(r.Context()), "error", err)
		p.h.flash(r, "error", "Could not delete "+p.singular+": "+api.Message(err))
		p.h.redirect(w, r, back)
		return
	}

	slog.Info("Resource deleted", "resource", p.name, "id", id)
	p.h.flash(r, "success", capitalize(p.singular)+" deleted successfully!")
	p.h.redirect(w, r, back)
}

func withEdit(u string, id int) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "edit=" + strconv.Itoa(id)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Resources lists every CRUD page in navigation order.
func (h *AdminHandler) Resources() []ResourcePage {
	return []ResourcePage{
		h.customersPage(),
		h.bookingsPage(),
		h.ordersPage(),
		h.productsPage(),
		h.categoriesPage(),
		h.servicesPage(),
		h.suppliersPage(),
	}
}
