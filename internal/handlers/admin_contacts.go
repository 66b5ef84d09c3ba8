package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Maheesh09/studio-full-stack/internal/export"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/Maheesh09/studio-full-stack/internal/realtime"
)

// ListContacts shows the contact inbox with search and paging. The page
// reloads itself on every realtime event.
func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	ctx := r.Context()

	data := map[string]interface{}{"Search": search}
	status := http.StatusOK

	total, err := h.Contacts.CountContacts(ctx, search)
	if err != nil {
		slog.Error("Failed to count contacts", "error", err)
		data["Notice"] = "Could not load contact submissions."
		status = http.StatusInternalServerError
	}
	contacts, err := h.Contacts.ListContacts(ctx, search, size, page*size)
	if err != nil {
		slog.Error("Failed to list contacts", "error", err)
		data["Notice"] = "Could not load contact submissions."
		status = http.StatusInternalServerError
	}
	stats, err := h.Contacts.GetContactStats(ctx, h.now())
	if err != nil {
		slog.Error("Failed to load contact stats", "error", err)
	}

	data["Contacts"] = contacts
	data["Stats"] = stats
	data["Pager"] = newPager(r, page, size, total, totalPages(total, size))
	h.render(w, r, status, "contacts.html", data)
}

func (h *AdminHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	back := listURL("/admin/contacts", r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := h.Contacts.DeleteContact(r.Context(), id); err != nil {
		slog.Error("Failed to delete contact", "id", id, "error", err)
		h.flash(r, "error", "Error deleting submission.")
		h.redirect(w, r, back)
		return
	}

	h.flash(r, "success", "Submission deleted successfully!")
	h.redirect(w, r, back)
}

// ExportContactsCSV downloads every submission matching ?q.
func (h *AdminHandler) ExportContactsCSV(w http.ResponseWriter, r *http.Request) {
	h.exportContacts(w, r, "csv", "text/csv; charset=utf-8", export.ContactsCSV)
}

// ExportContactsXLSX is the spreadsheet variant of ExportContactsCSV.
func (h *AdminHandler) ExportContactsXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportContacts(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.ContactsXLSX)
}

func (h *AdminHandler) exportContacts(w http.ResponseWriter, r *http.Request, ext, contentType string,
	write func(io.Writer, []models.ContactSubmission) error) {
	contacts, err := h.Contacts.AllContacts(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		slog.Error("Failed to load contacts for export", "error", err)
		http.Error(w, "Error exporting contacts", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, contacts); err != nil {
		slog.Error("Failed to write contacts export", "format", ext, "error", err)
		http.Error(w, "Error exporting contacts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(ext, h.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

// ContactsWS streams contact inserts and deletes to the inbox page.
func (h *AdminHandler) ContactsWS(w http.ResponseWriter, r *http.Request) {
	realtime.ServeWS(h.Hub, w, r)
}
