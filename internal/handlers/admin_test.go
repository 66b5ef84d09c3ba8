package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/shopspring/decimal"
)

const adminMe = `{"adminId":1,"adminNic":"991234567V","adminName":"Nimal"}`

func TestRequireAdminRedirectsAnonymous(t *testing.T) {
	b := newBackend(map[string]reply{
		"GET /api/admins/me": {status: http.StatusUnauthorized},
	})
	h := newAdminHandler(t, b)

	ran := false
	guarded := h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})

	rec := httptest.NewRecorder()
	guarded(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?page=2", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc, want := rec.Header().Get("Location"), "/admin/login?next=%2Fadmin%2Forders%3Fpage%3D2"; loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}
	if ran {
		t.Error("guarded handler ran for an anonymous request")
	}
}

func TestRequireAdminPassesVerifiedAdmin(t *testing.T) {
	b := newBackend(map[string]reply{
		"GET /api/admins/me": {body: adminMe},
	})
	h := newAdminHandler(t, b)

	var seen models.AdminUser
	guarded := h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = h.Admins.Identity(r)
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	guarded(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if seen.Name != "Nimal" || seen.ID != 1 {
		t.Errorf("identity = %+v", seen)
	}
}

func TestRequireAdminExpiresIdleSession(t *testing.T) {
	b := newBackend(map[string]reply{
		"GET /api/admins/me":      {body: adminMe},
		"POST /api/admins/logout": {status: http.StatusNoContent},
	})
	h := newAdminHandler(t, b)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h.Admins.Now = func() time.Time { return start }

	ok := h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {})
	first := httptest.NewRecorder()
	ok(first, httptest.NewRequest(http.MethodGet, "/admin", nil))

	h.Admins.Now = func() time.Time { return start.Add(31 * time.Minute) }
	ran := false
	guarded := h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) { ran = true })

	rec := httptest.NewRecorder()
	guarded(rec, withCookies(first, httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)))

	if rec.Code != http.StatusSeeOther || ran {
		t.Fatalf("status = %d, ran = %v; want redirect without running", rec.Code, ran)
	}
	if calls := b.calls("POST /api/admins/logout"); len(calls) != 1 {
		t.Errorf("logout calls = %v", calls)
	}
}

func TestResourceListIssuesOneRequest(t *testing.T) {
	b := newBackend(map[string]reply{
		"GET /api/admin/categories": {body: `{"content":[{"id":4,"name":"Frames","description":"Wooden"}],"totalElements":21,"totalPages":3,"number":2}`},
	})
	h := newAdminHandler(t, b)

	var categories ResourcePage
	for _, p := range h.Resources() {
		if p.Name() == "categories" {
			categories = p
		}
	}
	if categories == nil {
		t.Fatal("categories page not registered")
	}

	rec := httptest.NewRecorder()
	categories.List(rec, httptest.NewRequest(http.MethodGet, "/admin/categories?page=2&size=10&edit=4", nil))

	calls := b.calls("GET ")
	if len(calls) != 1 || calls[0] != "GET /api/admin/categories?page=2&size=10" {
		t.Fatalf("backend calls = %v", calls)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Edit category #4") {
		t.Error("edit form not prefilled from the listed row")
	}
	if !strings.Contains(body, "Page 3 of 3") {
		t.Error("pager not rendered")
	}
}

func TestResourceCreateValidationSkipsBackend(t *testing.T) {
	b := newBackend(map[string]reply{})
	h := newAdminHandler(t, b)
	page := h.categoriesPage()

	rec := httptest.NewRecorder()
	page.Create(rec, postForm("/admin/categories", url.Values{"name": {"  "}, "page": {"1"}, "size": {"10"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/categories?page=1&size=10" {
		t.Errorf("Location = %q", loc)
	}
	if calls := b.calls("POST"); len(calls) != 0 {
		t.Errorf("backend calls = %v", calls)
	}
}

func TestOrderFormTotals(t *testing.T) {
	r := postForm("/admin/orders", url.Values{
		"customer_id":     {"5"},
		"product_id":      {"7", ""},
		"quantity":        {"2", ""},
		"price_each":      {"150", ""},
		"advance_payment": {"100"},
	})
	if err := r.ParseForm(); err != nil {
		t.Fatal(err)
	}

	in, errs := orderForm(r, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(in.Items) != 1 {
		t.Fatalf("items = %+v", in.Items)
	}
	item := in.Items[0]
	if item.ProductID != 7 || item.Quantity != 2 || !item.LineTotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("item = %+v", item)
	}
	if !in.TotalPrice.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total = %s, want 300", in.TotalPrice)
	}
	if !in.BalancePayment.Equal(decimal.NewFromInt(200)) {
		t.Errorf("balance = %s, want 200", in.BalancePayment)
	}
}

func TestOrderFormRejectsAdvanceOverTotal(t *testing.T) {
	r := postForm("/admin/orders", url.Values{
		"customer_id":     {"5"},
		"product_id":      {"7"},
		"quantity":        {"1"},
		"price_each":      {"150"},
		"advance_payment": {"200"},
	})
	r.ParseForm()

	if _, errs := orderForm(r, false); errs["advance_payment"] == "" {
		t.Errorf("expected advance payment error, got %v", errs)
	}
}

func TestOrderFormNeedsItems(t *testing.T) {
	r := postForm("/admin/orders", url.Values{"customer_id": {"5"}})
	r.ParseForm()

	if _, errs := orderForm(r, false); errs["items"] == "" {
		t.Errorf("expected items error, got %v", errs)
	}
}

func TestExportContactsCSV(t *testing.T) {
	h := newAdminHandler(t, newBackend(nil))
	h.Now = func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) }
	h.Contacts = &fakeContacts{all: []models.ContactSubmission{
		{ID: 1, FullName: "Ann", Phone: "0771234567", Message: "Frame, please", CreatedAt: time.Now()},
	}}

	rec := httptest.NewRecorder()
	h.ExportContactsCSV(rec, httptest.NewRequest(http.MethodGet, "/admin/contacts/export.csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="contacts-2026-04-02.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := strings.Join(rows[0], ","); got != "Name,Phone,Message,Created At" {
		t.Errorf("header = %q", got)
	}
	if rows[1][2] != "Frame, please" {
		t.Errorf("message = %q", rows[1][2])
	}
}

func TestAdminLoginRedirects(t *testing.T) {
	tests := []struct {
		name, next, want string
	}{
		{"admin path", "/admin/orders?page=1", "/admin/orders?page=1"},
		{"no next", "", "/admin"},
		{"public path", "/profile", "/admin"},
		{"other host", "https://evil.example/admin", "/admin"},
		{"scheme-relative", "//evil.example/admin", "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(map[string]reply{
				"POST /api/admins/login": {body: `{"status":"ok"}`},
				"GET /api/admins/me":     {body: adminMe},
			})
			h := newAdminHandler(t, b)

			rec := httptest.NewRecorder()
			h.Login(rec, postForm("/admin/login", url.Values{
				"nic":      {"991234567V"},
				"password": {"s3cret-pass"},
				"next":     {tt.next},
			}))

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.want {
				t.Errorf("Location = %q, want %q", loc, tt.want)
			}
			var creds api.AdminCredentials
			b.sent(t, "POST /api/admins/login", &creds)
			if creds.NIC != "991234567V" || creds.Password != "s3cret-pass" {
				t.Errorf("credentials = %+v", creds)
			}
		})
	}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/admins/login": {status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`},
	})
	h := newAdminHandler(t, b)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/admin/login", url.Values{"nic": {"991234567V"}, "password": {"wrong"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Invalid NIC or password.") {
		t.Error("missing login failure notice")
	}
	if !strings.Contains(body, `value="991234567V"`) {
		t.Error("NIC not kept in the form")
	}
	if calls := b.calls("GET /api/admins/me"); len(calls) != 0 {
		t.Errorf("identity queried after failed login: %v", calls)
	}
}

func TestAdminLoginRequiresFields(t *testing.T) {
	b := newBackend(map[string]reply{})
	h := newAdminHandler(t, b)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/admin/login", url.Values{"nic": {"991234567V"}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if calls := b.calls("POST"); len(calls) != 0 {
		t.Errorf("backend calls = %v", calls)
	}
}

const categoryList = `{"content":[{"id":4,"name":"Frames","description":"Wooden"}],"totalElements":21,"totalPages":3,"number":2}`

func categoryRequest(target string, form url.Values) *http.Request {
	req := postForm(target, form)
	req.SetPathValue("id", "4")
	return req
}

func TestResourceUpdate(t *testing.T) {
	form := url.Values{"name": {"Frames"}, "description": {"Oak and teak"}, "page": {"2"}, "size": {"10"}}

	t.Run("saved", func(t *testing.T) {
		b := newBackend(map[string]reply{
			"PUT /api/admin/categories/4": {body: `{"id":4,"name":"Frames"}`},
		})
		h := newAdminHandler(t, b)

		rec := httptest.NewRecorder()
		h.categoriesPage().Update(rec, categoryRequest("/admin/categories/4", form))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/categories?page=2&size=10" {
			t.Errorf("Location = %q", loc)
		}
		var sent models.CategoryInput
		b.sent(t, "PUT /api/admin/categories/4", &sent)
		if sent.Name != "Frames" || sent.Description != "Oak and teak" {
			t.Errorf("body = %+v", sent)
		}
	})

	t.Run("backend refuses", func(t *testing.T) {
		b := newBackend(map[string]reply{
			"PUT /api/admin/categories/4": {status: http.StatusConflict, body: `{"message":"Category name already exists"}`},
			"GET /api/admin/categories":   {body: categoryList},
		})
		h := newAdminHandler(t, b)
		page := h.categoriesPage()

		rec := httptest.NewRecorder()
		page.Update(rec, categoryRequest("/admin/categories/4", form))

		loc := rec.Header().Get("Location")
		if rec.Code != http.StatusSeeOther || loc != "/admin/categories?page=2&size=10&edit=4" {
			t.Fatalf("status = %d, Location = %q", rec.Code, loc)
		}

		next := httptest.NewRecorder()
		page.List(next, withCookies(rec, httptest.NewRequest(http.MethodGet, loc, nil)))
		body := next.Body.String()
		if !strings.Contains(body, "Could not update category: Category name already exists") {
			t.Error("failure flash not shown")
		}
		if !strings.Contains(body, "Edit category #4") {
			t.Error("edit form not reopened")
		}
	})
}

func TestResourceDelete(t *testing.T) {
	form := url.Values{"page": {"2"}, "size": {"10"}}

	t.Run("deleted", func(t *testing.T) {
		b := newBackend(map[string]reply{
			"DELETE /api/admin/categories/4": {status: http.StatusNoContent},
		})
		h := newAdminHandler(t, b)

		rec := httptest.NewRecorder()
		h.categoriesPage().Delete(rec, categoryRequest("/admin/categories/4/delete", form))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/categories?page=2&size=10" {
			t.Errorf("Location = %q", loc)
		}
		if calls := b.calls("DELETE /api/admin/categories/4"); len(calls) != 1 {
			t.Errorf("delete calls = %v", calls)
		}
	})

	t.Run("backend refuses", func(t *testing.T) {
		b := newBackend(map[string]reply{
			"DELETE /api/admin/categories/4": {status: http.StatusConflict, body: `{"message":"Category still has products"}`},
			"GET /api/admin/categories":      {body: categoryList},
		})
		h := newAdminHandler(t, b)
		page := h.categoriesPage()

		rec := httptest.NewRecorder()
		page.Delete(rec, categoryRequest("/admin/categories/4/delete", form))

		loc := rec.Header().Get("Location")
		if loc != "/admin/categories?page=2&size=10" {
			t.Fatalf("Location = %q", loc)
		}
		next := httptest.NewRecorder()
		page.List(next, withCookies(rec, httptest.NewRequest(http.MethodGet, loc, nil)))
		if !strings.Contains(next.Body.String(), "Could not delete category: Category still has products") {
			t.Error("failure flash not shown")
		}
	})
}

func TestAdminBookingCreateIsRefused(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/bookings": {status: http.StatusCreated, body: `{"bookingId":9}`},
		"GET /api/bookings":  {body: `{"content":[],"totalElements":0,"totalPages":0}`},
	})
	h := newAdminHandler(t, b)
	page := h.bookingsPage()

	form := bookingForm("2026-05-11", "10:00")
	form.Set("page", "0")
	rec := httptest.NewRecorder()
	page.Create(rec, postForm("/admin/bookings", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if calls := b.calls("POST /api/bookings"); len(calls) != 0 {
		t.Errorf("booking created with the admin session: %v", calls)
	}

	next := httptest.NewRecorder()
	page.List(next, withCookies(rec, httptest.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil)))
	body := next.Body.String()
	if !strings.Contains(body, `role="status">Bookings are made by customers from the booking page.`) {
		t.Error("refusal flash not shown")
	}
	if strings.Contains(body, `action="/admin/bookings"`) {
		t.Error("create form still rendered")
	}
}

type memStorage struct {
	saved []string
}

func (m *memStorage) Save(_ context.Context, name string, _ []byte) (string, error) {
	m.saved = append(m.saved, name)
	return "https://cdn.example/studio/" + name, nil
}

func TestProductCreateStoresImage(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/admin/products": {status: http.StatusCreated, body: `{"product_id":9}`},
	})
	h := newAdminHandler(t, b)
	store := &memStorage{}
	h.Media = store

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("name", "Oak frame")
	mw.WriteField("price", "1500")
	fw, err := mw.CreateFormFile("image", "oak.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(img.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.productsPage().Create(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved = %v", store.saved)
	}
	var sent models.ProductInput
	b.sent(t, "POST /api/admin/products", &sent)
	if want := "https://cdn.example/studio/" + store.saved[0]; sent.ImageURL != want {
		t.Errorf("image_url = %q, want %q", sent.ImageURL, want)
	}
	if !sent.Price.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("price = %s", sent.Price)
	}
}

func TestBackendWarningsCarryRequestID(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	b := newBackend(map[string]reply{
		"GET /api/admin/categories": {status: http.StatusServiceUnavailable},
	})
	h := newAdminHandler(t, b)
	handler := LoggingMiddleware(http.HandlerFunc(h.categoriesPage().List))

	req := httptest.NewRequest(http.MethodGet, "/admin/categories", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	found := false
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, `msg="Failed to list resource"`) {
			found = true
			if !strings.Contains(line, "request_id=req-42") {
				t.Errorf("warning without request id: %s", line)
			}
		}
	}
	if !found {
		t.Errorf("no list failure logged:\n%s", logs.String())
	}
}
