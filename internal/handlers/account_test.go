package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func registrationForm() url.Values {
	return url.Values{
		"name":     {"Jane Doe"},
		"email":    {"jane@example.com"},
		"phone":    {"+94 77 123 4567"},
		"password": {"correct-horse"},
	}
}

func TestRegisterSuccessFlashesAndResets(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/customers/register": {status: http.StatusCreated, body: `{"status":"ok","customerId":12}`},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register", registrationForm()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/register" {
		t.Errorf("Location = %q", loc)
	}

	next := httptest.NewRecorder()
	h.RegisterForm(next, withCookies(rec, httptest.NewRequest(http.MethodGet, "/register", nil)))
	body := next.Body.String()
	if !strings.Contains(body, "Registration successful!") {
		t.Error("success flash not shown after redirect")
	}
	if strings.Contains(body, "jane@example.com") {
		t.Error("form was not reset")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/customers/register": {status: http.StatusConflict, body: `{"message":"Email already registered"}`},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register", registrationForm()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Email already in use") {
		t.Error("missing duplicate email message")
	}
	if !strings.Contains(body, `value="jane@example.com"`) || !strings.Contains(body, `value="Jane Doe"`) {
		t.Error("form values were not kept")
	}
	if strings.Contains(body, "correct-horse") {
		t.Error("password echoed back into the page")
	}
}

func TestRegisterBackendFieldErrors(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/customers/register": {status: http.StatusBadRequest, body: `{"fields":{"phone":"Phone number is already linked to an account"}}`},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register", registrationForm()))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Phone number is already linked to an account") {
		t.Error("backend field error not shown inline")
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(url.Values)
		field string
	}{
		{"valid", func(url.Values) {}, ""},
		{"long name", func(v url.Values) { v.Set("name", strings.Repeat("a", 21)) }, "name"},
		{"bad email", func(v url.Values) { v.Set("email", "jane@") }, "email"},
		{"long email", func(v url.Values) { v.Set("email", strings.Repeat("a", 40)+"@x.com") }, "email"},
		{"bad phone", func(v url.Values) { v.Set("phone", "call me") }, "phone"},
		{"short password", func(v url.Values) { v.Set("password", "1234567") }, "password"},
		{"long password", func(v url.Values) { v.Set("password", strings.Repeat("p", 73)) }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := registrationForm()
			tt.edit(form)
			_, errs := validateRegistration(form)
			if tt.field == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if _, ok := errs[tt.field]; !ok || len(errs) != 1 {
				t.Errorf("errors = %v, want only %q", errs, tt.field)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/customers/login": {status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{"email": {"jane@example.com"}, "password": {"wrong-password"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Error("missing login failure notice")
	}
	if calls := b.calls("GET /api/customers/me"); len(calls) != 0 {
		t.Errorf("identity queried after failed login: %v", calls)
	}
}

func TestLoginRedirectsToNext(t *testing.T) {
	b := newBackend(map[string]reply{
		"POST /api/customers/login": {body: `{"status":"ok"}`},
		"GET /api/customers/me":     {body: `{"customerId":3,"name":"Jane Doe","email":"jane@example.com"}`},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"correct-horse"},
		"next":     {"/my-orders?page=1"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/my-orders?page=1" {
		t.Errorf("Location = %q", loc)
	}
}

func TestProfileRequiresLogin(t *testing.T) {
	b := newBackend(map[string]reply{
		"GET /api/customers/me": {status: http.StatusUnauthorized},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.Profile(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fprofile" {
		t.Errorf("Location = %q", loc)
	}
	if calls := b.calls("GET /api/customers/profile"); len(calls) != 0 {
		t.Errorf("profile fetched without a session: %v", calls)
	}
}

func TestMyOrdersPassesPage(t *testing.T) {
	b := newBackend(map[string]reply{
		"GET /api/customers/me":           {body: `{"customerId":3,"name":"Jane Doe","email":"jane@example.com"}`},
		"GET /api/admin/orders/my-orders": {body: `{"content":[],"totalElements":0,"totalPages":0}`},
	})
	h := newPublicHandler(t, b)

	rec := httptest.NewRecorder()
	h.MyOrders(rec, httptest.NewRequest(http.MethodGet, "/my-orders?page=1&size=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	calls := b.calls("GET /api/admin/orders/my-orders")
	if len(calls) != 1 || calls[0] != "GET /api/admin/orders/my-orders?page=1&size=5" {
		t.Errorf("calls = %v", calls)
	}
}
