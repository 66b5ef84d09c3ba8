package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/media"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/shopspring/decimal"
)

// parsePrice reads a non-negative amount with at most two decimals.
func parsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.New("invalid price format")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("price must not be negative")
	}
	return d.Round(2), nil
}

func (h *AdminHandler) productsPage() ResourcePage {
	return &resourcePage[models.Product, models.ProductInput]{
		h:        h,
		name:     "products",
		singular: "product",
		resource: (*api.Client).Products,
		id:       func(p models.Product) int { return p.ID },
		form:     h.productForm,
		extras: func(r *http.Request, c *api.Client, data map[string]interface{}) {
			page, err := c.Categories().List(r.Context(), 0, maxPageSize)
			if err != nil {
				slog.Warn("Could not load categories", "request_id", RequestID(r.Context()), "error", err)
				return
			}
			data["Categories"] = page.Content
		},
	}
}

// productForm also stores an optional uploaded image and sends its URL.
// Without a new upload the current image URL is kept.
func (h *AdminHandler) productForm(r *http.Request, editing bool) (models.ProductInput, map[string]string) {
	errs := make(map[string]string)
	in := models.ProductInput{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		Availability: r.FormValue("availability"),
		ImageURL:     r.FormValue("image_url"),
	}

	if in.Name == "" {
		errs["name"] = "Name is required."
	}
	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		errs["price"] = "Price: " + err.Error() + "."
	}
	in.Price = price

	if in.Availability == "" {
		in.Availability = models.Availabilities[0]
	}
	if !slices.Contains(models.Availabilities, in.Availability) {
		errs["availability"] = "Invalid availability selected."
	}

	if raw := r.FormValue("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			errs["category_id"] = "Invalid category selected."
		}
		in.CategoryID = id
	}

	if len(errs) > 0 {
		return in, errs
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		url, err := media.SaveImage(r.Context(), h.Media, file, header.Filename)
		switch {
		case errors.Is(err, media.ErrUnsupportedFormat):
			errs["image"] = "Unsupported image format. Only PNG, JPG, JPEG are allowed."
		case err != nil:
			slog.Error("Failed to store product image", "error", err)
			errs["image"] = "Error saving image file."
		default:
			in.ImageURL = url
			h.flash(r, "info", "Image saved at "+url+".")
		}
	}
	return in, errs
}

func (h *AdminHandler) categoriesPage() ResourcePage {
	return &resourcePage[models.Category, models.CategoryInput]{
		h:        h,
		name:     "categories",
		singular: "category",
		resource: (*api.Client).Categories,
		id:       func(c models.Category) int { return c.ID },
		form: func(r *http.Request, _ bool) (models.CategoryInput, map[string]string) {
			in := models.CategoryInput{
				Name:        strings.TrimSpace(r.FormValue("name")),
				Description: strings.TrimSpace(r.FormValue("description")),
			}
			errs := make(map[string]string)
			if in.Name == "" {
				errs["name"] = "Name is required."
			}
			return in, errs
		},
	}
}

func (h *AdminHandler) servicesPage() ResourcePage {
	return &resourcePage[models.Service, models.ServiceInput]{
		h:        h,
		name:     "services",
		singular: "service",
		resource: (*api.Client).Services,
		id:       func(s models.Service) int { return s.ID },
		form: func(r *http.Request, _ bool) (models.ServiceInput, map[string]string) {
			in := models.ServiceInput{
				Name:        strings.TrimSpace(r.FormValue("name")),
				Description: strings.TrimSpace(r.FormValue("description")),
			}
			errs := make(map[string]string)
			if in.Name == "" {
				errs["name"] = "Name is required."
			}
			price, err := parsePrice(r.FormValue("price"))
			if err != nil {
				errs["price"] = "Price: " + err.Error() + "."
			}
			in.Price = price
			return in, errs
		},
	}
}

func (h *AdminHandler) suppliersPage() ResourcePage {
	return &resourcePage[models.Supplier, models.SupplierInput]{
		h:        h,
		name:     "suppliers",
		singular: "supplier",
		resource: (*api.Client).Suppliers,
		id:       func(s models.Supplier) int { return s.ID },
		form: func(r *http.Request, _ bool) (models.SupplierInput, map[string]string) {
			in := models.SupplierInput{
				Name:    strings.TrimSpace(r.FormValue("name")),
				Phone:   strings.TrimSpace(r.FormValue("phone")),
				Email:   strings.TrimSpace(r.FormValue("email")),
				Address: strings.TrimSpace(r.FormValue("address")),
			}
			errs := make(map[string]string)
			if in.Name == "" {
				errs["name"] = "Name is required."
			}
			if !phonePattern.MatchString(in.Phone) {
				errs["phone"] = "Phone number may only contain digits, spaces, +, - and parentheses."
			}
			if in.Email != "" && !isValidEmail(in.Email) {
				errs["email"] = "Please enter a valid email address."
			}
			return in, errs
		},
	}
}
