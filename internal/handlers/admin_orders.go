package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/shopspring/decimal"
)

func (h *AdminHandler) ordersPage() ResourcePage {
	return &resourcePage[models.Order, models.OrderInput]{
		h:         h,
		name:      "orders",
		singular:  "order",
		resource:  (*api.Client).Orders,
		id:        func(o models.Order) int { return o.ID },
		form:      orderForm,
		fetchEdit: true,
		extras: func(r *http.Request, c *api.Client, data map[string]interface{}) {
			products, err := c.AvailableProducts(r.Context())
			if err != nil {
				slog.Warn("Could not load available products", "request_id", RequestID(r.Context()), "error", err)
			}
			customers, err := c.Customers().List(r.Context(), 0, maxPageSize)
			if err != nil {
				slog.Warn("Could not load customers", "request_id", RequestID(r.Context()), "error", err)
			}
			data["Products"] = products
			data["Customers"] = customers.Content
		},
	}
}

// orderItems reads the parallel product_id/quantity/price_each rows of the
// order form. Rows without a product are skipped.
func orderItems(r *http.Request) ([]models.OrderItem, map[string]string) {
	errs := make(map[string]string)
	ids := r.Form["product_id"]
	qtys := r.Form["quantity"]
	prices := r.Form["price_each"]

	var items []models.OrderItem
	for i, raw := range ids {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		row := strconv.Itoa(i + 1)
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			errs["item"+row] = "Item " + row + ": invalid product."
			continue
		}
		qty := 0
		if i < len(qtys) {
			qty, _ = strconv.Atoi(strings.TrimSpace(qtys[i]))
		}
		if qty < 1 {
			errs["item"+row] = "Item " + row + ": quantity must be at least 1."
			continue
		}
		price := decimal.Zero
		if i < len(prices) {
			price, err = parsePrice(prices[i])
			if err != nil {
				errs["item"+row] = "Item " + row + ": " + err.Error() + "."
				continue
			}
		}
		items = append(items, models.OrderItem{ProductID: id, Quantity: qty, PriceEach: price})
	}
	return items, errs
}

func optionalDate(r *http.Request, field string) (*models.LocalTime, bool) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, true
	}
	t, err := models.ParseLocalTime(raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// orderForm derives total and balance from the items (create) or from the
// order's current total (edit). Items are only sent on create.
func orderForm(r *http.Request, editing bool) (models.OrderInput, map[string]string) {
	errs := make(map[string]string)
	var in models.OrderInput

	if !editing {
		id, err := strconv.Atoi(r.FormValue("customer_id"))
		if err != nil || id <= 0 {
			errs["customer_id"] = "Please choose a customer."
		}
		in.CustomerID = id
	}

	var ok bool
	if in.OrderDate, ok = optionalDate(r, "order_date"); !ok {
		errs["order_date"] = "Invalid order date."
	}
	if in.DeliveryDate, ok = optionalDate(r, "delivery_date"); !ok {
		errs["delivery_date"] = "Invalid delivery date."
	}

	advance := decimal.Zero
	if raw := r.FormValue("advance_payment"); strings.TrimSpace(raw) != "" {
		var err error
		if advance, err = parsePrice(raw); err != nil {
			errs["advance_payment"] = "Advance payment: " + err.Error() + "."
		}
	}

	var total decimal.Decimal
	if editing {
		var err error
		if total, err = parsePrice(r.FormValue("total_price")); err != nil {
			errs["total_price"] = "Invalid order total."
		}
	} else {
		items, itemErrs := orderItems(r)
		for k, v := range itemErrs {
			errs[k] = v
		}
		if len(items) == 0 && len(itemErrs) == 0 {
			errs["items"] = "Add at least one item."
		}
		totals := models.ComputeTotals(items, advance)
		total = totals.Total
		in.Items = items
	}

	if advance.GreaterThan(total) {
		errs["advance_payment"] = "Advance payment cannot exceed the order total."
	}
	balance := total.Sub(advance)
	in.TotalPrice = &total
	in.AdvancePayment = &advance
	in.BalancePayment = &balance

	for field, value := range map[string]*string{
		"order_status":           &in.OrderStatus,
		"advance_payment_status": &in.AdvancePaymentStatus,
		"balance_payment_status": &in.BalancePaymentStatus,
	} {
		*value = r.FormValue(field)
		allowed := models.PaymentStatuses
		if field == "order_status" {
			allowed = models.OrderStatuses
		}
		if *value != "" && !slices.Contains(allowed, *value) {
			errs[field] = "Invalid " + strings.ReplaceAll(field, "_", " ") + "."
		}
	}
	return in, errs
}

// UpdateOrderStatus changes only the order status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	back := listURL("/admin/orders", r)
	status := r.FormValue("order_status")
	if !slices.Contains(models.OrderStatuses, status) {
		h.flash(r, "error", "Invalid order status.")
		h.redirect(w, r, back)
		return
	}

	if _, err := h.Admins.Client(r).Orders().Update(r.Context(), id, models.OrderInput{OrderStatus: status}); err != nil {
		slog.Warn("Failed to update order status", "id", id, "request_id", RequestID(r.Context()), "error", err)
		h.flash(r, "error", "Could not update order status: "+api.Message(err))
		h.redirect(w, r, back)
		return
	}

	slog.Info("Order status updated", "id", id, "status", status)
	h.flash(r, "success", "Order updated!")
	h.redirect(w, r, back)
}

// UpdateOrderPayment sets the advance or balance payment status, and the
// amount when one is given.
func (h *AdminHandler) UpdateOrderPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	back := listURL("/admin/orders", r)

	in := models.PaymentUpdate{
		Type:   strings.ToUpper(r.FormValue("payment_type")),
		Status: r.FormValue("payment_status"),
	}
	if in.Type != models.PaymentAdvance && in.Type != models.PaymentBalance {
		h.flash(r, "error", "Invalid payment type.")
		h.redirect(w, r, back)
		return
	}
	if !slices.Contains(models.PaymentStatuses, in.Status) {
		h.flash(r, "error", "Invalid payment status.")
		h.redirect(w, r, back)
		return
	}
	if raw := strings.TrimSpace(r.FormValue("amount")); raw != "" {
		amount, err := parsePrice(raw)
		if err != nil {
			h.flash(r, "error", "Amount: "+err.Error()+".")
			h.redirect(w, r, back)
			return
		}
		in.Amount = &amount
	}

	if _, err := h.Admins.Client(r).UpdatePayment(r.Context(), id, in); err != nil {
		slog.Warn("Failed to update payment", "id", id, "type", in.Type, "request_id", RequestID(r.Context()), "error", err)
		h.flash(r, "error", "Could not update payment: "+api.Message(err))
		h.redirect(w, r, back)
		return
	}

	slog.Info("Order payment updated", "id", id, "type", in.Type, "status", in.Status)
	h.flash(r, "success", "Payment updated!")
	h.redirect(w, r, back)
}
