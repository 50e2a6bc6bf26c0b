package provider

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateCreateRequest enforces the shape and range invariants shared by
// all providers. It runs before any network I/O or signature computation,
// stops at the first violation and returns a ValidationError naming the
// offending field.
func ValidateCreateRequest(request CreatePaymentRequest) error {
	if request.OrderID == "" {
		return &ValidationError{Field: "orderId", Message: "must be a non-empty string"}
	}

	if request.Amount < 1 {
		return &ValidationError{Field: "amount", Message: "must be at least 1 minor currency unit"}
	}

	if !emailPattern.MatchString(request.Email) {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}

	if !strings.HasPrefix(request.SuccessURL, "http") {
		return &ValidationError{Field: "successUrl", Message: "must start with http"}
	}

	if !strings.HasPrefix(request.FailURL, "http") {
		return &ValidationError{Field: "failUrl", Message: "must start with http"}
	}

	return nil
}

// ValidateBasketItem enforces the per-item invariants. Basket items are
// validated independently of the top-level request, at encoding time.
func ValidateBasketItem(item BasketItem) error {
	if item.Name == "" {
		return &ValidationError{Field: "basket.name", Message: "must be a non-empty string"}
	}

	if item.Price < 0 {
		return &ValidationError{Field: "basket.price", Message: "must not be negative"}
	}

	if item.Quantity < 1 {
		return &ValidationError{Field: "basket.quantity", Message: "must be at least 1"}
	}

	return nil
}
