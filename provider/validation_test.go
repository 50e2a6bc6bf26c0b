package provider

import (
	"strings"
	"testing"
)

func validRequest() CreatePaymentRequest {
	return CreatePaymentRequest{
		OrderID:    "O-1001",
		Amount:     10000,
		Email:      "customer@example.com",
		SuccessURL: "https://shop.example/ok",
		FailURL:    "https://shop.example/fail",
	}
}

func TestValidateCreateRequest(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreatePaymentRequest)
		wantErr   bool
		wantField string
	}{
		{
			name:   "Valid request",
			mutate: func(r *CreatePaymentRequest) {},
		},
		{
			name:   "Minimum amount",
			mutate: func(r *CreatePaymentRequest) { r.Amount = 1 },
		},
		{
			name:      "Empty order id",
			mutate:    func(r *CreatePaymentRequest) { r.OrderID = "" },
			wantErr:   true,
			wantField: "orderId",
		},
		{
			name:      "Zero amount",
			mutate:    func(r *CreatePaymentRequest) { r.Amount = 0 },
			wantErr:   true,
			wantField: "amount",
		},
		{
			name:      "Negative amount",
			mutate:    func(r *CreatePaymentRequest) { r.Amount = -5 },
			wantErr:   true,
			wantField: "amount",
		},
		{
			name:      "Malformed email",
			mutate:    func(r *CreatePaymentRequest) { r.Email = "bad" },
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "Email with spaces",
			mutate:    func(r *CreatePaymentRequest) { r.Email = "a b@c.com" },
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "Email without domain dot",
			mutate:    func(r *CreatePaymentRequest) { r.Email = "a@b" },
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "Success URL not http",
			mutate:    func(r *CreatePaymentRequest) { r.SuccessURL = "ftp://shop.example/ok" },
			wantErr:   true,
			wantField: "successUrl",
		},
		{
			name:      "Fail URL not http",
			mutate:    func(r *CreatePaymentRequest) { r.FailURL = "" },
			wantErr:   true,
			wantField: "failUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(&request)

			err := ValidateCreateRequest(request)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCreateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("expected a ValidationError, got %T", err)
				}
				if !strings.Contains(err.Error(), tt.wantField) {
					t.Errorf("expected error to name field %q, got %q", tt.wantField, err.Error())
				}
			}
		})
	}
}

func TestValidateCreateRequest_StopsAtFirstFailure(t *testing.T) {
	// Both order id and email are invalid; the earlier rule wins.
	request := validRequest()
	request.OrderID = ""
	request.Email = "bad"

	err := ValidateCreateRequest(request)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "orderId") {
		t.Errorf("expected the orderId rule to fail first, got %q", err.Error())
	}
}

func TestValidateBasketItem(t *testing.T) {
	tests := []struct {
		name      string
		item      BasketItem
		wantErr   bool
		wantField string
	}{
		{
			name: "Valid item",
			item: BasketItem{Name: "Widget", Price: 10000, Quantity: 1},
		},
		{
			name: "Free item",
			item: BasketItem{Name: "Coupon", Price: 0, Quantity: 1},
		},
		{
			name:      "Empty name",
			item:      BasketItem{Name: "", Price: 100, Quantity: 1},
			wantErr:   true,
			wantField: "basket.name",
		},
		{
			name:      "Negative price",
			item:      BasketItem{Name: "Widget", Price: -1, Quantity: 1},
			wantErr:   true,
			wantField: "basket.price",
		},
		{
			name:      "Zero quantity",
			item:      BasketItem{Name: "Widget", Price: 100, Quantity: 0},
			wantErr:   true,
			wantField: "basket.quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBasketItem(tt.item)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBasketItem() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("expected error to name field %q, got %q", tt.wantField, err.Error())
			}
		})
	}
}
