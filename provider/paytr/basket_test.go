package paytr

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ecommkit/payflow/provider"
)

func decodeBasket(t *testing.T, encoded string) [][]any {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("basket is not valid base64: %v", err)
	}

	var basket [][]any
	if err := json.Unmarshal(raw, &basket); err != nil {
		t.Fatalf("basket is not valid JSON: %v", err)
	}

	return basket
}

func TestEncodeBasket(t *testing.T) {
	encoded, err := encodeBasket([]provider.BasketItem{
		{Name: "Widget", Price: 10000, Quantity: 1},
		{Name: "Gadget", Price: 2550, Quantity: 3},
		{Name: "Sticker", Price: 5, Quantity: 10},
	})
	if err != nil {
		t.Fatalf("encodeBasket() error = %v", err)
	}

	basket := decodeBasket(t, encoded)
	if len(basket) != 3 {
		t.Fatalf("expected 3 triples, got %d", len(basket))
	}

	// Prices go on the wire as two-decimal strings, quantities as numbers.
	wantPrices := []string{"100.00", "25.50", "0.05"}
	wantQuantities := []float64{1, 3, 10}
	for i, triple := range basket {
		if len(triple) != 3 {
			t.Fatalf("triple %d has %d elements", i, len(triple))
		}
		if price, ok := triple[1].(string); !ok || price != wantPrices[i] {
			t.Errorf("triple %d price = %v, want %q", i, triple[1], wantPrices[i])
		}
		if qty, ok := triple[2].(float64); !ok || qty != wantQuantities[i] {
			t.Errorf("triple %d quantity = %v, want %v", i, triple[2], wantQuantities[i])
		}
	}
}

func TestEncodeBasket_EmptySubstitutesPlaceholder(t *testing.T) {
	encoded, err := encodeBasket(nil)
	if err != nil {
		t.Fatalf("encodeBasket() error = %v", err)
	}

	basket := decodeBasket(t, encoded)
	if len(basket) != 1 {
		t.Fatalf("expected 1 placeholder triple, got %d", len(basket))
	}
	if basket[0][0] != "placeholder" || basket[0][1] != "1.00" || basket[0][2].(float64) != 1 {
		t.Errorf("unexpected placeholder triple: %v", basket[0])
	}
}

func TestEncodeBasket_TruncatesLongNames(t *testing.T) {
	tests := []struct {
		name     string
		itemName string
	}{
		{"ASCII", strings.Repeat("x", 150)},
		{"Multibyte", strings.Repeat("ğ", 150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encodeBasket([]provider.BasketItem{{Name: tt.itemName, Price: 100, Quantity: 1}})
			if err != nil {
				t.Fatalf("encodeBasket() error = %v", err)
			}

			basket := decodeBasket(t, encoded)
			name := basket[0][0].(string)
			if got := utf8.RuneCountInString(name); got != maxItemNameLen {
				t.Errorf("expected name truncated to %d chars, got %d", maxItemNameLen, got)
			}
			// Truncation must never cut a rune in half.
			if strings.ContainsRune(name, utf8.RuneError) {
				t.Error("truncated name contains a replacement character")
			}
		})
	}
}

func TestEncodeBasket_InvalidItems(t *testing.T) {
	tests := []struct {
		name string
		item provider.BasketItem
	}{
		{"Empty name", provider.BasketItem{Name: "", Price: 100, Quantity: 1}},
		{"Negative price", provider.BasketItem{Name: "Widget", Price: -1, Quantity: 1}},
		{"Zero quantity", provider.BasketItem{Name: "Widget", Price: 100, Quantity: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encodeBasket([]provider.BasketItem{tt.item})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !provider.IsValidationError(err) {
				t.Errorf("expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		minorUnits int64
		want       string
	}{
		{10000, "100.00"},
		{1, "0.01"},
		{99, "0.99"},
		{100, "1.00"},
		{12345, "123.45"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		if got := formatPrice(tt.minorUnits); got != tt.want {
			t.Errorf("formatPrice(%d) = %q, want %q", tt.minorUnits, got, tt.want)
		}
	}
}
