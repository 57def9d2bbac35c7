package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kopiteras/cafe/internal/api/validation"
)

func assertFieldError(t *testing.T, errs []validation.FieldError, field, contains string) {
	t.Helper()
	for _, e := range errs {
		if e.Field == field {
			assert.Contains(t, e.Message, contains)
			return
		}
	}
	t.Errorf("expected field error on %q containing %q, got none", field, contains)
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

// --- ValidateSignUpRequest ---

func TestSignUp_Valid(t *testing.T) {
	t.Parallel()
	errs := validation.ValidateSignUpRequest(validation.SignUpRequest{Email: "a@b.co", Password: "secret1", Name: "Ana"})
	assert.Empty(t, errs)
}

func TestSignUp_Rejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		req      validation.SignUpRequest
		field    string
		contains string
	}{
		{"missing email", validation.SignUpRequest{Password: "secret1"}, "email", "required"},
		{"bad email", validation.SignUpRequest{Email: "no-at-sign", Password: "secret1"}, "email", "valid email"},
		{"missing password", validation.SignUpRequest{Email: "a@b.co"}, "password", "required"},
		{"five characters", validation.SignUpRequest{Email: "a@b.co", Password: "12345"}, "password", "at least 6"},
		{"long name", validation.SignUpRequest{Email: "a@b.co", Password: "secret1", Name: strings.Repeat("n", 256)}, "name", "255"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFieldError(t, validation.ValidateSignUpRequest(tt.req), tt.field, tt.contains)
		})
	}
}

// --- ValidateRole / ValidateProfileName ---

func TestValidateRole(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateRole("admin"))
	assert.Empty(t, validation.ValidateRole("user"))
	assertFieldError(t, validation.ValidateRole(""), "role", "required")
	assertFieldError(t, validation.ValidateRole("owner"), "role", "\"user\" or \"admin\"")
}

func TestValidateProfileName(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateProfileName("Budi"))
	assertFieldError(t, validation.ValidateProfileName("   "), "name", "required")
}

// --- ValidateMenuItemRequest ---

func validMenuItem() validation.MenuItemRequest {
	return validation.MenuItemRequest{
		Name:        "Kopi Susu",
		Description: "Iced coffee with palm sugar",
		Price:       int64Ptr(25000),
		Category:    "coffee",
	}
}

func TestMenuItem_Valid(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateMenuItemRequest(validMenuItem()))
}

func TestMenuItem_Rejections(t *testing.T) {
	t.Parallel()

	noName := validMenuItem()
	noName.Name = ""
	assertFieldError(t, validation.ValidateMenuItemRequest(noName), "name", "required")

	noDesc := validMenuItem()
	noDesc.Description = " "
	assertFieldError(t, validation.ValidateMenuItemRequest(noDesc), "description", "required")

	noPrice := validMenuItem()
	noPrice.Price = nil
	assertFieldError(t, validation.ValidateMenuItemRequest(noPrice), "price", "required")

	freePrice := validMenuItem()
	freePrice.Price = int64Ptr(0)
	assertFieldError(t, validation.ValidateMenuItemRequest(freePrice), "price", "greater than 0")

	badCategory := validMenuItem()
	badCategory.Category = "tea"
	assertFieldError(t, validation.ValidateMenuItemRequest(badCategory), "category", "one of")
}

// --- Cart and order ---

func TestCartAdd(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateCartAdd(validation.CartItemRequest{MenuItemID: 3}))
	assertFieldError(t, validation.ValidateCartAdd(validation.CartItemRequest{}), "menu_item_id", "required")
	assertFieldError(t, validation.ValidateCartAdd(validation.CartItemRequest{MenuItemID: 3, Quantity: intPtr(0)}), "quantity", "greater than 0")
}

func TestCartUpdate(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateCartUpdate(validation.CartItemRequest{MenuItemID: 3, Quantity: intPtr(0)}))
	assertFieldError(t, validation.ValidateCartUpdate(validation.CartItemRequest{MenuItemID: 3}), "quantity", "required")
}

func TestOrderStatus(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateOrderStatus("processing"))
	assertFieldError(t, validation.ValidateOrderStatus(""), "status", "required")
	assertFieldError(t, validation.ValidateOrderStatus("shipped"), "status", "one of")
}

func TestValidateAvatar(t *testing.T) {
	t.Parallel()
	assert.Empty(t, validation.ValidateAvatar(""))
	assert.Empty(t, validation.ValidateAvatar("https://cdn.test/a.png"))
	assert.Empty(t, validation.ValidateAvatar("data:image/png;base64,iVBORw0KGgo="))
	assertFieldError(t, validation.ValidateAvatar("javascript:alert(1)"), "image", "data:image")
	assertFieldError(t, validation.ValidateAvatar("data:text/html,<b>x</b>"), "image", "data:image")
}
