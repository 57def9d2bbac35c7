package validation

import (
	"github.com/kopiteras/cafe/internal/order"
)

// CartItemRequest mirrors the fields needed for cart add/update validation.
type CartItemRequest struct {
	MenuItemID int64
	Quantity   *int
}

// ValidateCartAdd validates a cart add. A missing quantity defaults to one.
func ValidateCartAdd(req CartItemRequest) []FieldError {
	var errs []FieldError
	if req.MenuItemID <= 0 {
		errs = append(errs, FieldError{Field: "menu_item_id", Message: "menu_item_id is required"})
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be greater than 0"})
	}
	return errs
}

// ValidateCartUpdate validates a quantity change. Zero or negative quantities
// are accepted and remove the line.
func ValidateCartUpdate(req CartItemRequest) []FieldError {
	var errs []FieldError
	if req.MenuItemID <= 0 {
		errs = append(errs, FieldError{Field: "menu_item_id", Message: "menu_item_id is required"})
	}
	if req.Quantity == nil {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity is required"})
	}
	return errs
}

// ValidateOrderStatus checks an order status submitted by an administrator.
func ValidateOrderStatus(status string) []FieldError {
	if status == "" {
		return []FieldError{{Field: "status", Message: "status is required"}}
	}
	if !order.Status(status).Valid() {
		return []FieldError{{Field: "status", Message: "status must be one of: pending, processing, completed, cancelled"}}
	}
	return nil
}
