package validation

import (
	"strings"

	"github.com/kopiteras/cafe/internal/menu"
)

// MenuItemRequest mirrors the fields needed for menu item create/update validation.
type MenuItemRequest struct {
	Name        string
	Description string
	Price       *int64
	Category    string
}

// ValidateMenuItemRequest validates a menu item submitted by an administrator.
func ValidateMenuItemRequest(req MenuItemRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	}

	if req.Price == nil {
		errs = append(errs, FieldError{Field: "price", Message: "price is required"})
	} else if *req.Price <= 0 {
		errs = append(errs, FieldError{Field: "price", Message: "price must be greater than 0"})
	}

	if req.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "category is required"})
	} else if !menu.ValidCategory(req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "category must be one of: " + strings.Join(menu.Categories, ", ")})
	}

	return errs
}
