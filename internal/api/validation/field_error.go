package validation

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// maxNameLength bounds free-text names (menu items, display names).
const maxNameLength = 255
