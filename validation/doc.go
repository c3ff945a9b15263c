// Package validation validates structs through go-playground/validator tags
// and reports failures as a single errors.AppError listing every field.
//
//	type ChatQuery struct {
//	    Message string `form:"message" validate:"required,max=4000"`
//	}
//	if err := validation.Validate(q); err != nil { ... }
//
// Field names in messages come from the form, mapstructure or json tag, in
// that order, falling back to the snake_cased Go field name.
package validation
