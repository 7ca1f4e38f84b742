// Package validate checks folder-path and file-mask templates without ever
// touching the filesystem. Paths are folder templates: a path that ends in
// something that looks like a file name is rejected, unless that segment is a
// placeholder.
package validate

// FieldError addresses one violated rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects at most one error per field, first writer wins.
type Errors []FieldError

func (errs *Errors) Add(field, message string) {
	for _, e := range *errs {
		if e.Field == field {
			return
		}
	}
	*errs = append(*errs, FieldError{Field: field, Message: message})
}
