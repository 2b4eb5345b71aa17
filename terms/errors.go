package terms

import "errors"

var (
	ErrCategoryNotFound = errors.New("terms: category not found")
	ErrQuestionNotFound = errors.New("terms: question not found")
	ErrGroupOutOfRange  = errors.New("terms: group index out of range")
	ErrBlankName        = errors.New("terms: name must not be blank")
	ErrUnknownFormat    = errors.New("terms: unknown file format")
)
