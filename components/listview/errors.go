package listview

import "errors"

// Validation errors are local, recoverable conditions surfaced to the caller.
var (
	ErrUnknownField       = errors.New("listview: unknown filter field")
	ErrInvalidFilterValue = errors.New("listview: filter value not accepted for field")
	ErrUnknownSortKey     = errors.New("listview: unknown sort key")
	ErrNotVisible         = errors.New("listview: record is not visible")
	ErrEmptySelection     = errors.New("listview: select at least one record")
	ErrMissingData        = errors.New("listview: missing required operation data")
	ErrUnknownOperation   = errors.New("listview: unknown bulk operation")
	ErrInvalidRecord      = errors.New("listview: invalid record")
	ErrDuplicateID        = errors.New("listview: duplicate record id")
)

// Lifecycle errors.
var (
	ErrUnknownList      = errors.New("listview: unknown list definition")
	ErrUnknownRequest   = errors.New("listview: unknown bulk request")
	ErrRequestNotActive = errors.New("listview: bulk request is not awaiting confirmation")
	ErrNotMounted       = errors.New("listview: list is not mounted for viewer")
	ErrMissingViewer    = errors.New("listview: viewer context missing user id")
	ErrUnsafeFilename   = errors.New("listview: export filename escapes the export directory")
)

var validationErrors = []error{
	ErrUnknownField,
	ErrInvalidFilterValue,
	ErrUnknownSortKey,
	ErrNotVisible,
	ErrEmptySelection,
	ErrMissingData,
	ErrUnknownOperation,
	ErrInvalidRecord,
	ErrDuplicateID,
	ErrRequestNotActive,
}

// IsValidation reports whether err belongs to the validation category.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
