package driven

import (
	"context"
	"errors"

	"credstamp/internal/domain/model"
)

// Sentinel errors returned by PageEditor implementations.
var (
	// ErrFieldNotFound indicates replace mode could not locate an expected
	// original text run on the target page.
	ErrFieldNotFound = errors.New("field text not found on page")

	// ErrInvalidPage indicates the requested page index is out of range.
	ErrInvalidPage = errors.New("page index out of range")
)

// PageEditor defines the driven port isolating PDF-library specifics.
// Implementations never mutate the template buffer; both editing operations
// return a freshly serialized document.
//
// ReplaceText returns ErrFieldNotFound when any replacement's original text
// does not occur on the page. Both editing operations return ErrInvalidPage
// when pageIndex (0-based) is outside the document.
type PageEditor interface {
	PageCount(ctx context.Context, template []byte) (int, error)
	ReplaceText(ctx context.Context, template []byte, pageIndex int, repls []model.TextReplacement) ([]byte, error)
	OverlayText(ctx context.Context, template []byte, pageIndex int, fields []model.OverlayField, background model.Color) ([]byte, error)
}
