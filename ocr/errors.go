package ocr

import "errors"

// ErrNotEnabled is returned by every recognition call when the binary was
// built without the "ocr" build tag.
var ErrNotEnabled = errors.New("ocr: not enabled (rebuild with -tags ocr)")
