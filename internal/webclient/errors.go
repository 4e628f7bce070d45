package webclient

import "errors"

var (
	ErrNilRequest        = errors.New("webclient: nil request")
	ErrMethodUnsupported = errors.New("webclient: method not supported")
)
