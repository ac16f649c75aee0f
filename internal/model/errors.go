package model

import "errors"

// ErrInvalidGraphMutation is returned for programmer errors against the
// artifact model: duplicate children, self-edges, or unknown endpoints.
var ErrInvalidGraphMutation = errors.New("invalid graph mutation")
