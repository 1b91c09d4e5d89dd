package sentinel

import "errors"

// ErrNotFound is the sentinel for entities that do not exist in a store.
// Stores return it (optionally wrapped) so services can translate it into a
// domain error.
var ErrNotFound = errors.New("not found")
