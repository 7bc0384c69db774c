package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// ErrNotFound marks a database or container that does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict marks a create-mode write that collided with an existing item.
var ErrConflict = errors.New("conflict")

// SchemaConflictError reports a container whose existing partition key path
// differs from the one requested at creation time.
type SchemaConflictError struct {
	Container string
	Want      string
	Got       string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("container %s exists with partition key %s, wanted %s", e.Container, e.Got, e.Want)
}

// IsNotFound reports whether err indicates a missing database or container.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err indicates an id collision on create.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsSchemaConflict reports whether err is a partition key mismatch.
func IsSchemaConflict(err error) bool {
	var sc *SchemaConflictError
	return errors.As(err, &sc)
}

// classify maps SDK response errors onto the package sentinels so callers can
// branch without importing azcore. Other errors pass through wrapped.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case http.StatusConflict:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
