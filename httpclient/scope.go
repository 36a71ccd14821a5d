package httpclient

import (
	"context"
	"errors"
)

// Use runs fn inside the client's scope. If c implements Enterer, Enter runs
// first. Logout runs exactly once when the scope ends, whether fn returns an
// error, returns early or panics; an ErrNotImplemented from Logout is
// discarded, any other Logout error is joined to the result.
func Use[C Lifecycle](ctx context.Context, c C, fn func(C) error) (err error) {
	defer func() {
		if lerr := Release(ctx, c); lerr != nil {
			err = errors.Join(err, lerr)
		}
	}()

	if e, ok := any(c).(Enterer); ok {
		if err := e.Enter(ctx); err != nil {
			return err
		}
	}
	return fn(c)
}

// Release logs the client out, ignoring ErrNotImplemented. A joined error
// that merely contains ErrNotImplemented is still returned.
func Release(ctx context.Context, c Lifecycle) error {
	if err := c.Logout(ctx); err != nil && !notImplemented(err) {
		return err
	}
	return nil
}

// notImplemented follows a single Unwrap chain only.
func notImplemented(err error) bool {
	for err != nil {
		if err == ErrNotImplemented {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
