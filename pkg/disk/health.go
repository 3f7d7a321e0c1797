package disk

import (
	"context"
	"errors"
)

// Healthcheck returns a closure that validates backend availability for health endpoints.
// Backends that do not implement Pinger are always reported healthy.
func Healthcheck(b Backend) func(context.Context) error {
	return func(ctx context.Context) error {
		if b == nil {
			return ErrHealthcheckFailed
		}
		p, ok := b.(Pinger)
		if !ok {
			return nil
		}
		if err := p.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Ping reports whether the backend behind d is reachable.
func (d *Disk) Ping(ctx context.Context) error {
	if p, ok := d.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
