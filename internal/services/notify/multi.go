package notify

import (
	"errors"

	"radar-screener/internal/models"
)

// Multi fans an alert out to several notifiers. Every notifier is tried;
// failures are joined so the caller can log them together.
type Multi []interface {
	Notify(alert models.Alert) error
}

func (m Multi) Notify(alert models.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
