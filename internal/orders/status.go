package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dew-13/solestyle/internal/models"
)

var ErrUnknownStatus = errors.New("unknown order status")

func ParseStatus(s string) (models.OrderStatus, error) {
	candidate := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range models.OrderStatuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// InitialStatus maps the checkout payment method to the first order status.
func InitialStatus(method models.PaymentMethod) models.OrderStatus {
	switch method {
	case models.PaymentFull:
		return models.OrderStatusPendingFullPayment
	case models.PaymentInstallments:
		return models.OrderStatusPendingInstallment
	default:
		return models.OrderStatusPending
	}
}

// Transition moves an order from one status to another. Every known status is
// reachable from every other; only unknown targets are rejected.
func Transition(from, to models.OrderStatus) (models.OrderStatus, error) {
	next, err := ParseStatus(string(to))
	if err != nil {
		return from, err
	}
	return next, nil
}
