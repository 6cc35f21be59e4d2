// Package notify delivers new-order notifications. Delivery is best effort:
// checkout never waits on it and never fails because of it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderSummary struct {
	InternalID    int64
	OrderID       string
	DisplayName   string
	ItemCount     int
	Total         decimal.Decimal
	Profit        decimal.Decimal
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaymentMethod string
	Status        string
	Guest         bool
}

type Notifier interface {
	NotifyNewOrder(ctx context.Context, s OrderSummary) error
}

// LogNotifier writes the summary to the log instead of sending it anywhere.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) NotifyNewOrder(ctx context.Context, s OrderSummary) error {
	n.Logger.LogAttrs(ctx, slog.LevelInfo, "new_order",
		slog.String("order_id", s.OrderID),
		slog.Int64("internal_id", s.InternalID),
		slog.String("item", s.DisplayName),
		slog.String("total", s.Total.StringFixed(2)),
		slog.String("customer", s.CustomerName),
		slog.Bool("guest", s.Guest),
	)
	return nil
}

// MailNotifier emails the shop admins and, when an address is known, the customer.
type MailNotifier struct {
	Mailer      Mailer
	From        string
	FromName    string
	AdminEmails []string
}

func (n *MailNotifier) NotifyNewOrder(ctx context.Context, s OrderSummary) error {
	var errs []error

	if len(n.AdminEmails) > 0 {
		err := n.Mailer.Send(ctx, Email{
			From:     n.From,
			FromName: n.FromName,
			To:       n.AdminEmails,
			Subject:  fmt.Sprintf("New order %s", s.OrderID),
			TextBody: adminText(s),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("admin email: %w", err))
		}
	}

	if s.CustomerEmail != "" {
		err := n.Mailer.Send(ctx, Email{
			From:     n.From,
			FromName: n.FromName,
			To:       []string{s.CustomerEmail},
			Subject:  fmt.Sprintf("Order confirmation %s", s.OrderID),
			TextBody: customerText(s),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("customer email: %w", err))
		}
	}

	return errors.Join(errs...)
}

func adminText(s OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s (#%d)\n", s.OrderID, s.InternalID)
	fmt.Fprintf(&b, "Item: %s (%d line(s))\n", s.DisplayName, s.ItemCount)
	fmt.Fprintf(&b, "Total: %s\n", s.Total.StringFixed(2))
	fmt.Fprintf(&b, "Profit: %s\n", s.Profit.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s\n", s.PaymentMethod)
	fmt.Fprintf(&b, "Customer: %s, %s, %s\n", s.CustomerName, s.CustomerPhone, s.CustomerEmail)
	if s.Guest {
		b.WriteString("Guest checkout\n")
	}
	return b.String()
}

func customerText(s OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", s.CustomerName)
	fmt.Fprintf(&b, "We received your order %s for %s.\n", s.OrderID, s.DisplayName)
	fmt.Fprintf(&b, "Total: %s\n\n", s.Total.StringFixed(2))
	b.WriteString("We will contact you on WhatsApp to arrange payment.\n")
	return b.String()
}
