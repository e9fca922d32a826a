package notification

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/pawpaw-commerce/fulfillment-go/internal/events"
)

const newOrderHTML = `
<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="background-color: #f4f4f4; padding: 20px; border-bottom: 2px solid #007bff;">
    <h2 style="color: #007bff; text-align: center; margin: 0;">Thank You for Your Order!</h2>
  </div>
  <div style="padding: 20px;">
    <p>Hi {{.Note.Name}},</p>
    <p>Your order has been received and is being processed. Below are the details of your purchase:</p>
    <h4 style="color: #007bff; margin-top: 20px;">Order Summary</h4>
    <p><strong>Order ID:</strong> {{.Note.OrderID}}</p>
    <p><strong>Total Amount:</strong> ${{printf "%.2f" .Note.TotalAmount}}</p>
    <p><strong>Order Date:</strong> {{.Note.OrderDate.Format "Jan 2, 2006"}}</p>
    <h4 style="color: #007bff; margin-top: 20px;">Items Ordered</h4>
    <ul style="list-style-type: none; padding: 0;">
      {{range .Note.Items}}
      <li style="border-bottom: 1px solid #ddd; padding: 10px 0;">
        <strong>{{.Name}}</strong>
        <span style="float: right;">${{printf "%.2f" .Price}}</span>
      </li>
      {{end}}
    </ul>
    <p>Thank you for shopping with us!</p>
    <p style="font-weight: bold;">The {{.Brand}} Team</p>
  </div>
  <div style="background-color: #f4f4f4; padding: 10px; text-align: center; font-size: 12px; color: #666;">
    <p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
  </div>
</div>
`

const lowStockHTML = `
<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="background-color: #f4f4f4; padding: 20px; border-bottom: 2px solid #d9534f;">
    <h2 style="color: #d9534f; text-align: center; margin: 0;">Low Stock Alert</h2>
  </div>
  <div style="padding: 20px;">
    <p>Hi {{.Note.Name}},</p>
    <p>Stock for the following item is running low:</p>
    <h4 style="color: #d9534f; margin-top: 20px;">Item Details</h4>
    <p><strong>Item ID:</strong> {{.Note.ProductID}}</p>
    <p><strong>Stock Remaining:</strong> {{.Note.StockRemaining}}</p>
    <p>Please restock this item as soon as possible to avoid disruptions.</p>
    <p style="font-weight: bold;">The {{.Brand}} Team</p>
  </div>
  <div style="background-color: #f4f4f4; padding: 10px; text-align: center; font-size: 12px; color: #666;">
    <p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
  </div>
</div>
`

// Renderer turns a decoded notification into a subject and an HTML body,
// one template per variant.
type Renderer struct {
	brand    string
	newOrder *template.Template
	lowStock *template.Template
}

func NewRenderer(brand string) *Renderer {
	return &Renderer{
		brand:    brand,
		newOrder: template.Must(template.New(events.KindNewOrder).Parse(newOrderHTML)),
		lowStock: template.Must(template.New(events.KindLowStockAlert).Parse(lowStockHTML)),
	}
}

func (r *Renderer) Render(n events.Notification) (subject, html string, err error) {
	year := time.Now().Year()

	switch v := n.(type) {
	case events.NewOrder:
		subject = v.Subject
		if subject == "" {
			subject = "Order Confirmation"
		}
		html, err = execute(r.newOrder, struct {
			Brand string
			Year  int
			Note  events.NewOrder
		}{r.brand, year, v})
	case events.LowStockAlert:
		subject = "Low Stock Alert"
		html, err = execute(r.lowStock, struct {
			Brand string
			Year  int
			Note  events.LowStockAlert
		}{r.brand, year, v})
	default:
		return "", "", fmt.Errorf("no template for notification type %q", n.Kind())
	}

	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Kind(), err)
	}
	return subject, html, nil
}

func execute(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
