package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/order"
)

// invoiceTmpl renders the HTML confirmation body: items, quantities, prices,
// total, and the delivery address.
var invoiceTmpl = template.Must(template.New("invoice").Parse(`<h2>Order Invoice #{{.ShortID}}</h2>

<p><strong>Name:</strong> {{.CustomerName}}</p>
<p><strong>Total:</strong> {{.Total}}</p>
<p><strong>Payment:</strong> {{.PaymentMethod}}</p>
<p><strong>Address:</strong><br>{{.Address}}</p>

<h3>Items:</h3>
<ul>
{{- range .Items}}
  <li>{{.Quantity}} &times; {{.Name}} @ {{.Price}} &mdash; {{.LineTotal}}</li>
{{- end}}
</ul>

<p>Thank you for shopping with us!</p>
`))

type invoiceLine struct {
	Name      string
	Quantity  int
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

type invoiceData struct {
	ShortID       string
	CustomerName  string
	Total         decimal.Decimal
	PaymentMethod string
	Address       string
	Items         []invoiceLine
}

// InvoiceSubject builds the confirmation subject line with the truncated
// order identifier.
func InvoiceSubject(o *order.Order) string {
	return fmt.Sprintf("Your Order Invoice #%s", o.ShortID())
}

// RenderInvoice renders the HTML invoice body for an order.
func RenderInvoice(o *order.Order, customerName string) (string, error) {
	data := invoiceData{
		ShortID:       o.ShortID(),
		CustomerName:  customerName,
		Total:         o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		Address:       o.Address,
		Items:         make([]invoiceLine, len(o.Items)),
	}
	for i, it := range o.Items {
		data.Items[i] = invoiceLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			LineTotal: it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
	}

	var b strings.Builder
	if err := invoiceTmpl.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "render invoice")
	}
	return b.String(), nil
}
