// Package pdf renders invoices and receipts with maroto.
package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Provider renders a billing document to PDF bytes.
type Provider interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Document is a fully formatted invoice. Amounts and dates are already
// rendered with the tenant's currency and date settings. A non-empty DatePaid
// turns the document into a receipt.
type Document struct {
	Title         string
	FromName      string
	FromEmail     string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	DatePaid      string
	Status        string

	BillToName  string
	BillToEmail string

	Items []Line

	Subtotal  string
	TaxLabel  string
	Tax       string
	Discount  string
	Total     string
	Paid      string
	AmountDue string
	Notes     string
}

func (d Document) IsReceipt() bool { return d.DatePaid != "" }

type Line struct {
	Description string
	Rate        string
	Amount      string
}

var (
	small     = props.Text{Size: 9}
	smallBold = props.Text{Size: 9, Style: fontstyle.Bold}
	smallNum  = props.Text{Size: 9, Align: align.Right}
)

type renderer struct{}

func New() Provider {
	return renderer{}
}

func (renderer) Render(_ context.Context, d Document) ([]byte, error) {
	m := maroto.New(config.NewBuilder().
		WithPageNumber(props.PageNumber{Pattern: "Page {current} of {total}", Place: props.RightBottom}).
		Build())

	title, status := d.Title, d.Status
	meta := []core.Component{text.New("Invoice number: "+d.InvoiceNumber, props.Text{})}
	headline := d.AmountDue + " due " + d.DueDate
	if d.IsReceipt() {
		title, status = "Receipt", ""
		meta = append(meta, text.New("Date paid: "+d.DatePaid, props.Text{Top: 5}))
		headline = d.Paid + " paid on " + d.DatePaid
	} else {
		meta = append(meta,
			text.New("Date of issue: "+d.IssueDate, props.Text{Top: 5}),
			text.New("Date due: "+d.DueDate, props.Text{Top: 10}),
		)
	}

	m.AddRow(14,
		text.NewCol(8, title, props.Text{Size: 20, Style: fontstyle.Bold}),
		text.NewCol(4, status, props.Text{Size: 10, Align: align.Right, Top: 4}),
	)
	m.AddRow(20, col.New(6).Add(meta...), col.New(6))
	m.AddRow(25,
		col.New(6).Add(
			text.New(d.FromName, props.Text{Style: fontstyle.Bold}),
			text.New(d.FromEmail, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(d.BillToName, props.Text{Top: 5}),
			text.New(d.BillToEmail, props.Text{Top: 10}),
		),
	)
	m.AddRow(15, text.NewCol(12, headline, props.Text{Size: 14, Style: fontstyle.Bold, Top: 5}))

	m.AddRow(10,
		text.NewCol(6, "Description", smallBold),
		text.NewCol(3, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))
	for _, it := range d.Items {
		m.AddRow(10,
			text.NewCol(6, it.Description, small),
			text.NewCol(3, it.Rate, smallNum),
			text.NewCol(3, it.Amount, smallNum),
		)
	}

	totals := [][2]string{
		{"Subtotal", d.Subtotal},
		{d.TaxLabel, d.Tax},
		{"Discount", d.Discount},
		{"Total", d.Total},
		{"Paid", d.Paid},
	}
	if !d.IsReceipt() {
		totals = append(totals, [2]string{"Amount due", d.AmountDue})
	}
	for _, t := range totals {
		m.AddRow(8, col.New(8), text.NewCol(2, t[0], small), text.NewCol(2, t[1], smallNum))
	}

	if d.Notes != "" {
		m.AddRow(20, text.NewCol(12, d.Notes, props.Text{Size: 9, Top: 5}))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}
