// Package pdf renders the contract, invoice and receipt documents with
// maroto/v2. Every document carries the company header from the branding
// profile and a QR code of its reference.
package pdf

import (
	"fmt"
	"time"

	"papex_backend/platform/branding"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	qrcode "github.com/skip2/go-qrcode"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorAccent    = &props.Color{Red: 30, Green: 64, Blue: 175}
	colorTableHead = &props.Color{Red: 241, Green: 245, Blue: 249}
	colorGreen     = &props.Color{Red: 22, Green: 163, Blue: 74}
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240}
)

const dateLayout = "02/01/2006"

// Party is the client printed on a document.
type Party struct {
	FirstName string
	LastName  string
	Address   string
	Phone     string
	Email     string
}

func (p Party) FullName() string {
	return joinParts([]string{p.FirstName, p.LastName}, " ")
}

// ContractData holds what the contract PDF needs.
type ContractData struct {
	ContractID      int64
	Client          Party
	Service         string
	AmountDue       int64
	DiscountPercent float64
	RealAmountDue   *int64
}

// InvoiceData holds what the invoice PDF needs. Total is VAT-inclusive.
type InvoiceData struct {
	ContractID      int64
	Client          Party
	Service         string
	AmountDue       int64
	DiscountPercent float64
	Total           int64
}

// ReceiptData holds what the receipt PDF needs.
type ReceiptData struct {
	ReceiptID   int64
	Client      Party
	Service     string
	Mode        string
	PaymentDate *time.Time
	Totals      ReceiptTotals
}

// Generator renders documents for one company profile.
type Generator struct {
	profile branding.Profile
	now     func() time.Time
}

func NewGenerator(profile branding.Profile) *Generator {
	return &Generator{profile: profile, now: time.Now}
}

// ContractRef is the printed contract reference, e.g. PAPEX-C-42.
func (g *Generator) ContractRef(id int64) string {
	return fmt.Sprintf("%s-%d", g.profile.ContractPrefix, id)
}

// InvoiceRef is the printed invoice number, e.g. PAPEX-000042.
func (g *Generator) InvoiceRef(id int64) string {
	return fmt.Sprintf("%s-%06d", g.profile.InvoicePrefix, id)
}

// ReceiptRef is the printed receipt number.
func (g *Generator) ReceiptRef(id int64) string {
	return fmt.Sprintf("%s-R-%06d", g.profile.InvoicePrefix, id)
}

func (g *Generator) newDocument(title, ref string) (core.Maroto, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(20).
		WithTopMargin(15).
		WithRightMargin(20).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterFooter(g.buildFooter()); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	header, err := g.buildHeader(title, ref)
	if err != nil {
		return nil, err
	}
	m.AddRows(header...)
	m.AddRows(separator(), row.New(6))
	return m, nil
}

// Contract renders the service contract.
func (g *Generator) Contract(data ContractData) ([]byte, error) {
	ref := g.ContractRef(data.ContractID)
	final := FinalAmount(data.AmountDue, data.DiscountPercent, data.RealAmountDue)

	m, err := g.newDocument("CONTRAT DE PRESTATION", ref)
	if err != nil {
		return nil, err
	}
	m.AddRows(g.buildPartiesBlock(data.Client)...)
	m.AddRows(row.New(6))

	m.AddRows(sectionTitle("OBJET DU CONTRAT"))
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New(fmt.Sprintf("Prestation : %s", data.Service), props.Text{Size: 10, Style: fontstyle.Bold, Color: colorPrimary})),
	))
	m.AddRows(row.New(4))

	m.AddRows(sectionTitle("SERVICES PROPOSÉS"))
	for _, s := range g.profile.Services {
		m.AddRows(row.New(4.5).Add(
			col.New(12).Add(text.New("•  "+s, props.Text{Size: 8, Color: colorSecondary})),
		))
	}
	m.AddRows(row.New(6))

	m.AddRows(sectionTitle("MONTANT"))
	if data.DiscountPercent > 0 {
		m.AddRows(
			amountRow("Montant initial", FormatAmount(data.AmountDue), colorPrimary),
			amountRow("Remise "+FormatPercent(data.DiscountPercent), "-"+FormatAmount(DiscountAmount(data.AmountDue, data.DiscountPercent)), colorGreen),
		)
	}
	m.AddRows(totalRow("MONTANT À RÉGLER", FormatAmount(final)))

	m.AddRows(row.New(10))
	m.AddRows(g.buildSignatureBlock()...)

	return render(m)
}

// Invoice renders the invoice for a contract. VAT is computed backwards from
// the inclusive total.
func (g *Generator) Invoice(data InvoiceData) ([]byte, error) {
	ref := g.InvoiceRef(data.ContractID)
	net, vat := InvoiceTotals(data.Total, g.profile.VATRate)
	issued := g.now().Format(dateLayout)

	m, err := g.newDocument("FACTURE", ref)
	if err != nil {
		return nil, err
	}
	m.AddRows(g.buildPartiesBlock(data.Client)...)
	m.AddRows(row.New(4).Add(
		col.New(12).Add(text.New(fmt.Sprintf("Date d'émission : %s  |  Échéance : %s", issued, issued), props.Text{Size: 8, Color: colorSecondary, Align: align.Right})),
	))
	m.AddRows(row.New(6))

	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}
	m.AddRows(row.New(7).Add(
		col.New(6).Add(text.New("Désignation", headerStyle)),
		col.New(1).Add(text.New("Qté", headerStyle)),
		col.New(2).Add(text.New("PU HT", headerStyleRight)),
		col.New(1).Add(text.New("TVA", headerStyleRight)),
		col.New(2).Add(text.New("Total HT", headerStyleRight)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Bottom,
		BorderColor:     colorBorder,
	}))

	normal := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	right := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}
	m.AddRows(row.New(7).Add(
		col.New(6).Add(text.New(data.Service, normal)),
		col.New(1).Add(text.New("1", normal)),
		col.New(2).Add(text.New(FormatAmount(net), right)),
		col.New(1).Add(text.New(fmt.Sprintf("%.0f%%", g.profile.VATRate*100), right)),
		col.New(2).Add(text.New(FormatAmount(net), right)),
	))
	m.AddRows(separator(), row.New(3))

	if data.DiscountPercent > 0 {
		m.AddRows(
			amountRow("Montant initial", FormatAmount(data.AmountDue), colorPrimary),
			amountRow("Remise", FormatPercent(data.DiscountPercent), colorGreen),
		)
	}
	m.AddRows(
		amountRow("Base HT", FormatAmount(net), colorPrimary),
		amountRow(fmt.Sprintf("TVA %.0f%%", g.profile.VATRate*100), FormatAmount(vat), colorPrimary),
		totalRow("TOTAL TTC", FormatAmount(data.Total)),
	)

	return render(m)
}

// Receipt renders a payment receipt.
func (g *Generator) Receipt(data ReceiptData) ([]byte, error) {
	ref := g.ReceiptRef(data.ReceiptID)
	paidOn := "—"
	if data.PaymentDate != nil {
		paidOn = data.PaymentDate.Format(dateLayout)
	}
	service := data.Service
	if service == "" {
		service = "—"
	}

	m, err := g.newDocument("REÇU DE PAIEMENT", ref)
	if err != nil {
		return nil, err
	}
	m.AddRows(g.buildPartiesBlock(data.Client)...)
	m.AddRows(row.New(6))

	m.AddRows(sectionTitle("PAIEMENT"))
	m.AddRows(
		amountRow("Prestation", service, colorPrimary),
		amountRow("Mode de paiement", data.Mode, colorPrimary),
		amountRow("Date du paiement", paidOn, colorPrimary),
		row.New(3),
		amountRow("Total de la prestation", FormatAmount(data.Totals.Total), colorPrimary),
		amountRow("Déjà réglé", FormatAmount(data.Totals.PaidBefore), colorPrimary),
		amountRow("Réglé ce jour", FormatAmount(data.Totals.Today), colorGreen),
		amountRow("Total réglé", FormatAmount(data.Totals.Cumulative), colorPrimary),
		totalRow("RESTE À PAYER", FormatAmount(data.Totals.Remaining)),
	)

	m.AddRows(row.New(10))
	m.AddRows(g.buildSignatureBlock()...)

	return render(m)
}

func render(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func (g *Generator) buildHeader(title, ref string) ([]core.Row, error) {
	qr, err := qrcode.Encode(ref, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}

	companyCol := col.New(5).Add(
		text.New(g.profile.LegalName, props.Text{Size: 13, Style: fontstyle.Bold, Color: colorPrimary, Top: 2}),
		text.New(g.profile.LegalForm, props.Text{Size: 7.5, Color: colorSecondary, Top: 9}),
		text.New(g.profile.RCS, props.Text{Size: 7.5, Color: colorSecondary, Top: 13}),
		text.New(g.profile.Address, props.Text{Size: 7.5, Color: colorSecondary, Top: 17}),
	)
	titleCol := col.New(5).Add(
		text.New(title, props.Text{Size: 15, Style: fontstyle.Bold, Align: align.Right, Color: colorAccent, Top: 2}),
		text.New(ref, props.Text{Size: 10, Align: align.Right, Color: colorSecondary, Top: 11}),
		text.New(g.now().Format(dateLayout), props.Text{Size: 8, Align: align.Right, Color: colorSecondary, Top: 17}),
	)
	qrCol := col.New(2).Add(image.NewFromBytes(qr, extension.Png, props.Rect{Percent: 90, Center: true}))

	return []core.Row{row.New(24).Add(companyCol, titleCol, qrCol)}, nil
}

// ── Client block ────────────────────────────────────────────────────────

func (g *Generator) buildPartiesBlock(client Party) []core.Row {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}
	value := props.Text{Size: 8.5, Color: colorPrimary}

	return []core.Row{
		row.New(5).Add(
			col.New(6).Add(text.New("PRESTATAIRE", label)),
			col.New(6).Add(text.New("CLIENT", label)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(g.profile.Name, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary})),
			col.New(6).Add(text.New(client.FullName(), props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary})),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(g.profile.Address, value)),
			col.New(6).Add(text.New(orDash(client.Address), value)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(g.profile.PhoneDisplay, value)),
			col.New(6).Add(text.New(orDash(client.Phone), value)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(g.profile.Contact, value)),
			col.New(6).Add(text.New(orDash(client.Email), value)),
		),
	}
}

// ── Signature ───────────────────────────────────────────────────────────

func (g *Generator) buildSignatureBlock() []core.Row {
	style := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary}
	return []core.Row{
		row.New(6).Add(
			col.New(6).Add(text.New("Pour "+g.profile.LegalName, style)),
			col.New(6).Add(text.New("Le client (lu et approuvé)", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
		),
		row.New(20).Add(col.New(6), col.New(6)).WithStyle(&props.Cell{
			BorderType:  border.Bottom,
			BorderColor: colorBorder,
		}),
	}
}

// ── Footer (repeats on every page) ──────────────────────────────────────

func (g *Generator) buildFooter() core.Row {
	footerText := joinParts([]string{g.profile.LegalName, g.profile.RCS, g.profile.Address, g.profile.Contact}, "  ·  ")

	return row.New(10).Add(
		col.New(12).Add(
			text.New(footerText, props.Text{
				Size:  6.5,
				Color: colorSecondary,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

// ── Helpers ─────────────────────────────────────────────────────────────

func separator() core.Row {
	return row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	})
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(
		col.New(12).Add(text.New(title, props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent})),
	)
}

func amountRow(label, value string, valueColor *props.Color) core.Row {
	return row.New(6).Add(
		col.New(8).Add(text.New(label, props.Text{Size: 9, Color: colorSecondary})),
		col.New(4).Add(text.New(value, props.Text{Size: 9, Color: valueColor, Align: align.Right})),
	)
}

func totalRow(label, value string) core.Row {
	style := props.Text{Size: 11, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}
	return row.New(10).Add(
		col.New(8).Add(text.New(label, style)),
		col.New(4).Add(text.New(value, style)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Top | border.Bottom,
		BorderColor:     colorBorder,
	})
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func joinParts(parts []string, sep string) string {
	result := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if result != "" {
			result += sep
		}
		result += p
	}
	return result
}
