package pdf

import (
	"bytes"
	"testing"
	"time"

	"papex_backend/platform/branding"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFinalAmount(t *testing.T) {
	cases := []struct {
		name     string
		due      int64
		discount float64
		real     *int64
		want     int64
	}{
		{name: "no discount", due: 120000, want: 120000},
		{name: "ten percent", due: 120000, discount: 10, want: 108000},
		{name: "rounds half up", due: 999, discount: 50, want: 499},
		{name: "negotiated amount wins", due: 120000, discount: 10, real: ptr(int64(90000)), want: 90000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FinalAmount(tc.due, tc.discount, tc.real))
		})
	}
}

func TestInvoiceTotals(t *testing.T) {
	cases := []struct {
		ttc, net, vat int64
	}{
		{ttc: 10000, net: 8333, vat: 1667},
		{ttc: 120000, net: 100000, vat: 20000},
		{ttc: 1, net: 1, vat: 0},
		{ttc: 99999, net: 83333, vat: 16666},
	}
	for _, tc := range cases {
		net, vat := InvoiceTotals(tc.ttc, 0.20)
		assert.Equal(t, tc.net, net, "net for %d", tc.ttc)
		assert.Equal(t, tc.vat, vat, "vat for %d", tc.ttc)
		assert.Equal(t, tc.ttc, net+vat)
	}
}

func TestComputeReceipt(t *testing.T) {
	got := ComputeReceipt(30000, ptr(int64(100000)), 50000)
	assert.Equal(t, ReceiptTotals{Total: 100000, Today: 30000, PaidBefore: 20000, Cumulative: 50000, Remaining: 50000}, got)

	overpaid := ComputeReceipt(30000, ptr(int64(40000)), 20000)
	assert.Equal(t, int64(0), overpaid.PaidBefore)
	assert.Equal(t, int64(20000), overpaid.Remaining)

	settled := ComputeReceipt(30000, ptr(int64(40000)), 45000)
	assert.Equal(t, int64(0), settled.Remaining)

	free := ComputeReceipt(15000, nil, 0)
	assert.Equal(t, ReceiptTotals{Total: 15000, Today: 15000, Cumulative: 15000}, free)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1234.50 €", FormatAmount(123450))
	assert.Equal(t, "0.00 €", FormatAmount(0))
	assert.Equal(t, "12.50%", FormatPercent(12.5))
}

func TestReferences(t *testing.T) {
	g := NewGenerator(branding.Default())
	assert.Equal(t, "PAPEX-C-42", g.ContractRef(42))
	assert.Equal(t, "PAPEX-000042", g.InvoiceRef(42))
}

func newTestGenerator() *Generator {
	g := NewGenerator(branding.Default())
	g.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return g
}

func assertPDF(t *testing.T, doc []byte) {
	t.Helper()
	require.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "not a PDF document")
	r, err := pdfreader.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.NumPage(), 1)
}

func TestGeneratorRendersDocuments(t *testing.T) {
	g := newTestGenerator()
	client := Party{FirstName: "Jean", LastName: "Dupont", Phone: "+33612345678", Email: "jean@example.com"}

	contract, err := g.Contract(ContractData{ContractID: 7, Client: client, Service: "Naturalisation", AmountDue: 120000, DiscountPercent: 10})
	require.NoError(t, err)
	assertPDF(t, contract)

	invoice, err := g.Invoice(InvoiceData{ContractID: 7, Client: client, Service: "Naturalisation", AmountDue: 120000, DiscountPercent: 10, Total: 108000})
	require.NoError(t, err)
	assertPDF(t, invoice)

	paid := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	receipt, err := g.Receipt(ReceiptData{ReceiptID: 3, Client: client, Mode: "Espèces", PaymentDate: &paid, Totals: ComputeReceipt(30000, ptr(int64(108000)), 30000)})
	require.NoError(t, err)
	assertPDF(t, receipt)
}

func TestPageCount(t *testing.T) {
	doc, err := newTestGenerator().Contract(ContractData{ContractID: 1, Service: "Visa", AmountDue: 5000})
	require.NoError(t, err)

	n, err := PageCount(doc)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	_, err = PageCount([]byte("hello"))
	assert.Error(t, err)
}
