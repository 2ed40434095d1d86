package pdf

import (
	"fmt"
	"math"
)

// Amounts are carried in euro cents.

// FormatAmount renders cents as "1234.50 €".
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100.0)
}

// FormatPercent renders a discount rate as "12.50%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FinalAmount is what the client owes on a contract: the negotiated amount
// when set, otherwise the list price minus the discount.
func FinalAmount(amountDue int64, discountPercent float64, realAmountDue *int64) int64 {
	if realAmountDue != nil {
		return *realAmountDue
	}
	return amountDue - DiscountAmount(amountDue, discountPercent)
}

// DiscountAmount is amountDue × percent / 100, rounded half-up to the cent.
func DiscountAmount(amountDue int64, discountPercent float64) int64 {
	if discountPercent <= 0 {
		return 0
	}
	return roundHalfUp(float64(amountDue) * discountPercent / 100.0)
}

// InvoiceTotals splits a VAT-inclusive total into net and VAT parts. The net
// part is rounded half-up to the cent and the VAT takes the remainder, so
// net + vat always equals the total.
func InvoiceTotals(totalTTC int64, vatRate float64) (net, vat int64) {
	rateBps := int64(math.Round(vatRate * 10000))
	den := 10000 + rateBps
	net = (2*totalTTC*10000 + den) / (2 * den)
	return net, totalTTC - net
}

// ReceiptTotals is the accounting block printed on a payment receipt.
type ReceiptTotals struct {
	Total      int64
	Today      int64
	PaidBefore int64
	Cumulative int64
	Remaining  int64
}

// ComputeReceipt derives the receipt block. contractTotal is nil for a
// free-standing receipt, in which case every figure equals the amount paid.
// paidTotal includes this receipt.
func ComputeReceipt(amount int64, contractTotal *int64, paidTotal int64) ReceiptTotals {
	if contractTotal == nil {
		return ReceiptTotals{Total: amount, Today: amount, Cumulative: amount}
	}
	return ReceiptTotals{
		Total:      *contractTotal,
		Today:      amount,
		PaidBefore: max(paidTotal-amount, 0),
		Cumulative: paidTotal,
		Remaining:  max(*contractTotal-paidTotal, 0),
	}
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
