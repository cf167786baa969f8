package inventory

import (
	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

// ReceiptLine is the receiving state of one purchase-order line.
type ReceiptLine struct {
	QtyOrdered  decimal.Decimal
	QtyReceived decimal.Decimal
}

func linesOf(receipts []domain.Receipt) []ReceiptLine {
	lines := make([]ReceiptLine, 0, len(receipts))
	for _, r := range receipts {
		lines = append(lines, ReceiptLine{QtyOrdered: r.QtyOrdered, QtyReceived: r.QtyReceived})
	}
	return lines
}

// DerivePurchaseOrderStatus computes a purchase order's status from its
// lines. Ordered is sticky while nothing has arrived, Close is terminal and an
// order without lines keeps its previous status.
func DerivePurchaseOrderStatus(lines []ReceiptLine, previous domain.PurchaseOrderStatus) domain.PurchaseOrderStatus {
	if previous == domain.POClose || len(lines) == 0 {
		return previous
	}

	allReceived, noneReceived := true, true
	for _, l := range lines {
		if !l.QtyReceived.Equal(l.QtyOrdered) {
			allReceived = false
		}
		if !l.QtyReceived.IsZero() {
			noneReceived = false
		}
	}

	switch {
	case allReceived:
		return domain.POReceived
	case noneReceived:
		if previous == domain.POOrdered {
			return domain.POOrdered
		}
		return domain.PORequisition
	default:
		return domain.POReceivedPartial
	}
}
