// Package printjob defines the job and result types exchanged with the print core
package printjob

// Kind identifies what a job prints
type Kind string

const (
	KindReceipt    Kind = "receipt"
	KindLabel      Kind = "label"
	KindBarcode    Kind = "barcode"
	KindQR         Kind = "qr"
	KindRawText    Kind = "raw_text"
	KindCashDrawer Kind = "cash_drawer_pulse"
)

// Job is a single print request. It is built by the caller, consumed exactly
// once by the dispatcher, and never mutated after submission.
type Job struct {
	Kind         Kind   `json:"kind"`
	TargetDevice string `json:"target_device,omitempty"` // empty means "configured default for this kind"

	// Exactly one payload matching Kind must be set.
	Receipt *ReceiptPayload `json:"receipt,omitempty"`
	Label   *LabelPayload   `json:"label,omitempty"`
	Barcode *BarcodePayload `json:"barcode,omitempty"`
	QR      *QRPayload      `json:"qr,omitempty"`
	RawText *RawTextPayload `json:"raw_text,omitempty"`
	Drawer  *DrawerPayload  `json:"drawer,omitempty"`

	Options Options `json:"options"`
}

// Options carries per-job behaviour flags
type Options struct {
	Copies     int  `json:"copies,omitempty"` // minimum 1, zero treated as 1
	CutPaper   bool `json:"cut_paper,omitempty"`
	OpenDrawer bool `json:"open_drawer,omitempty"`
}

// ReceiptPayload describes a sales receipt. All monetary values arrive as
// pre-formatted strings; the core prints them verbatim and performs no
// arithmetic on them.
type ReceiptPayload struct {
	Header       BusinessHeader  `json:"header"`
	TicketNumber string          `json:"ticket_number,omitempty"`
	Timestamp    string          `json:"timestamp,omitempty"` // pre-formatted by the caller
	Operator     string          `json:"operator,omitempty"`
	Items        []LineItem      `json:"items"`
	Totals       []TotalLine     `json:"totals,omitempty"`
	Payments     []TotalLine     `json:"payments,omitempty"`
	Footer       []string        `json:"footer,omitempty"`
	Barcode      *BarcodePayload `json:"barcode,omitempty"`
	QR           *QRPayload      `json:"qr,omitempty"`
}

// BusinessHeader is the block printed at the top of receipts and labels
type BusinessHeader struct {
	Name     string   `json:"name"`
	Lines    []string `json:"lines,omitempty"` // address, phone, etc.
	TaxID    string   `json:"tax_id,omitempty"`
	LogoPath string   `json:"logo_path,omitempty"`
}

// LineItem is one sold article. Quantity, unit price and amount are
// pre-formatted strings supplied by the business layer.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity,omitempty"`
	UnitPrice   string `json:"unit_price,omitempty"`
	Amount      string `json:"amount"`
}

// TotalLine is one row of the totals or payments block
type TotalLine struct {
	Label    string `json:"label"`
	Amount   string `json:"amount"`
	Emphasis bool   `json:"emphasis,omitempty"` // printed bold and double height
}

// LabelPayload describes a product/shelf label
type LabelPayload struct {
	Title   string          `json:"title"`
	Lines   []string        `json:"lines,omitempty"`
	Price   string          `json:"price,omitempty"`
	Barcode *BarcodePayload `json:"barcode,omitempty"`
}

// BarcodePayload describes a 1D barcode
type BarcodePayload struct {
	Symbology string `json:"symbology"` // code128, code39, ean13, ean8, upca, itf, codabar, code93
	Value     string `json:"value"`
	Caption   bool   `json:"caption,omitempty"` // print the value under the bars
}

// QRPayload describes a QR code
type QRPayload struct {
	Value string `json:"value"`
	Size  int    `json:"size,omitempty"` // module size 1-16, zero treated as 6
}

// RawTextPayload is plain text printed line by line
type RawTextPayload struct {
	Text string `json:"text"`
}

// DrawerPayload describes a cash drawer kick pulse
type DrawerPayload struct {
	Pin   int `json:"pin,omitempty"`    // 0 or 1, connector pin 2 or 5
	OnMs  int `json:"on_ms,omitempty"`  // pulse on time, zero treated as 120
	OffMs int `json:"off_ms,omitempty"` // pulse off time, zero treated as 240
}

// Symbologies lists the barcode symbologies the core can encode and render
var Symbologies = []string{"code128", "code39", "ean13", "ean8", "upca", "itf", "codabar", "code93"}

// KnownSymbology reports whether s is a supported barcode symbology
func KnownSymbology(s string) bool {
	for _, v := range Symbologies {
		if s == v {
			return true
		}
	}
	return false
}
