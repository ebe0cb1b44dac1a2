package escpos

import (
	"fmt"
	"image"
	"strings"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Options tune one encoding pass. Logo images are pre-loaded by the caller;
// the encoder itself performs no I/O.
type Options struct {
	Columns  int
	CodePage CodePageID
	Logo     image.Image
	DotWidth int // printable dots across the paper, used for logo scaling
}

// Encoded is the outcome of one encoding pass: the canonical byte buffer,
// the column width it was laid out for, and the commands it was marshalled
// from. Encoded buffers belong to the submit call that produced them and are
// never reused across jobs.
type Encoded struct {
	Bytes    []byte
	Columns  int
	Commands []Command
}

// Encode turns a job into ESC/POS bytes. It is pure and deterministic:
// identical input yields byte-identical output. Timestamps and money strings
// come pre-formatted in the payload; the encoder does no arithmetic on them.
func Encode(job *printjob.Job, opts Options) (*Encoded, error) {
	if opts.Columns < 1 {
		opts.Columns = 42
	}
	if opts.DotWidth < 1 {
		opts.DotWidth = 576
	}

	b := &builder{opts: opts}
	var err error
	switch job.Kind {
	case printjob.KindReceipt:
		err = b.receipt(job)
	case printjob.KindLabel:
		err = b.label(job)
	case printjob.KindBarcode:
		err = b.barcodeJob(job)
	case printjob.KindQR:
		err = b.qrJob(job)
	case printjob.KindRawText:
		err = b.rawText(job)
	case printjob.KindCashDrawer:
		err = b.drawer(job)
	default:
		err = fmt.Errorf("kind %q has no encoder", job.Kind)
	}
	if err != nil {
		return nil, err
	}
	return &Encoded{Bytes: Marshal(b.cmds), Columns: opts.Columns, Commands: b.cmds}, nil
}

type builder struct {
	opts Options
	cmds []Command
}

func (b *builder) add(cmds ...Command) {
	b.cmds = append(b.cmds, cmds...)
}

// line transcodes one laid-out line and appends it with its line feed
func (b *builder) line(s string) {
	b.add(Text(append(Transcode(s, b.opts.CodePage), LF)))
}

// wrapped emits s word-wrapped to the configured columns
func (b *builder) wrapped(s string) {
	for _, l := range Wrap(s, b.opts.Columns) {
		b.line(l)
	}
}

func (b *builder) receipt(job *printjob.Job) error {
	p := job.Receipt
	w := b.opts.Columns

	b.add(Init(), CodePage(b.opts.CodePage))
	if job.Options.OpenDrawer {
		d := drawerOrDefault(job.Drawer)
		b.add(DrawerPulse(d.Pin, d.OnMs, d.OffMs))
	}

	// header block
	b.add(Align(AlignCenter))
	if b.opts.Logo != nil {
		b.add(RasterFromImage(b.opts.Logo, b.opts.DotWidth), FeedLines(1))
	}
	if p.Header.Name != "" {
		b.add(Bold(true), TextSize(2, 2))
		for _, l := range Wrap(p.Header.Name, w/2) {
			b.line(l)
		}
		b.add(TextSize(1, 1), Bold(false))
	}
	for _, l := range p.Header.Lines {
		b.wrapped(l)
	}
	if p.Header.TaxID != "" {
		b.wrapped(p.Header.TaxID)
	}

	// ticket meta
	b.add(Align(AlignLeft))
	if p.TicketNumber != "" || p.Timestamp != "" {
		b.line(TwoColumn(p.TicketNumber, p.Timestamp, w))
	}
	if p.Operator != "" {
		b.line(Truncate(p.Operator, w))
	}
	b.line(Divider('-', w))

	// items: a lone amount shares the description line; quantity detail gets
	// its own line under the wrapped description
	for _, it := range p.Items {
		if it.Quantity == "" && it.UnitPrice == "" {
			b.line(TwoColumn(it.Description, it.Amount, w))
			continue
		}
		for _, l := range Wrap(it.Description, w) {
			b.line(l)
		}
		qty := it.Quantity
		if it.UnitPrice != "" {
			if qty != "" {
				qty += " x " + it.UnitPrice
			} else {
				qty = it.UnitPrice
			}
		}
		b.line(TwoColumn("  "+qty, it.Amount, w))
	}

	if len(p.Totals) > 0 {
		b.line(Divider('-', w))
		for _, t := range p.Totals {
			b.totalLine(t, w)
		}
	}
	if len(p.Payments) > 0 {
		b.line(Divider('-', w))
		for _, t := range p.Payments {
			b.totalLine(t, w)
		}
	}

	if len(p.Footer) > 0 {
		b.add(Align(AlignCenter))
		for _, l := range p.Footer {
			b.wrapped(l)
		}
	}

	if p.Barcode != nil {
		if err := b.barcode(p.Barcode); err != nil {
			return err
		}
	}
	if p.QR != nil {
		b.qr(p.QR)
	}

	b.add(FeedLines(3))
	if job.Options.CutPaper {
		b.add(Cut(CutFull))
	}
	return nil
}

func (b *builder) totalLine(t printjob.TotalLine, w int) {
	if t.Emphasis {
		b.add(Bold(true), TextSize(1, 2))
		b.line(TwoColumn(t.Label, t.Amount, w))
		b.add(TextSize(1, 1), Bold(false))
		return
	}
	b.line(TwoColumn(t.Label, t.Amount, w))
}

func (b *builder) label(job *printjob.Job) error {
	p := job.Label
	w := b.opts.Columns

	b.add(Init(), CodePage(b.opts.CodePage), Align(AlignCenter), Bold(true))
	for _, l := range Wrap(p.Title, w) {
		b.line(l)
	}
	b.add(Bold(false), Align(AlignLeft))
	for _, l := range p.Lines {
		b.wrapped(l)
	}
	if p.Price != "" {
		b.add(Align(AlignCenter), Bold(true), TextSize(2, 2))
		b.line(Truncate(p.Price, w/2))
		b.add(TextSize(1, 1), Bold(false))
	}
	if p.Barcode != nil {
		if err := b.barcode(p.Barcode); err != nil {
			return err
		}
	}
	b.add(FeedLines(2))
	if job.Options.CutPaper {
		b.add(Cut(CutFull))
	}
	return nil
}

func (b *builder) barcodeJob(job *printjob.Job) error {
	b.add(Init(), CodePage(b.opts.CodePage))
	if err := b.barcode(job.Barcode); err != nil {
		return err
	}
	b.add(FeedLines(2))
	if job.Options.CutPaper {
		b.add(Cut(CutFull))
	}
	return nil
}

func (b *builder) qrJob(job *printjob.Job) error {
	b.add(Init(), CodePage(b.opts.CodePage))
	b.qr(job.QR)
	b.add(FeedLines(2))
	if job.Options.CutPaper {
		b.add(Cut(CutFull))
	}
	return nil
}

func (b *builder) rawText(job *printjob.Job) error {
	b.add(Init(), CodePage(b.opts.CodePage), Align(AlignLeft))
	b.wrapped(job.RawText.Text)
	b.add(FeedLines(3))
	if job.Options.CutPaper {
		b.add(Cut(CutFull))
	}
	return nil
}

// drawer encodes a pulse-only job. No code page, no text: the whole sequence
// is the control path.
func (b *builder) drawer(job *printjob.Job) error {
	d := drawerOrDefault(job.Drawer)
	b.add(Init(), DrawerPulse(d.Pin, d.OnMs, d.OffMs))
	return nil
}

func drawerOrDefault(d *printjob.DrawerPayload) *printjob.DrawerPayload {
	if d == nil {
		return &printjob.DrawerPayload{Pin: 0, OnMs: 120, OffMs: 240}
	}
	out := *d
	if out.OnMs == 0 {
		out.OnMs = 120
	}
	if out.OffMs == 0 {
		out.OffMs = 240
	}
	return &out
}

func (b *builder) barcode(p *printjob.BarcodePayload) error {
	sym, ok := SymbologyFromName(p.Symbology)
	if !ok {
		return printjob.NewError(printjob.ErrProtocolRejected, fmt.Sprintf("unknown symbology %q", p.Symbology))
	}
	if err := checkAlphabet(sym, p.Value); err != nil {
		return err
	}
	hri := 0
	if p.Caption {
		hri = 2
	}
	b.add(Align(AlignCenter), BarHeight(80), BarWidth(2), HRIPosition(hri), Barcode(sym, p.Value), FeedLines(1))
	return nil
}

func (b *builder) qr(p *printjob.QRPayload) {
	size := p.Size
	if size == 0 {
		size = 6
	}
	b.add(Align(AlignCenter), QR(p.Value, size), FeedLines(1))
}

// checkAlphabet enforces the symbology's character set. This is the control
// path: a bad character fails the job instead of being substituted.
func checkAlphabet(sym Symbology, value string) error {
	if value == "" {
		return printjob.NewError(printjob.ErrProtocolRejected, "empty barcode value")
	}

	var valid func(r rune) bool
	switch sym {
	case SymEAN13, SymEAN8, SymUPCA, SymUPCE, SymITF:
		valid = func(r rune) bool { return r >= '0' && r <= '9' }
	case SymCODE39:
		valid = func(r rune) bool {
			return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || strings.ContainsRune(" -.$/+%", r)
		}
	case SymCODABAR:
		valid = func(r rune) bool {
			return (r >= '0' && r <= '9') || strings.ContainsRune("-$:/.+ABCD", r)
		}
	default: // code128, code93 take printable ASCII
		valid = func(r rune) bool { return r >= 0x20 && r <= 0x7E }
	}
	for _, r := range value {
		if !valid(r) {
			return printjob.NewError(printjob.ErrUnsupportedCharacter,
				fmt.Sprintf("character %q not encodable for %s", r, sym))
		}
	}

	switch sym {
	case SymEAN13:
		if len(value) != 12 && len(value) != 13 {
			return printjob.NewError(printjob.ErrProtocolRejected, "ean13 requires 12 or 13 digits")
		}
	case SymEAN8:
		if len(value) != 7 && len(value) != 8 {
			return printjob.NewError(printjob.ErrProtocolRejected, "ean8 requires 7 or 8 digits")
		}
	case SymUPCA:
		if len(value) != 11 && len(value) != 12 {
			return printjob.NewError(printjob.ErrProtocolRejected, "upca requires 11 or 12 digits")
		}
	}
	return nil
}
