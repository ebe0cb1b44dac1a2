package dispatch

import (
	"context"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/escpos"
	"github.com/WILMAR-10/wilpos-print-agent/internal/render"
	"github.com/WILMAR-10/wilpos-print-agent/internal/transport"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// strategy is one tier of the fallback chain. execute returns the exported
// file path for tiers that produce one, empty otherwise.
type strategy interface {
	kind() printjob.TransportKind
	execute(ctx context.Context, desc device.Descriptor, job printjob.Job, enc EncodeDefaults) (string, error)
}

// rawStrategy encodes the job as ESC/POS bytes and writes them over the
// device's own transport.
type rawStrategy struct {
	drivers transport.Drivers
}

func (s *rawStrategy) kind() printjob.TransportKind { return printjob.TransportRawProtocol }

func (s *rawStrategy) execute(ctx context.Context, desc device.Descriptor, job printjob.Job, enc EncodeDefaults) (string, error) {
	drv, ok := s.drivers.For(desc)
	if !ok || !drv.Available(desc) {
		return "", printjob.NewError(printjob.ErrTransportUnavailable,
			"no raw driver accepts device "+desc.Name)
	}

	opts := escpos.Options{
		Columns:  enc.Columns,
		CodePage: escpos.CodePageFromName(enc.CodePage),
		DotWidth: render.PaperDots(enc.PaperWidth),
	}
	if job.Kind == printjob.KindReceipt && job.Receipt != nil {
		path := job.Receipt.Header.LogoPath
		if enc.LogoPath != "" {
			path = enc.LogoPath
		}
		opts.Logo = loadLogo(path)
	}

	encoded, err := escpos.Encode(&job, opts)
	if err != nil {
		return "", err
	}

	conn, err := drv.Open(ctx, desc)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	for i := 0; i < copies(job); i++ {
		if err := conn.Write(ctx, encoded.Bytes); err != nil {
			return "", err
		}
	}
	return "", nil
}

// renderedStrategy rasterizes the job. Spooler devices take the image as a
// document through their own driver; raw transports take it as a single
// raster command.
type renderedStrategy struct {
	drivers transport.Drivers
}

func (s *renderedStrategy) kind() printjob.TransportKind { return printjob.TransportRenderedDocument }

func (s *renderedStrategy) execute(ctx context.Context, desc device.Descriptor, job printjob.Job, enc EncodeDefaults) (string, error) {
	img, err := render.Document(job, render.Options{PaperWidth: enc.PaperWidth, LogoPath: enc.LogoPath})
	if err != nil {
		return "", err
	}

	if desc.Transport == device.TransportSpooler {
		return "", s.submitDocument(ctx, desc, img, job)
	}
	return "", s.writeRaster(ctx, desc, img, job, enc)
}

func (s *renderedStrategy) submitDocument(ctx context.Context, desc device.Descriptor, img image.Image, job printjob.Job) error {
	drv, ok := s.drivers[device.TransportSpooler]
	if !ok {
		return printjob.NewError(printjob.ErrTransportUnavailable, "spooler driver not configured")
	}
	sub, ok := drv.(transport.DocumentSubmitter)
	if !ok {
		return printjob.NewError(printjob.ErrTransportUnavailable, "spooler driver cannot submit documents")
	}

	tmp, err := os.CreateTemp("", "wilpos-doc-*.png")
	if err != nil {
		return printjob.WrapError(printjob.ErrTransportUnavailable, "cannot stage document", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := render.SavePNG(tmpPath, img); err != nil {
		return printjob.WrapError(printjob.ErrTransportUnavailable, "cannot stage document", err)
	}

	for i := 0; i < copies(job); i++ {
		if err := sub.SubmitDocument(ctx, desc.Name, tmpPath); err != nil {
			return err
		}
	}
	return nil
}

func (s *renderedStrategy) writeRaster(ctx context.Context, desc device.Descriptor, img image.Image, job printjob.Job, enc EncodeDefaults) error {
	drv, ok := s.drivers.For(desc)
	if !ok || !drv.Available(desc) {
		return printjob.NewError(printjob.ErrTransportUnavailable,
			"no raw driver accepts device "+desc.Name)
	}

	cmds := []escpos.Command{escpos.Init()}
	if job.Options.OpenDrawer {
		cmds = append(cmds, escpos.DrawerPulse(0, 120, 240))
	}
	cmds = append(cmds,
		escpos.RasterFromImage(img, render.PaperDots(enc.PaperWidth)),
		escpos.FeedLines(3),
	)
	if job.Options.CutPaper {
		cmds = append(cmds, escpos.Cut(escpos.CutFull))
	}
	data := escpos.Marshal(cmds)

	conn, err := drv.Open(ctx, desc)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i := 0; i < copies(job); i++ {
		if err := conn.Write(ctx, data); err != nil {
			return err
		}
	}
	return nil
}

// pdfStrategy is the archival tier: nothing reaches paper, but the document
// survives in the export directory.
type pdfStrategy struct {
	exporter *render.PDFExporter
}

func (s *pdfStrategy) kind() printjob.TransportKind { return printjob.TransportPdfExport }

func (s *pdfStrategy) execute(ctx context.Context, desc device.Descriptor, job printjob.Job, enc EncodeDefaults) (string, error) {
	if s.exporter == nil {
		return "", printjob.NewError(printjob.ErrTransportUnavailable, "pdf export not configured")
	}
	return s.exporter.Export(ctx, job)
}

func copies(job printjob.Job) int {
	if job.Options.Copies < 1 {
		return 1
	}
	return job.Options.Copies
}

// loadLogo reads a logo image, nil when missing. Receipts print without
// their logo rather than fail.
func loadLogo(path string) image.Image {
	if path == "" {
		return nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil
	}
	return img
}
