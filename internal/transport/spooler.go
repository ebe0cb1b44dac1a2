package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// SpoolerDriver hands jobs to the OS print service. It has two modes: raw
// byte pass-through for thermal printers installed behind the spooler, and
// whole-file document submission for rendered output. Each Write call is one
// spool job, so copies map to jobs rather than repeated bytes on a stream.
type SpoolerDriver struct{}

// NewSpoolerDriver returns the OS print service driver
func NewSpoolerDriver() *SpoolerDriver { return &SpoolerDriver{} }

func (d *SpoolerDriver) Kind() device.Transport { return device.TransportSpooler }

func (d *SpoolerDriver) Available(desc device.Descriptor) bool {
	return desc.Transport == device.TransportSpooler
}

func (d *SpoolerDriver) Open(ctx context.Context, desc device.Descriptor) (Conn, error) {
	if err := spoolToolPresent(); err != nil {
		return nil, printjob.WrapError(printjob.ErrTransportUnavailable, "print spooler tooling missing", err)
	}
	if desc.Name == "" {
		return nil, printjob.NewError(printjob.ErrDeviceNotFound, "spooler device has no name")
	}
	return &spoolerConn{printer: desc.Name}, nil
}

// SubmitDocument prints a rendered file (PNG or PDF) through the spooler's
// own driver instead of pushing raw bytes.
func (d *SpoolerDriver) SubmitDocument(ctx context.Context, deviceName, filePath string) error {
	if runtime.GOOS == "windows" {
		return submitWindowsDocument(ctx, deviceName, filePath)
	}
	out, err := exec.CommandContext(ctx, "lp", "-d", deviceName, filePath).CombinedOutput()
	if err != nil {
		return spoolErr(ctx, "lp submit", out, err)
	}
	return nil
}

func spoolToolPresent() error {
	tool := "lp"
	if runtime.GOOS == "windows" {
		tool = "powershell"
	}
	_, err := exec.LookPath(tool)
	return err
}

type spoolerConn struct {
	printer string
}

func (c *spoolerConn) Write(ctx context.Context, data []byte) error {
	if runtime.GOOS == "windows" {
		return writeWindowsRaw(ctx, c.printer, data)
	}

	cmd := exec.CommandContext(ctx, "lp", "-d", c.printer, "-o", "raw")
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return spoolErr(ctx, "lp raw", out, err)
	}
	return nil
}

func (c *spoolerConn) Close() error { return nil }

// spoolErr keeps the tool's stderr in the message; CUPS puts the reason
// ("unknown destination", "not accepting jobs") there, not in the exit code.
func spoolErr(ctx context.Context, op string, out []byte, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	// CUPS phrasing varies by version: "unknown printer", "The printer or
	// class does not exist."
	if strings.Contains(msg, "unknown printer") || strings.Contains(msg, "does not exist") {
		return printjob.WrapError(printjob.ErrDeviceNotFound, msg, err)
	}
	return fmt.Errorf("%s: %s: %w", op, msg, err)
}

// writeWindowsRaw spools bytes untouched through winspool. The spooler has no
// raw stdin path, so the payload goes through a temp file and a PowerShell
// shim around the WritePrinter API. The shim itself also lands in a temp .ps1
// because only -File invocation binds named parameters.
func writeWindowsRaw(ctx context.Context, printer string, data []byte) error {
	tmp, err := os.CreateTemp("", "wilpos-raw-*.bin")
	if err != nil {
		return fmt.Errorf("spool temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("spool temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("spool temp file: %w", err)
	}

	script, err := os.CreateTemp("", "wilpos-rawspool-*.ps1")
	if err != nil {
		return fmt.Errorf("spool script file: %w", err)
	}
	defer os.Remove(script.Name())
	if _, err := script.WriteString(rawSpoolScript); err != nil {
		script.Close()
		return fmt.Errorf("spool script file: %w", err)
	}
	if err := script.Close(); err != nil {
		return fmt.Errorf("spool script file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive",
		"-ExecutionPolicy", "Bypass", "-File", script.Name(),
		"-PrinterName", printer, "-FilePath", tmp.Name())
	out, err := cmd.CombinedOutput()
	if err != nil {
		return spoolErr(ctx, "raw spool", out, err)
	}
	return nil
}

func submitWindowsDocument(ctx context.Context, printer, filePath string) error {
	var cmd *exec.Cmd
	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		// PDFs print through whatever handler owns the PrintTo verb
		script := fmt.Sprintf("Start-Process -FilePath %q -Verb PrintTo -ArgumentList %q -Wait", filePath, printer)
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	} else {
		cmd = exec.CommandContext(ctx, "mspaint", "/pt", filePath, printer)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return spoolErr(ctx, "document submit", out, err)
	}
	return nil
}

// rawSpoolScript opens the named printer and writes the file's bytes with the
// RAW datatype, bypassing the driver's rendering pipeline.
const rawSpoolScript = `param([string]$PrinterName, [string]$FilePath)
$src = @"
using System;
using System.IO;
using System.Runtime.InteropServices;

public class RawSpool {
    [StructLayout(LayoutKind.Sequential, CharSet = CharSet.Ansi)]
    public class DOCINFOA {
        [MarshalAs(UnmanagedType.LPStr)] public string pDocName;
        [MarshalAs(UnmanagedType.LPStr)] public string pOutputFile;
        [MarshalAs(UnmanagedType.LPStr)] public string pDataType;
    }

    [DllImport("winspool.Drv", EntryPoint = "OpenPrinterA", SetLastError = true, CharSet = CharSet.Ansi)]
    public static extern bool OpenPrinter(string szPrinter, out IntPtr hPrinter, IntPtr pd);
    [DllImport("winspool.Drv", EntryPoint = "ClosePrinter", SetLastError = true)]
    public static extern bool ClosePrinter(IntPtr hPrinter);
    [DllImport("winspool.Drv", EntryPoint = "StartDocPrinterA", SetLastError = true, CharSet = CharSet.Ansi)]
    public static extern bool StartDocPrinter(IntPtr hPrinter, int level, [In] DOCINFOA di);
    [DllImport("winspool.Drv", EntryPoint = "EndDocPrinter", SetLastError = true)]
    public static extern bool EndDocPrinter(IntPtr hPrinter);
    [DllImport("winspool.Drv", EntryPoint = "StartPagePrinter", SetLastError = true)]
    public static extern bool StartPagePrinter(IntPtr hPrinter);
    [DllImport("winspool.Drv", EntryPoint = "EndPagePrinter", SetLastError = true)]
    public static extern bool EndPagePrinter(IntPtr hPrinter);
    [DllImport("winspool.Drv", EntryPoint = "WritePrinter", SetLastError = true)]
    public static extern bool WritePrinter(IntPtr hPrinter, IntPtr pBytes, int dwCount, out int dwWritten);

    public static bool Send(string printerName, string filePath) {
        byte[] bytes = File.ReadAllBytes(filePath);
        IntPtr hPrinter;
        if (!OpenPrinter(printerName, out hPrinter, IntPtr.Zero)) return false;
        DOCINFOA di = new DOCINFOA();
        di.pDocName = "POS raw job";
        di.pDataType = "RAW";
        bool ok = false;
        if (StartDocPrinter(hPrinter, 1, di)) {
            if (StartPagePrinter(hPrinter)) {
                IntPtr buf = Marshal.AllocCoTaskMem(bytes.Length);
                Marshal.Copy(bytes, 0, buf, bytes.Length);
                int written;
                ok = WritePrinter(hPrinter, buf, bytes.Length, out written);
                Marshal.FreeCoTaskMem(buf);
                EndPagePrinter(hPrinter);
            }
            EndDocPrinter(hPrinter);
        }
        ClosePrinter(hPrinter);
        return ok;
    }
}
"@
Add-Type -TypeDefinition $src
if (-not [RawSpool]::Send($PrinterName, $FilePath)) {
    Write-Error "raw write to '$PrinterName' failed"
    exit 1
}
`
