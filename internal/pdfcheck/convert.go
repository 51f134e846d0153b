package pdfcheck

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Converter produces a PDF/A-3 rendition of a PDF.
type Converter interface {
	Convert(ctx context.Context, src []byte) ([]byte, error)
}

// Ghostscript converts with the gs pdfwrite device.
type Ghostscript struct {
	Path       string // gs binary; "gs" when empty
	ICCProfile string // optional output intent profile
}

// Args returns the gs command line for converting in to out.
func (g *Ghostscript) Args(in, out string) []string {
	args := []string{
		"-dPDFA=3",
		"-dBATCH",
		"-dNOPAUSE",
		"-dNOOUTERSAVE",
		"-dQUIET",
		"-sColorConversionStrategy=RGB",
		"-sDEVICE=pdfwrite",
		"-dPDFACompatibilityPolicy=1",
	}
	if g.ICCProfile != "" {
		args = append(args, "-sOutputICCProfile="+g.ICCProfile)
	}
	return append(args, "-sOutputFile="+out, in)
}

func (g *Ghostscript) Convert(ctx context.Context, src []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "pdfdesk-gs-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(in, src, 0o600); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	bin := g.Path
	if bin == "" {
		bin = "gs"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, g.Args(in, out)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return nil, fmt.Errorf("ghostscript: %w: %s", err, msg)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read converted file: %w", err)
	}
	return data, nil
}
