package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gosimple/slug"

	"github.com/dgallion1/pdfdesk/internal/dataset"
	"github.com/dgallion1/pdfdesk/internal/preview"
	"github.com/dgallion1/pdfdesk/internal/report"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) sampleReport() *report.Node {
	return report.Build(dataset.Sample(s.now()), s.sheet)
}

// handleReportHTML serves the paginated preview of the sample report.
func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	pages := s.renderer.Render(s.sampleReport())

	var buf bytes.Buffer
	if err := preview.WriteHTML(&buf, dataset.Title, pages); err != nil {
		s.log.Error("render report", "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Page-Count", strconv.Itoa(len(pages)))
	w.Write(buf.Bytes())
}

// handleReportDOCX serves the sample report as a Word download.
func (s *Server) handleReportDOCX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := preview.WriteDOCX(&buf, s.sampleReport()); err != nil {
		s.log.Error("export report", "error", err)
		jsonError(w, "failed to export report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slug.Make(dataset.Title)+".docx"))
	w.Write(buf.Bytes())
}
