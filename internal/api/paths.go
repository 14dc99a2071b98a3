package api

import (
	"net/url"

	"livrocaixa/internal/core"
)

// Browser-facing paths. They are served through the same-origin proxy.
const (
	PDFPath       = "/relatorio/pdf"
	CSVExportPath = "/api/relatorios/exportar-csv"
	UploadsPrefix = "/uploads/"
)

// ReportPDFURL is opened in a new browsing context to download the PDF of f.
func ReportPDFURL(f core.ReportFilter) string {
	return PDFPath + "?" + f.Query().Encode()
}

func ReportCSVURL(f core.ReportFilter) string {
	return CSVExportPath + "?" + f.Query().Encode()
}

// UploadURL points at a stored attachment.
func UploadURL(filename string) string {
	return UploadsPrefix + url.PathEscape(filename)
}
