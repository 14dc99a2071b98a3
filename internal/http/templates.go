package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	applog "livrocaixa/internal/log"
)

// Page template names under templates/pages.
const (
	pageDashboard = "dashboard"
	pageLedger    = "ledger"
	pageReports   = "reports"
)

// templates holds the shared layout and fragments, plus one clone per page
// so each page can define its own "content" block.
type templates struct {
	base  *template.Template
	pages map[string]*template.Template
}

func parseTemplates(fsys fs.FS) (*templates, error) {
	base, err := template.New("").ParseFS(fsys, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}

	t := &templates{base: base, pages: make(map[string]*template.Template)}
	for _, name := range []string{pageDashboard, pageLedger, pageReports} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(fsys, "templates/pages/"+name+".html"); err != nil {
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
		t.pages[name] = clone
	}
	return t, nil
}

// fragment executes a named partial into memory so a failed render never
// leaves half a fragment on the wire.
func (t *templates) fragment(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.base.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (t *templates) page(name string, data any) ([]byte, error) {
	tmpl, ok := t.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("render page %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.templates.page(name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Page template execution failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			"template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// renderFragment writes a partial with the builder's headers and triggers.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	body, err := s.templates.fragment(name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Fragment template execution failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			"template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	b.BodyHTML(body).Write(w)
}
