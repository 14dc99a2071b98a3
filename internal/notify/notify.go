// Package notify models the transient notices shown to the user.
//
// A notice is delivered to the page through an HTMX trigger event. Every
// notice carries its own ID and duration so the client renders it as an
// independent node with its own removal timer; concurrent notices stack
// instead of replacing each other.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Severity selects the visual style of a notice.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
	Info    Severity = "info"
)

// DefaultDuration is how long a notice stays before removing itself.
const DefaultDuration = 5 * time.Second

// TriggerEvent is the client event name carrying a Notice.
const TriggerEvent = "show-notification"

func (s Severity) Valid() bool {
	switch s {
	case Success, Warning, Danger, Info:
		return true
	}
	return false
}

// Class returns the CSS classes for the notice container.
func (s Severity) Class() string {
	if !s.Valid() {
		s = Info
	}
	return "alert alert-" + string(s) + " alert-dismissible fade show"
}

type Notice struct {
	ID         string   `json:"id"`
	Severity   Severity `json:"type"`
	Message    string   `json:"message"`
	DurationMs int      `json:"duration"`
}

// New builds a notice with a fresh ID and the default duration.
// Unknown severities fall back to Info.
func New(severity Severity, message string) Notice {
	if !severity.Valid() {
		severity = Info
	}
	return Notice{
		ID:         "notice-" + uuid.NewString(),
		Severity:   severity,
		Message:    message,
		DurationMs: int(DefaultDuration / time.Millisecond),
	}
}

// User-facing messages.
const (
	MsgTransactionAdded        = "Transação adicionada com sucesso!"
	MsgTransactionAddFailed    = "Erro ao adicionar transação!"
	MsgConfirmDelete           = "Tem certeza que deseja excluir esta transação?"
	MsgTransactionDeleted      = "Transação excluída com sucesso!"
	MsgTransactionDeleteFailed = "Erro ao excluir transação!"
	MsgSelectDates             = "Selecione as datas de início e fim!"
	MsgInvalidRange            = "A data final deve ser igual ou posterior à data inicial!"
	MsgGeneratingReport        = "Gerando relatório..."
	MsgReportReady             = "Relatório gerado com sucesso!"
	MsgReportFailed            = "Erro ao gerar relatório!"
	MsgReportFirst             = "Gere um relatório primeiro!"
	MsgExportDisplayed         = "Os filtros do formulário foram alterados; exportando o relatório exibido."
	MsgSheetExported           = "Relatório exportado para a planilha!"
	MsgSheetExportFailed       = "Erro ao exportar relatório para a planilha!"
	MsgOCRFound                = "Valor identificado no anexo!"
	MsgOCRNothing              = "Nenhum valor encontrado no anexo."
	MsgOCRFailed               = "Erro ao processar anexo!"
	MsgNoTransactions          = "Nenhuma transação cadastrada"
	MsgNoReportTransactions    = "Nenhuma transação encontrada para o período selecionado"
	MsgRateLimited             = "Muitas requisições. Tente novamente em instantes."
)
