package dto

import "time"

// RegisterMovementRequest body para POST /movimentacoes.
type RegisterMovementRequest struct {
	MaterialID string  `json:"materialId"`
	Tipo       string  `json:"tipo"`
	Quantidade int     `json:"quantidade"`
	Tecnico    string  `json:"tecnico"`
	Observacao *string `json:"observacao"`
}

// MaterialRefDTO datos mínimos del material embebidos en un movimiento.
type MaterialRefDTO struct {
	ID        string  `json:"id"`
	Nome      string  `json:"nome"`
	Categoria *string `json:"categoria"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                 string          `json:"id"`
	MaterialID         string          `json:"materialId"`
	Tipo               string          `json:"tipo"`
	Quantidade         int             `json:"quantidade"`
	Tecnico            string          `json:"tecnico"`
	Observacao         *string         `json:"observacao"`
	QuantidadeAnterior int             `json:"quantidadeAnterior"`
	QuantidadeAtual    int             `json:"quantidadeAtual"`
	DataHora           time.Time       `json:"dataHora"`
	Material           *MaterialRefDTO `json:"material,omitempty"`
}

// MovementReportRequest query de GET /relatorios/movimentacoes (fechas YYYY-MM-DD).
type MovementReportRequest struct {
	DataInicio string `query:"dataInicio"`
	DataFim    string `query:"dataFim"`
	Tipo       string `query:"tipo"`
}

// MovementReportResponse resultado del reporte con totales por tipo.
type MovementReportResponse struct {
	Total         int                `json:"total"`
	TotalEntradas int                `json:"totalEntradas"`
	TotalSaidas   int                `json:"totalSaidas"`
	Movimentacoes []MovementResponse `json:"movimentacoes"`
}
