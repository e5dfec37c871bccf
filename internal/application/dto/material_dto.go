package dto

import "time"

// CreateMaterialRequest body para POST /materiais.
// Quantidade y EstoqueMinimo son punteros para distinguir "omitido" de cero.
type CreateMaterialRequest struct {
	Nome          string  `json:"nome"`
	Descricao     string  `json:"descricao"`
	Quantidade    *int    `json:"quantidade"`
	Localizacao   string  `json:"localizacao"`
	EstoqueMinimo *int    `json:"estoqueMinimo"`
	Categoria     *string `json:"categoria"`
}

// UpdateMaterialRequest body para PUT /materiais/:id. Campos nil no se modifican.
// Quantidade, si viene y difiere, se registra como movimiento de corrección a nombre de Tecnico.
type UpdateMaterialRequest struct {
	Nome          *string `json:"nome"`
	Descricao     *string `json:"descricao"`
	Localizacao   *string `json:"localizacao"`
	EstoqueMinimo *int    `json:"estoqueMinimo"`
	Categoria     *string `json:"categoria"`
	Quantidade    *int    `json:"quantidade"`
	Tecnico       string  `json:"tecnico"`
	Observacao    string  `json:"observacao"`
}

// SetActiveRequest body para PATCH /materiais/:id/ativo.
type SetActiveRequest struct {
	Ativo *bool `json:"ativo"`
}

// MaterialFilterRequest query de GET /materiais.
type MaterialFilterRequest struct {
	Busca     string `query:"busca"`
	Categoria string `query:"categoria"`
	Status    string `query:"status"`
	Ordenar   string `query:"ordenar"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID            string    `json:"id"`
	Nome          string    `json:"nome"`
	Descricao     string    `json:"descricao"`
	Quantidade    int       `json:"quantidade"`
	Localizacao   string    `json:"localizacao"`
	EstoqueMinimo int       `json:"estoqueMinimo"`
	Categoria     *string   `json:"categoria"`
	Ativo         bool      `json:"ativo"`
	Status        string    `json:"status"`
	CriadoEm      time.Time `json:"criadoEm"`
	AtualizadoEm  time.Time `json:"atualizadoEm"`
}

// MaterialDetailResponse material con su historial de movimientos (más recientes primero).
type MaterialDetailResponse struct {
	MaterialResponse
	Movimentacoes []MovementResponse `json:"movimentacoes"`
}

// UpdateMaterialResponse material actualizado y, si hubo corrección de cantidad, su movimiento.
type UpdateMaterialResponse struct {
	MaterialResponse
	Correcao *MovementResponse `json:"correcao,omitempty"`
}

// ReplenishmentSuggestionDTO ítem de la lista de reposición.
type ReplenishmentSuggestionDTO struct {
	Material           MaterialResponse `json:"material"`
	EstoqueIdeal       int              `json:"estoqueIdeal"`
	QuantidadeSugerida int              `json:"quantidadeSugerida"`
	ConsumoUltimos30d  int              `json:"consumoUltimos30Dias"`
	Prioridade         int              `json:"prioridade"` // 1 = más urgente
}
