package dto

// SummaryDTO respuesta de GET /estatisticas.
type SummaryDTO struct {
	TotalMateriais        int           `json:"totalMateriais"`
	MateriaisAtivos       int           `json:"materiaisAtivos"`
	MateriaisBaixoEstoque int           `json:"materiaisBaixoEstoque"` // activos con quantidade <= estoqueMinimo
	MateriaisZerados      int           `json:"materiaisZerados"`
	MovimentacoesHoje     int           `json:"movimentacoesHoje"` // día calendario local
	Categorias            []CategoryDTO `json:"categorias"`
}

// CategoryDTO cantidad de materiales activos por categoría.
type CategoryDTO struct {
	Nome  string `json:"nome"`
	Total int    `json:"total"`
}
