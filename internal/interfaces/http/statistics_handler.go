package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

// StatisticsHandler resumen y reportes (solo lectura).
type StatisticsHandler struct {
	uc *analytics.StatisticsUseCase
}

// NewStatisticsHandler construye el handler.
func NewStatisticsHandler(uc *analytics.StatisticsUseCase) *StatisticsHandler {
	return &StatisticsHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen del almacén
// @Tags         estatisticas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SummaryDTO
// @Router       /estatisticas [get]
func (h *StatisticsHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MovementReport godoc
// @Summary      Reporte de movimientos por período
// @Description  dataFim incluye el día completo (hasta 23:59:59.999 hora local).
// @Tags         relatorios
// @Security     Bearer
// @Produce      json
// @Param        dataInicio  query  string  false  "YYYY-MM-DD"
// @Param        dataFim     query  string  false  "YYYY-MM-DD"
// @Param        tipo        query  string  false  "entrada | saida | todos"
// @Success      200  {object}  dto.MovementReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /relatorios/movimentacoes [get]
func (h *StatisticsHandler) MovementReport(c *fiber.Ctx) error {
	var in dto.MovementReportRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.MovementReport(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
