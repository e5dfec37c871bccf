package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// MovementHandler registro y consulta de movimientos.
type MovementHandler struct {
	ledger    *inventory.RegisterMovementUseCase
	movements *usecase.MovementUseCase
	materials *usecase.MaterialUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(
	ledger *inventory.RegisterMovementUseCase,
	movements *usecase.MovementUseCase,
	materials *usecase.MaterialUseCase,
) *MovementHandler {
	return &MovementHandler{ledger: ledger, movements: movements, materials: materials}
}

// Register godoc
// @Summary      Registrar entrada o salida
// @Description  Sin tecnico en el body se usa el nombre del token.
// @Tags         movimentacoes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "materialId, tipo (entrada|saida), quantidade > 0, tecnico"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /movimentacoes [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx := c.UserContext()
	mov, err := h.ledger.ApplyMovementFromRequest(ctx, GetUserName(c), in)
	if err != nil {
		return respondError(c, err)
	}

	// Referencia del material para la respuesta; el movimiento ya está confirmado.
	out := dto.NewMovementResponse(mov, nil)
	if m, err := h.materials.Get(ctx, mov.MaterialID); err == nil {
		out.Material = &dto.MaterialRefDTO{ID: m.ID, Nome: m.Nome, Categoria: m.Categoria}
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Movimientos recientes
// @Tags         movimentacoes
// @Security     Bearer
// @Produce      json
// @Param        materialId  query  string  false  "Solo de este material"
// @Param        limit       query  int     false  "Máximo (1-500)"  default(50)
// @Success      200  {array}   dto.MovementResponse
// @Router       /movimentacoes [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	out, err := h.movements.List(c.UserContext(), c.Query("materialId"), c.QueryInt("limit", dto.DefaultListLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
