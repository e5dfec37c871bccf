package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// MaterialHandler maneja las peticiones HTTP del registro de materiales.
type MaterialHandler struct {
	uc            *usecase.MaterialUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *usecase.MaterialUseCase, replenishment *inventory.ReplenishmentUseCase) *MaterialHandler {
	return &MaterialHandler{uc: uc, replenishment: replenishment}
}

// List godoc
// @Summary      Listar materiales
// @Tags         materiais
// @Security     Bearer
// @Produce      json
// @Param        busca      query  string  false  "Texto en nome, localizacao o descricao (sin acentos)"
// @Param        categoria  query  string  false  "Categoría exacta"
// @Param        status     query  string  false  "todos | ativos | baixoEstoque | zerados | inativos"
// @Param        ordenar    query  string  false  "nome | quantidade | atualizadoEm"
// @Success      200  {array}   dto.MaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /materiais [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	var in dto.MaterialFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar material
// @Tags         materiais
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "nome obligatorio; estoqueMinimo por defecto 5"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /materiais [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Material con su historial de movimientos
// @Tags         materiais
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del material"
// @Param        limit  query  int     false  "Máximo de movimientos"  default(50)
// @Success      200  {object}  dto.MaterialDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /materiais/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	limit := dto.ClampLimit(c.QueryInt("limit", dto.DefaultListLimit))
	out, err := h.uc.GetWithHistory(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar material
// @Description  Una quantidade distinta de la actual se registra como movimiento de corrección a nombre de tecnico.
// @Tags         materiais
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del material"
// @Param        body  body  dto.UpdateMaterialRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.UpdateMaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /materiais/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Tecnico == "" {
		in.Tecnico = GetUserName(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Dar de baja un material
// @Description  Baja lógica: el material y su historial se conservan.
// @Tags         materiais
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /materiais/{id} [delete]
func (h *MaterialHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.SetActive(c.UserContext(), c.Params("id"), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetActive godoc
// @Summary      Activar o desactivar material
// @Tags         materiais
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del material"
// @Param        body  body  dto.SetActiveRequest  true  "ativo"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /materiais/{id}/ativo [patch]
func (h *MaterialHandler) SetActive(c *fiber.Ctx) error {
	var in dto.SetActiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Ativo == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ativo es obligatorio", Field: "ativo"})
	}
	out, err := h.uc.SetActive(c.UserContext(), c.Params("id"), *in.Ativo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Materiales activos en bajo stock con cantidad sugerida, priorizados por consumo de los últimos 30 días.
// @Tags         materiais
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /materiais/reposicao [get]
func (h *MaterialHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(list),
		"reposicao": list,
	})
}
