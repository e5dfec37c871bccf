package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MaterialUC       *usecase.MaterialUseCase
	MovementUC       *usecase.MovementUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	StatisticsUC     *analytics.StatisticsUseCase
	JWTSecret        string
	JWTIssuer        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Rutas de negocio (Bearer Token si JWT_SECRET está configurado)
	auth := AuthMiddleware(deps.JWTSecret, deps.JWTIssuer)

	// Materiais
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.Replenishment)
	materials := app.Group("/materiais", auth)
	materials.Get("/", materialHandler.List)
	materials.Post("/", materialHandler.Create)
	materials.Get("/reposicao", materialHandler.Replenishment) // antes de /:id
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", materialHandler.Update)
	materials.Delete("/:id", materialHandler.Deactivate)
	materials.Patch("/:id/ativo", materialHandler.SetActive)

	// Movimentações
	movementHandler := NewMovementHandler(deps.RegisterMovement, deps.MovementUC, deps.MaterialUC)
	movements := app.Group("/movimentacoes", auth)
	movements.Post("/", movementHandler.Register)
	movements.Get("/", movementHandler.List)

	// Estatísticas y relatórios
	statsHandler := NewStatisticsHandler(deps.StatisticsUC)
	app.Get("/estatisticas", auth, statsHandler.Summary)
	app.Get("/relatorios/movimentacoes", auth, statsHandler.MovementReport)
}
