// seed importa materiales desde una planilla CSV exportada del sistema anterior.
// Cada fila pasa por el registro de materiales, así que rige la misma validación que la API.
//
// Uso: go run ./cmd/seed [-encoding latin1] [-delimiter ';'] [-dry-run] materiais.csv
// Cabecera esperada: nome;descricao;quantidade;localizacao;estoqueMinimo;categoria (solo nome es obligatoria).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/lock"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

func main() {
	encoding := flag.String("encoding", "utf-8", "utf-8 | latin1 | windows-1252")
	delimiter := flag.String("delimiter", ";", "separador de columnas")
	dryRun := flag.Bool("dry-run", false, "solo validar la planilla, sin escribir")
	flag.Parse()

	csvPath := "materiais.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	sep, size := utf8.DecodeRuneInString(*delimiter)
	if size == 0 {
		fmt.Fprintln(os.Stderr, "delimiter vacío")
		os.Exit(1)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := decoder(f, *encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rows, rowErrs, err := parseCSV(r, sep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	for _, e := range rowErrs {
		fmt.Fprintf(os.Stderr, "omitida: %v\n", e)
	}
	if *dryRun {
		fmt.Printf("%d materiales válidos, %d filas omitidas\n", len(rows), len(rowErrs))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	materials := postgres.NewMaterialRepository(pool)
	movements := postgres.NewMovementRepository(pool)
	ledger := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner: postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		Locker:   lock.NewLocalLocker(cfg.Lock.WaitTimeout),
		Logger:   log.Component("ledger"),
	})
	materialUC := usecase.NewMaterialUseCase(materials, movements, ledger)

	imported, failed := 0, len(rowErrs)
	for _, rw := range rows {
		out, err := materialUC.Create(ctx, rw.req)
		if err != nil {
			failed++
			log.Warn().Err(err).Int("line", rw.line).Str("nome", rw.req.Nome).Msg("material rechazado")
			continue
		}
		imported++
		log.Debug().Str("id", out.ID).Str("nome", out.Nome).Int("quantidade", out.Quantidade).Msg("material importado")
	}
	log.Info().Int("importados", imported).Int("omitidos", failed).Str("archivo", csvPath).Msg("importación finalizada")
}
