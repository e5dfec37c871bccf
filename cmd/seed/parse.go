package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
)

// columnas reconocidas en la cabecera (sin acentos ni mayúsculas).
var columns = map[string]string{
	"nome":           "nome",
	"descricao":      "descricao",
	"quantidade":     "quantidade",
	"localizacao":    "localizacao",
	"estoqueminimo":  "estoqueMinimo",
	"estoque minimo": "estoqueMinimo",
	"categoria":      "categoria",
}

// row fila del CSV ya convertida al request de alta.
type row struct {
	line int
	req  dto.CreateMaterialRequest
}

// decoder devuelve el reader que convierte el encoding indicado a UTF-8.
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("encoding no soportado: %s", encoding)
}

// parseCSV lee la planilla. La primera fila es la cabecera; nome es obligatoria.
// Las filas con números inválidos se devuelven en errs y no se importan.
func parseCSV(r io.Reader, delimiter rune) (rows []row, errs []error, err error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer cabecera: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := inventory.Fold(strings.TrimPrefix(h, "\ufeff"))
		if name, ok := columns[key]; ok {
			index[name] = i
		}
	}
	if _, ok := index["nome"]; !ok {
		return nil, nil, fmt.Errorf("la cabecera no tiene la columna nome")
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return rows, errs, fmt.Errorf("línea %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if field("nome") == "" {
			continue
		}

		req := dto.CreateMaterialRequest{
			Nome:        field("nome"),
			Descricao:   field("descricao"),
			Localizacao: field("localizacao"),
		}
		if req.Quantidade, err = optionalInt(field("quantidade")); err != nil {
			errs = append(errs, fmt.Errorf("línea %d: quantidade: %w", line, err))
			continue
		}
		if req.EstoqueMinimo, err = optionalInt(field("estoqueMinimo")); err != nil {
			errs = append(errs, fmt.Errorf("línea %d: estoqueMinimo: %w", line, err))
			continue
		}
		if c := field("categoria"); c != "" {
			req.Categoria = &c
		}
		rows = append(rows, row{line: line, req: req})
	}
	return rows, errs, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
