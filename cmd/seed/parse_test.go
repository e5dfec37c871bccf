package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCSV(t *testing.T) {
	in := "Nome;Descrição;Quantidade;Localização;Estoque Minimo;Categoria\n" +
		"Cabo HDMI;2 metros;10;Armário A;3;Cabos\n" +
		"Alicate;;;Bancada;;\n" +
		";linha sem nome;1;;;\n" +
		"Mouse;;dez;;;\n"

	rows, errs, err := parseCSV(strings.NewReader(in), ';')
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "línea 5")

	first := rows[0].req
	assert.Equal(t, "Cabo HDMI", first.Nome)
	assert.Equal(t, "2 metros", first.Descricao)
	assert.Equal(t, "Armário A", first.Localizacao)
	require.NotNil(t, first.Quantidade)
	assert.Equal(t, 10, *first.Quantidade)
	require.NotNil(t, first.EstoqueMinimo)
	assert.Equal(t, 3, *first.EstoqueMinimo)
	require.NotNil(t, first.Categoria)
	assert.Equal(t, "Cabos", *first.Categoria)

	second := rows[1]
	assert.Equal(t, 3, second.line)
	assert.Nil(t, second.req.Quantidade, "vacío usa el valor por defecto del registro")
	assert.Nil(t, second.req.EstoqueMinimo)
	assert.Nil(t, second.req.Categoria)
}

func TestParseCSV_SinColumnaNome(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader("produto,quantidade\nx,1\n"), ',')
	assert.Error(t, err)
}

func TestDecoder_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("nome;localizacao\nFita isolante;Armário B\n")
	require.NoError(t, err)

	r, err := decoder(bytes.NewBufferString(raw), "latin1")
	require.NoError(t, err)
	rows, _, err := parseCSV(r, ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Armário B", rows[0].req.Localizacao)

	_, err = decoder(bytes.NewBufferString(raw), "ebcdic")
	assert.Error(t, err)
}
