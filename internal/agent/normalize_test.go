package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"degree symbol", "hoje faz 21.9º na cidade", "hoje faz 21.9 graus na cidade"},
		{"ring symbol", "25°", "25 graus"},
		{"degree with space", "30 º", "30 graus"},
		{"min with colon", "Min: 20", "Mínima: 20"},
		{"min without colon", "min 20", "Mínima: 20"},
		{"max mixed case", "MAX: 30", "Máxima: 30"},
		{"min and max", "Min: 20 Max: 30", "Mínima: 20 Máxima: 30"},
		{"no pattern", "a capital da França é Paris", "a capital da França é Paris"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{
		"21.9º",
		"Min: 20 Max: 30",
		"previsão: 25° com Mínima: 18",
		"texto sem padrão nenhum",
		"Máxima: 30 já normalizado",
	}
	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
	}
}
