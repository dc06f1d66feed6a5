package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		" jane ":  "%jane%",
		"50%_off": `%50\%\_off%`,
		`C:\temp`: `%C:\\temp%`,
		`100\%`:   `%100\\\%%`,
		"o'brien": "%o'brien%",
		"":        "%%",
	}
	for in, want := range cases {
		assert.Equal(t, want, likePattern(in), in)
	}
}
