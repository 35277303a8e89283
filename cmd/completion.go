package cmd

import (
	"strings"

	"github.com/etnz/cashbook"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
//
// Install it with COMP_INSTALL=1 cbk, see github.com/posener/complete.
func Completion() *complete.Command {
	var types predict.Set
	for _, t := range cashbook.Types {
		types = append(types, strings.ToLower(t.String()))
	}
	dates := predict.Set{"now", "-1d", "-1w", "-1m"}
	mutation := map[string]complete.Predictor{
		"t": types,
		"a": predict.Something,
		"d": dates,
		"m": predict.Something,
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"add":  {Flags: mutation},
			"edit": {Flags: mutation},
			"rm":   {},
			"show": {},
			"list": {Flags: map[string]complete.Predictor{
				"n":    predict.Something,
				"more": predict.Something,
				"all":  predict.Nothing,
			}},
			"balance":  {Flags: map[string]complete.Predictor{"signed": predict.Nothing}},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
		Flags: map[string]complete.Predictor{
			"store":    predict.Set{"mem:", "file:.cashbook", "sqlite:cashbook.db", "redis://localhost:6379/0", "postgres://localhost/cashbook"},
			"currency": predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"},
			"v":        predict.Nothing,
			"raw":      predict.Nothing,
		},
	}
}
