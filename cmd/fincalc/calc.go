package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/finwheel/calc-engine/internal/compound"
	"github.com/finwheel/calc-engine/internal/debtplan"
	"github.com/finwheel/calc-engine/internal/fire"
	"github.com/finwheel/calc-engine/internal/model"
	"github.com/finwheel/calc-engine/internal/mortgage"
	"github.com/finwheel/calc-engine/internal/options"
	"github.com/finwheel/calc-engine/internal/rentbuy"
)

var inputPath string

var calcCmd = &cobra.Command{
	Use:   "calc <calculator>",
	Short: "Run a calculator once from JSON inputs",
	Long: `Run a single calculator and print its result as JSON. Inputs are
read from --input, or from stdin when --input is omitted.

Calculators: mortgage, compound, debts, fire, montecarlo, options, rentbuy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInputs()
		if err != nil {
			return err
		}
		result, err := runCalculator(model.Kind(args[0]), data)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults <calculator>",
	Short: "Print a calculator's default inputs as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in interface{}
		switch model.Kind(args[0]) {
		case model.KindMortgage:
			in = mortgage.DefaultInputs()
		case model.KindCompound:
			in = compound.DefaultInputs()
		case model.KindDebts:
			in = debtplan.DefaultInputs()
		case model.KindFire, model.KindMonteCarlo:
			in = fire.DefaultInputs()
		case model.KindOptions:
			in = options.DefaultInputs()
		case model.KindRentBuy:
			in = rentbuy.DefaultInputs()
		default:
			return fmt.Errorf("unknown calculator %q", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	},
}

func init() {
	calcCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to JSON inputs (default stdin)")
}

func readInputs() ([]byte, error) {
	if inputPath == "" || inputPath == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(inputPath)
}

func runCalculator(kind model.Kind, data []byte) (interface{}, error) {
	switch kind {
	case model.KindMortgage:
		var in mortgage.Inputs
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return mortgage.Compute(in)

	case model.KindCompound:
		var in compound.Inputs
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return compound.Compute(in)

	case model.KindDebts:
		var in debtplan.Inputs
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return debtplan.Compute(in)

	case model.KindFire:
		var in fire.Inputs
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return fire.Compute(in)

	case model.KindMonteCarlo:
		var req struct {
			fire.Inputs
			Paths int   `json:"paths"`
			Seed  int64 `json:"seed"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return fire.MonteCarlo(req.Inputs, fire.MonteCarloConfig{
			Paths: req.Paths,
			Seed:  req.Seed,
		})

	case model.KindOptions:
		var in options.Inputs
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return options.Compute(in)

	case model.KindRentBuy:
		var in rentbuy.Inputs
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return rentbuy.Compute(in)
	}

	return nil, fmt.Errorf("unknown calculator %q", kind)
}
