package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/simple-finance/internal/config"
	"github.com/iwvelando/simple-finance/internal/form"
	"github.com/iwvelando/simple-finance/internal/logging"
	"github.com/iwvelando/simple-finance/pkg/constants"
	"github.com/iwvelando/simple-finance/pkg/output"
	"github.com/iwvelando/simple-finance/pkg/tvm"
	"github.com/iwvelando/simple-finance/pkg/validation"
	"go.uber.org/zap"
)

// loadConfiguration reads the config file, falling back to defaults and the
// environment when the default file is absent.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.LoadEnvironment()
	}
	return config.LoadConfiguration(path)
}

// parseUnknowns turns "fv,rate" or "all" into fields.
func parseUnknowns(value string) ([]tvm.Field, error) {
	if strings.TrimSpace(value) == "all" {
		return tvm.Fields(), nil
	}
	var fields []tvm.Field
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		field, err := tvm.ParseField(part)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no field to solve for")
	}
	return fields, nil
}

// evaluate solves each unknown and reports whether any calculation failed.
func evaluate(logger *zap.Logger, calculator *form.Calculator, input form.Form, unknowns []tvm.Field) ([]form.Result, bool) {
	results := make([]form.Result, 0, len(unknowns))
	failed := false
	for _, unknown := range unknowns {
		result := calculator.Evaluate(input, unknown)
		if result.Err != nil {
			failed = true
			logger.Warn("calculation failed",
				zap.String("op", "main"),
				zap.String("unknown", unknown.String()),
				zap.Error(result.Err),
			)
		}
		results = append(results, result)
	}
	return results, failed
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	solveFlag := flag.String("solve", "", "field(s) to solve for: fv, pv, pmt, rate, n, a comma separated list, or all")
	pv := flag.String("pv", "", "present value (PV)")
	fv := flag.String("fv", "", "future value (FV)")
	pmt := flag.String("pmt", "", "periodic payment (PMT)")
	rate := flag.String("rate", "", "interest rate per period in percent (I/Y)")
	periods := flag.String("n", "", "number of periods (N)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	unknowns, err := parseUnknowns(*solveFlag)
	if err != nil {
		logger.Fatal("failed to parse -solve",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	input := form.Form{
		PresentValue:    *pv,
		FutureValue:     *fv,
		PeriodicPayment: *pmt,
		InterestRate:    *rate,
		NumberOfPeriods: *periods,
	}

	solver := tvm.NewSolver(logger, conf.RateOptions())
	calculator := form.NewCalculator(logger, solver)

	results, failed := evaluate(logger, calculator, input, unknowns)

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, results)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, results)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, results)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if failed {
		_ = logger.Sync()
		os.Exit(1)
	}
}
