package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SimWindows/simwin-sub002/pkg/analysis"
	"github.com/SimWindows/simwin-sub002/pkg/device"
	"github.com/SimWindows/simwin-sub002/pkg/formula"
	"github.com/SimWindows/simwin-sub002/pkg/report"
	"github.com/SimWindows/simwin-sub002/pkg/solution"
	"github.com/SimWindows/simwin-sub002/pkg/structure"
)

var (
	solverFile  = flag.String("solver", "", "YAML file with solver settings")
	biasList    = flag.String("bias", "", "comma separated bias points in V")
	sweepRange  = flag.String("sweep", "", "bias sweep as start:stop:step in V")
	thermal     = flag.Bool("thermal", false, "solve the lattice temperature")
	optical     = flag.Bool("optical", false, "solve the cavity photon balance")
	profile     = flag.Bool("profile", false, "print node profiles of the last bias point")
	loadState   = flag.String("load", "", "read the initial solution from a state file")
	saveState   = flag.String("save", "", "write the final solution to a state file")
	plotFile    = flag.String("plot", "", "write a band diagram PNG")
	metricsAddr = flag.String("metrics", "", "serve Prometheus metrics on this address")
	verbose     = flag.Bool("v", false, "log every iteration")
)

func loadStructure(path string) (*structure.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return structure.Load(f)
}

func loadConfig(path string) (solution.Config, error) {
	if path == "" {
		return solution.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return solution.Config{}, err
	}
	defer f.Close()
	return solution.LoadConfig(f)
}

func parseBiases(s string) ([]float64, error) {
	var biases []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("bias %q: %v", field, err)
		}
		biases = append(biases, v)
	}
	return biases, nil
}

func parseSweep(s string) (*analysis.DCSweep, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("sweep %q: want start:stop:step", s)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("sweep %q: %v", s, err)
		}
		vals[i] = v
	}
	return analysis.NewDCSweep(vals[0], vals[1], vals[2]), nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "err", err)
		}
	}()
	return srv
}

// buildAnalyses turns the bias flags into the analyses to run in order.
func buildAnalyses(d *device.Device) ([]analysis.Analysis, error) {
	var analyses []analysis.Analysis

	if *sweepRange != "" {
		dc, err := parseSweep(*sweepRange)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, dc)
	}
	biases, err := parseBiases(*biasList)
	if err != nil {
		return nil, err
	}
	for _, v := range biases {
		analyses = append(analyses, analysis.NewOP(v))
	}
	if len(analyses) == 0 {
		analyses = append(analyses, analysis.NewOP(d.Bias()))
	}
	return analyses, nil
}

func run() error {
	var err error

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	obs := report.Multi{report.NewLogObserver(nil), report.NewMetricsObserver(reg)}

	var srv *http.Server
	if *metricsAddr != "" {
		srv = serveMetrics(*metricsAddr, reg)
		defer srv.Close()
	}

	s, err := loadStructure(flag.Arg(0))
	if err != nil {
		return fmt.Errorf("reading structure: %v", err)
	}
	cfg, err := loadConfig(*solverFile)
	if err != nil {
		return fmt.Errorf("reading solver settings: %v", err)
	}
	cfg.SolveThermal = cfg.SolveThermal || *thermal
	cfg.SolveOptical = cfg.SolveOptical || *optical

	d, err := device.New(s,
		device.WithConfig(cfg),
		device.WithObserver(obs),
		device.WithCompiler(formula.Literal{}))
	if err != nil {
		return err
	}
	defer d.Close()

	if *loadState != "" {
		data, err := os.ReadFile(*loadState)
		if err != nil {
			return err
		}
		err = d.ReadState(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("loading %s: %w", *loadState, err)
		}
	}

	analyses, err := buildAnalyses(d)
	if err != nil {
		return err
	}

	var last analysis.Analysis
	for _, a := range analyses {
		err = a.Setup(d)
		if err != nil {
			return fmt.Errorf("analysis setup failed: %v", err)
		}
		err = a.Execute()
		printTerminals(os.Stdout, a.GetResults())
		if err != nil {
			return fmt.Errorf("analysis execution failed: %w", err)
		}
		last = a
	}
	fmt.Println(d.Summary())

	if *profile {
		if _, ok := last.(*analysis.OperatingPoint); ok {
			printProfile(os.Stdout, last.GetResults())
		} else {
			op := analysis.NewOP(d.Bias())
			if err = op.Setup(d); err == nil {
				err = op.Execute()
			}
			if err != nil {
				return err
			}
			printProfile(os.Stdout, op.GetResults())
		}
	}

	if *saveState != "" {
		data, err := d.MarshalBinary()
		if err != nil {
			return err
		}
		err = os.WriteFile(*saveState, data, 0o644)
		if err != nil {
			return err
		}
	}

	if *plotFile != "" {
		err = plotBands(d, *plotFile)
		if err != nil {
			return fmt.Errorf("plotting: %v", err)
		}
	}

	if srv != nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		slog.Info("serving metrics, interrupt to exit", "addr", *metricsAddr)
		<-ctx.Done()
	}
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: simwin [flags] <structure.yaml>")
	}

	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}
