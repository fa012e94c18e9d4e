// Command dorkscan scans web pages for sensitive-data exposure. It runs in
// three modes: explicit URL scanning (-urls), domain discovery scanning
// (-domain), and API server mode (-serve).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dorkscan/dorkscan/pkg/api"
	"github.com/dorkscan/dorkscan/pkg/config"
	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
	"github.com/dorkscan/dorkscan/pkg/dorks"
	"github.com/dorkscan/dorkscan/pkg/fetch"
	"github.com/dorkscan/dorkscan/pkg/metrics"
	"github.com/dorkscan/dorkscan/pkg/mlclass"
	"github.com/dorkscan/dorkscan/pkg/nlp"
	"github.com/dorkscan/dorkscan/pkg/osint"
	"github.com/dorkscan/dorkscan/pkg/report"
	"github.com/dorkscan/dorkscan/pkg/scan"
	"github.com/dorkscan/dorkscan/pkg/scoring"
	"github.com/dorkscan/dorkscan/pkg/search"
	"github.com/dorkscan/dorkscan/pkg/ui"
	"github.com/dorkscan/dorkscan/pkg/vision"
)

func main() {
	var (
		urlList    = flag.String("urls", "", "comma-separated URLs to scan")
		urlFile    = flag.String("url-file", "", "file with one URL per line")
		domain     = flag.String("domain", "", "target domain for dork discovery scanning")
		dorkFile   = flag.String("dork-file", "", "file with custom dork queries, one per line")
		serve      = flag.Bool("serve", false, "run the HTTP API server")
		configPath = flag.String("config", "config.yaml", "path to config file")
		noBanner   = flag.Bool("no-banner", false, "suppress the startup banner")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(defaults.Version)
		return
	}
	if !*noBanner {
		ui.PrintBanner(os.Stdout)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle.Render("config:"), err)
		os.Exit(1)
	}

	orchestrator := buildOrchestrator(cfg)

	switch {
	case *serve:
		runServer(cfg, orchestrator)
	case *domain != "":
		runDomainScan(orchestrator, *domain)
	case *urlList != "" || *urlFile != "" || *dorkFile != "":
		runURLScan(orchestrator, *urlList, *urlFile, *dorkFile)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// buildOrchestrator wires the collaborators the config enables. Stages
// without credentials degrade to disabled variants.
func buildOrchestrator(cfg *config.Config) *scan.Orchestrator {
	opts := detect.Options{}
	if cfg.AISettings.UseNLP {
		opts.Contextual = nlp.NewDetector()
	}
	if cfg.AISettings.UseML {
		opts.Classifier = mlclass.NewClassifier(cfg.ClassifierAPIKey)
	}
	if cfg.AISettings.UseVision {
		opts.Visual = vision.NewAuditor(cfg.VisionAPIKey)
	}

	weights := scoring.Weights{}
	for ftype, w := range cfg.Scoring.Weights {
		weights[ftype] = float64(w)
	}
	if len(weights) == 0 {
		weights = scoring.DefaultWeights()
	}

	var profiler scan.NetworkProfiler
	if cfg.OSINT.ShodanEnabled {
		profiler = osint.NewExplorer(cfg.OSINT.ShodanAPIKey)
	}

	return scan.New(scan.Options{
		Fetcher: fetch.NewBrowser(&fetch.Config{
			Headless:  cfg.Scraper.Headless,
			Timeout:   cfg.FetchTimeout(),
			RateDelay: cfg.RateDelay(),
		}),
		Searcher:          search.NewClient(cfg.GoogleSearch.APIKey, cfg.GoogleSearch.CSEID),
		Profiler:          profiler,
		Reporter:          report.NewWriter(cfg.ReportsDir),
		Ensemble:          detect.NewEnsemble(opts),
		Scorer:            scoring.New(weights, defaults.MaxRiskScore),
		MaxResultsPerDork: cfg.GoogleSearch.MaxResultsPerDork,
	})
}

func runURLScan(orchestrator *scan.Orchestrator, urlList, urlFile, dorkFile string) {
	var urls []string
	for _, u := range strings.Split(urlList, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if urlFile != "" {
		fromFile, err := dorks.LoadFile(urlFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle.Render("url file:"), err)
			os.Exit(1)
		}
		urls = append(urls, fromFile...)
	}

	var queries []string
	if dorkFile != "" {
		var err error
		queries, err = dorks.LoadFile(dorkFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle.Render("dork file:"), err)
			os.Exit(1)
		}
	}

	if len(urls) == 0 && len(queries) == 0 {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("no targets to scan"))
		os.Exit(1)
	}

	orchestrator.Broadcaster().Connect(ui.NewConsolePrinter(os.Stdout))
	job := orchestrator.ScanTargets(signalContext(), urls, queries)
	orchestrator.Close()
	exitByRisk(job)
}

func runDomainScan(orchestrator *scan.Orchestrator, domain string) {
	orchestrator.Broadcaster().Connect(ui.NewConsolePrinter(os.Stdout))
	job := orchestrator.ScanDomain(signalContext(), domain)
	orchestrator.Close()
	exitByRisk(job)
}

func runServer(cfg *config.Config, orchestrator *scan.Orchestrator) {
	collector, err := metrics.NewCollector(metrics.Options{Port: cfg.Server.MetricsPort})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle.Render("metrics:"), err)
		os.Exit(1)
	}
	defer collector.Close()
	defer orchestrator.Close()
	orchestrator.Broadcaster().Connect(collector)

	if err := os.MkdirAll(cfg.ReportsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle.Render("reports dir:"), err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := api.NewServer(orchestrator, addr, cfg.ReportsDir)

	ctx := signalContext()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaults.ServerWriteTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle.Render("server:"), err)
		os.Exit(1)
	}
}

// exitByRisk maps the scan outcome to an exit code so shells and CI can
// branch on it: 0 clean, 3 when any high-risk URL was found.
func exitByRisk(job *scan.Job) {
	bundle := job.Bundle()
	if bundle != nil && bundle.Stats.HighRisk > 0 {
		os.Exit(3)
	}
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
