// Package scan orchestrates a full exposure scan: target discovery, page
// fetching, ensemble analysis, risk scoring, report persistence, and live
// event emission.
//
// Two modes share one core loop. Explicit-target mode scans a caller-given
// URL list; domain-discovery mode expands a dork catalog for a domain,
// collects result URLs through the search collaborator, and optionally
// profiles the domain's network footprint first. Each job processes one
// URL at a time; failed fetches are skipped, never fatal.
package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dorkscan/dorkscan/pkg/broadcast"
	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
	"github.com/dorkscan/dorkscan/pkg/dorks"
	"github.com/dorkscan/dorkscan/pkg/events"
	"github.com/dorkscan/dorkscan/pkg/finding"
	"github.com/dorkscan/dorkscan/pkg/osint"
	"github.com/dorkscan/dorkscan/pkg/report"
	"github.com/dorkscan/dorkscan/pkg/scoring"
)

// Status is a job's lifecycle state. Transitions are strictly forward.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Job is one scan's identity and outcome. The scan id stamped on every
// event is the job's ID.
type Job struct {
	ID     string `json:"id"`
	Target string `json:"target"`

	mu     sync.Mutex
	status Status
	bundle *events.FinalBundle
}

func newJob(target string) *Job {
	return &Job{ID: uuid.NewString(), Target: target, status: StatusQueued}
}

// Status returns the job's current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Bundle returns the final results, or nil while the job is still running.
func (j *Job) Bundle() *events.FinalBundle {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.bundle
}

func (j *Job) setRunning() {
	j.mu.Lock()
	j.status = StatusRunning
	j.mu.Unlock()
}

func (j *Job) complete(bundle *events.FinalBundle) {
	j.mu.Lock()
	j.status = StatusCompleted
	j.bundle = bundle
	j.mu.Unlock()
}

// Fetcher renders one URL into analyzable content. A nil return means the
// page could not be fetched and is skipped.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *detect.Content
	Close()
}

// Searcher resolves one dork query into result URLs. An empty slice is a
// valid outcome (no results, missing credentials, backend failure).
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []string
}

// NetworkProfiler reports the service-level exposure of a domain.
type NetworkProfiler interface {
	Enabled() bool
	Scan(ctx context.Context, domain string) *osint.Footprint
}

// Reporter persists a finished result set to disk.
type Reporter interface {
	Persist(results []finding.ScanResult) (report.Artifacts, error)
}

// Options wires an orchestrator's collaborators. Fetcher is required;
// every other field has a working default or a disabled fallback.
type Options struct {
	Fetcher  Fetcher
	Searcher Searcher        // nil: domain mode discovers no URLs
	Profiler NetworkProfiler // nil: no network footprint
	Reporter Reporter        // nil: reports written to the default dir

	Ensemble    *detect.Ensemble
	Scorer      *scoring.Scorer
	Broadcaster *broadcast.Broadcaster

	MaxResultsPerDork int
}

// Orchestrator runs scan jobs. Safe for concurrent use: each job owns its
// accumulator; the fetcher and broadcaster are shared across jobs and
// must themselves tolerate concurrent calls.
type Orchestrator struct {
	fetcher  Fetcher
	searcher Searcher
	profiler NetworkProfiler
	reporter Reporter

	ensemble    *detect.Ensemble
	scorer      *scoring.Scorer
	broadcaster *broadcast.Broadcaster

	maxPerDork int
}

// New creates an orchestrator from the given options.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		fetcher:     opts.Fetcher,
		searcher:    opts.Searcher,
		profiler:    opts.Profiler,
		reporter:    opts.Reporter,
		ensemble:    opts.Ensemble,
		scorer:      opts.Scorer,
		broadcaster: opts.Broadcaster,
		maxPerDork:  opts.MaxResultsPerDork,
	}
	if o.ensemble == nil {
		o.ensemble = detect.NewEnsemble(detect.Options{})
	}
	if o.scorer == nil {
		o.scorer = scoring.New(nil, defaults.MaxRiskScore)
	}
	if o.broadcaster == nil {
		o.broadcaster = broadcast.New()
	}
	if o.reporter == nil {
		o.reporter = report.NewWriter(defaults.ReportsDir)
	}
	if o.maxPerDork <= 0 {
		o.maxPerDork = defaults.MaxResultsPerDork
	}
	return o
}

// Broadcaster returns the event registry so callers can attach
// subscribers.
func (o *Orchestrator) Broadcaster() *broadcast.Broadcaster { return o.broadcaster }

// Close releases the shared fetcher. Call after all jobs have finished;
// a job started later restarts the fetcher's browser on demand.
func (o *Orchestrator) Close() {
	if o.fetcher != nil {
		o.fetcher.Close()
	}
}

// ScanURLs runs an explicit-target scan synchronously and returns the
// completed job.
func (o *Orchestrator) ScanURLs(ctx context.Context, urls []string) *Job {
	return o.ScanTargets(ctx, urls, nil)
}

// ScanTargets runs an explicit-target scan over the given URLs plus the
// result URLs of the given dork queries. Either list may be empty.
func (o *Orchestrator) ScanTargets(ctx context.Context, urls, queries []string) *Job {
	job := newJob(fmt.Sprintf("%d urls", len(urls)))
	o.runTargets(ctx, job, urls, queries)
	return job
}

// ScanDomain runs a domain-discovery scan synchronously and returns the
// completed job.
func (o *Orchestrator) ScanDomain(ctx context.Context, domain string) *Job {
	job := newJob(dorks.NormalizeDomain(domain))
	o.runDomain(ctx, job)
	return job
}

// StartURLs begins an explicit-target scan in the background and returns
// the job acknowledgement immediately. Progress and results arrive as
// events.
func (o *Orchestrator) StartURLs(ctx context.Context, urls []string) *Job {
	return o.StartTargets(ctx, urls, nil)
}

// StartTargets begins a mixed URL/dork scan in the background.
func (o *Orchestrator) StartTargets(ctx context.Context, urls, queries []string) *Job {
	job := newJob(fmt.Sprintf("%d urls", len(urls)))
	go o.runTargets(ctx, job, urls, queries)
	return job
}

// StartDomain begins a domain-discovery scan in the background.
func (o *Orchestrator) StartDomain(ctx context.Context, domain string) *Job {
	job := newJob(dorks.NormalizeDomain(domain))
	go o.runDomain(ctx, job)
	return job
}

func (o *Orchestrator) runTargets(ctx context.Context, job *Job, urls, queries []string) {
	job.setRunning()

	if len(urls) > 0 {
		o.logf(job, "Added %d manual URLs.", len(urls))
	}
	if len(queries) > 0 {
		o.logf(job, "Loaded %d dorks from file.", len(queries))
		urls = append(urls, o.searchQueries(ctx, job, queries)...)
	}

	unique := dedup(urls)
	stats := events.ScanStats{URLsFound: len(unique)}

	if len(unique) == 0 {
		o.logf(job, "No URLs found to scan.")
		o.finish(ctx, job, nil, stats, nil)
		return
	}

	results := o.scanLoop(ctx, job, unique, &stats)
	o.finish(ctx, job, results, stats, nil)
}

// searchQueries runs every dork query through the search collaborator and
// returns the collected URLs.
func (o *Orchestrator) searchQueries(ctx context.Context, job *Job, queries []string) []string {
	if o.searcher == nil {
		return nil
	}
	var urls []string
	for i, query := range queries {
		// Log every fifth dork to avoid flooding subscribers.
		if i == 0 || (i+1)%5 == 0 {
			o.logf(job, "[*] Running dork %d/%d: %s", i+1, len(queries), query)
		}
		found := o.searcher.Search(ctx, query, o.maxPerDork)
		if len(found) > 0 {
			o.logf(job, "Found %d URLs for dork: %s", len(found), query)
			urls = append(urls, found...)
		}
	}
	return urls
}

func (o *Orchestrator) runDomain(ctx context.Context, job *Job) {
	job.setRunning()
	domain := job.Target

	o.logf(job, "[*] Starting domain scan for: %s", domain)

	var footprint *osint.Footprint
	if o.profiler != nil && o.profiler.Enabled() {
		o.logf(job, "[*] Fetching network footprint for %s...", domain)
		footprint = o.profiler.Scan(ctx, domain)
		if footprint != nil && footprint.Enabled {
			o.broadcaster.Broadcast(events.NewOSINT(job.ID, footprint))
			o.logf(job, "[*] Network profile found %d open ports.", len(footprint.Ports))
		}
	}

	queries := dorks.ForDomain(domain)
	o.logf(job, "[*] Generated %d automated dorks for %s", len(queries), domain)

	unique := dedup(o.searchQueries(ctx, job, queries))
	stats := events.ScanStats{TotalDorks: len(queries), URLsFound: len(unique)}

	if len(unique) == 0 {
		o.logf(job, "No results found for %s.", domain)
		o.finish(ctx, job, nil, stats, footprint)
		return
	}
	o.logf(job, "[*] Found %d unique URLs to scan", len(unique))

	results := o.scanLoop(ctx, job, unique, &stats)
	o.finish(ctx, job, results, stats, footprint)
}

// scanLoop is the shared fetch->analyze->score loop. Each successful URL
// produces one ScanResult and one result event. The fetcher is shared
// across jobs and stays open; Close releases it once all jobs are done.
func (o *Orchestrator) scanLoop(ctx context.Context, job *Job, urls []string, stats *events.ScanStats) []finding.ScanResult {
	var results []finding.ScanResult
	for i, url := range urls {
		o.logf(job, "[*] Scanning URL %d/%d: %s", i+1, len(urls), url)

		content := o.fetcher.Fetch(ctx, url)
		if content == nil {
			continue
		}

		findings := o.ensemble.Analyze(ctx, content)
		score, level := o.scorer.Score(findings)

		result := finding.ScanResult{
			URL:       url,
			Findings:  findings,
			RiskScore: score,
			RiskLevel: level,
		}
		results = append(results, result)
		stats.Count(level)

		o.broadcaster.Broadcast(events.NewResult(job.ID, result))
		if score > 0 {
			o.logf(job, "Found %d exposures on %s (Risk: %s)", len(findings), url, level)
		}
	}
	stats.URLsScanned = len(results)
	return results
}

// finish persists reports, emits the terminal event, and completes the
// job. Report failures degrade to a log event; the scan still completes.
func (o *Orchestrator) finish(ctx context.Context, job *Job, results []finding.ScanResult, stats events.ScanStats, footprint *osint.Footprint) {
	var artifacts report.Artifacts
	if len(results) > 0 {
		o.logf(job, "Scan complete. Generating reports...")
		var err error
		artifacts, err = o.reporter.Persist(results)
		if err != nil {
			o.logf(job, "Report generation failed: %v", err)
		} else {
			o.logf(job, "Reports saved to reports folder.")
		}
	}

	bundle := &events.FinalBundle{
		Results: results,
		Stats:   stats,
		Reports: artifacts,
		OSINT:   footprint,
	}
	o.broadcaster.Broadcast(events.NewFinalResults(job.ID, *bundle))
	job.complete(bundle)
}

func (o *Orchestrator) logf(job *Job, format string, args ...any) {
	o.broadcaster.Broadcast(events.NewLog(job.ID, fmt.Sprintf(format, args...)))
}

// dedup removes duplicate URLs, preserving first-seen order.
func dedup(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
