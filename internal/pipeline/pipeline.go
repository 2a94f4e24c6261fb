package pipeline

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"TrafficScope/internal/alerter"
	"TrafficScope/internal/config"
	"TrafficScope/internal/engine/aggregate"
	"TrafficScope/internal/engine/categorize"
	"TrafficScope/internal/engine/detect"
	"TrafficScope/internal/loader"
	"TrafficScope/internal/model"
	"TrafficScope/internal/notification"
	"TrafficScope/internal/plot"
	"TrafficScope/internal/report"
	"TrafficScope/internal/storage"
)

// Result is the structured outcome of one analysis run. The presentation
// layer renders it; the core never does user-facing messaging itself.
type Result struct {
	RunID        string
	Records      []model.TrafficRecord
	Minute       model.TrafficSeries
	Hour         model.TrafficSeries
	Day          model.TrafficSeries
	FeatureNames []string
	Summary      model.AnomalySummary
	Outliers     []model.TrafficRecord
	PlotsDir     string
	ReportsDir   string
}

// Pipeline runs the full batch analysis: load, aggregate, detect, categorize,
// report, plot. Optional sinks (ClickHouse, NATS, alerting) are attached at
// construction and invoked after each successful run; a sink failure is
// logged but never fails the run itself.
//
// A Pipeline holds no per-run state: every Run starts from a fresh record
// set, so concurrent runs do not contaminate one another.
type Pipeline struct {
	cfg      *config.Config
	writer   model.RecordWriter
	events   *notification.EventPublisher
	alerting *alerter.Alerter
}

// New creates a Pipeline and connects the sinks enabled in the config.
func New(cfg *config.Config) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}

	if cfg.ClickHouse.Enabled {
		writer, err := storage.NewClickHouseWriter(cfg.ClickHouse)
		if err != nil {
			return nil, err
		}
		p.writer = writer
	}

	if cfg.Events.Enabled {
		events, err := notification.NewEventPublisher(cfg.Events)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.events = events
	}

	if cfg.Alerter.Enabled {
		if cfg.SMTP.Host != "" {
			notifier := notification.NewEmailNotifier(cfg.SMTP)
			p.alerting = alerter.New(&cfg.Alerter, notifier)
			log.Println("Alerter enabled and initialized.")
		} else {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	return p, nil
}

// Close releases the sink connections.
func (p *Pipeline) Close() {
	if p.writer != nil {
		p.writer.Close()
	}
	if p.events != nil {
		p.events.Close()
	}
}

// Run executes one batch analysis over the input file, writing all artifacts
// into a fresh timestamped directory under the configured output root.
func (p *Pipeline) Run(inputPath string) (*Result, error) {
	runID := time.Now().UTC().Format("2006-01-02_15-04-05.000")
	return p.RunInto(inputPath, filepath.Join(p.cfg.Output.RootPath, runID), runID)
}

// RunInto is Run with an explicit output directory and run ID.
func (p *Pipeline) RunInto(inputPath, outDir, runID string) (*Result, error) {
	records, err := loader.Load(inputPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Run %s: loaded %d records from '%s'", runID, len(records), inputPath)

	plotsDir := filepath.Join(outDir, "plots")
	reportsDir := filepath.Join(outDir, "reports")
	for _, dir := range []string{plotsDir, reportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &model.IOError{Op: "create output directory", Path: dir, Err: err}
		}
	}

	// Branch one: bucket series, series flags, charts.
	minute, hour, day := aggregate.Analyze(records)
	detect.FlagSeries(&minute, p.cfg.Analysis.SigmaMultiplier)
	detect.FlagSeries(&hour, p.cfg.Analysis.SigmaMultiplier)
	detect.FlagSeries(&day, p.cfg.Analysis.SigmaMultiplier)

	if err := plot.Traffic(minute, hour, day, plotsDir); err != nil {
		return nil, &model.ProcessingError{Stage: "plot", Err: err}
	}
	if err := plot.Anomalies(minute, hour, plotsDir); err != nil {
		return nil, &model.ProcessingError{Stage: "plot", Err: err}
	}

	// Branch two: packet flags, categories, reports.
	records, featureNames := detect.FlagPackets(records, p.cfg.Analysis.Contamination, p.cfg.Analysis.MinRecords)
	records = categorize.Apply(records, p.cfg.Analysis.OversizeLengthBytes, p.cfg.Analysis.HighFrequencyRate)

	summary, outliers, err := report.Write(records, reportsDir)
	if err != nil {
		return nil, &model.ProcessingError{Stage: "report", Err: err}
	}

	log.Printf("Run %s: %d/%d records flagged (%.2f%%)",
		runID, summary.AnomaliesDetected, summary.TotalRecords, summary.AnomalyPercentage)

	p.dispatchSinks(runID, records, summary)

	return &Result{
		RunID:        runID,
		Records:      records,
		Minute:       minute,
		Hour:         hour,
		Day:          day,
		FeatureNames: featureNames,
		Summary:      summary,
		Outliers:     outliers,
		PlotsDir:     plotsDir,
		ReportsDir:   reportsDir,
	}, nil
}

// dispatchSinks fans the finished run out to the optional sinks. Failures
// here are logged only; the artifacts on disk are already complete.
func (p *Pipeline) dispatchSinks(runID string, records []model.TrafficRecord, summary model.AnomalySummary) {
	if p.writer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := p.writer.Write(ctx, runID, records); err != nil {
			log.Printf("Error writing run %s to storage: %v", runID, err)
		}
		cancel()
	}

	if p.events != nil {
		if err := p.events.PublishSummary(runID, summary); err != nil {
			log.Printf("Error publishing summary event for run %s: %v", runID, err)
		}
	}

	if p.alerting != nil {
		p.alerting.Evaluate(runID, summary)
	}
}
