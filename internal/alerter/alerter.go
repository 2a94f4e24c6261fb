package alerter

import (
	"fmt"
	"log"
	"strings"

	"TrafficScope/internal/config"
	"TrafficScope/internal/model"
)

// Alerter evaluates the summary of a completed run against predefined rules
// and triggers a consolidated notification when any rule fires. Runs are
// batch, so evaluation happens once per run rather than on a ticker.
type Alerter struct {
	rules    []config.AlerterRule
	notifier model.Notifier
}

// New creates a new Alerter instance.
func New(cfg *config.AlerterConfig, notifier model.Notifier) *Alerter {
	return &Alerter{rules: cfg.Rules, notifier: notifier}
}

// Evaluate checks every rule against the run summary and sends one
// notification covering all triggered rules. It returns the number of rules
// that fired.
func (a *Alerter) Evaluate(runID string, summary model.AnomalySummary) int {
	var triggeredMessages []string

	for _, rule := range a.rules {
		value, unit, ok := metricValue(summary, rule.Metric)
		if !ok {
			log.Printf("Warning: unknown metric '%s' in alerter rule '%s'", rule.Metric, rule.Name)
			continue
		}
		if !check(value, rule.Threshold, rule.Operator) {
			continue
		}

		msg := fmt.Sprintf("<h3>Alert: %s</h3>"+
			"<ul>"+
			"<li><b>Run:</b> <code>%s</code></li>"+
			"<li><b>Metric:</b> <code>%s</code></li>"+
			"<li><b>Condition:</b> <code>%s %.2f</code></li>"+
			"<li><b>Observed Value:</b> <code>%.2f %s</code></li>"+
			"</ul>",
			rule.Name, runID, rule.Metric, rule.Operator, rule.Threshold, value, unit)
		triggeredMessages = append(triggeredMessages, msg)
	}

	if len(triggeredMessages) == 0 {
		return 0
	}

	log.Printf("Alerter evaluation completed. %d alert(s) triggered for run '%s'.", len(triggeredMessages), runID)

	body := "<h1>TrafficScope Alert Summary</h1>" +
		fmt.Sprintf("<p>The following alerts were triggered by run <code>%s</code>:</p><hr>", runID) +
		strings.Join(triggeredMessages, "<hr>")

	if a.notifier != nil {
		subject := fmt.Sprintf("TrafficScope Alert Summary (%d Triggered)", len(triggeredMessages))
		if err := a.notifier.Send(subject, body); err != nil {
			log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
		} else {
			log.Printf("INFO: Consolidated alert notification sent successfully.")
		}
	}

	return len(triggeredMessages)
}

// metricValue resolves a rule metric name against the summary.
func metricValue(s model.AnomalySummary, metric string) (float64, string, bool) {
	switch metric {
	case "total_records":
		return float64(s.TotalRecords), "records", true
	case "total_anomalies":
		return float64(s.AnomaliesDetected), "records", true
	case "anomaly_percentage":
		return s.AnomalyPercentage, "%", true
	}
	return 0, "", false
}

// check compares a value against a threshold based on an operator.
func check(value, threshold float64, operator string) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "=":
		return value == threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		log.Printf("Warning: unknown operator '%s' in alerter rule", operator)
		return false
	}
}
