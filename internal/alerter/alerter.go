package alerter

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
	"FlowSentry/internal/report"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
)

const aiTimeout = 60 * time.Second

// Alert is a rule that fired against a report, with the value it observed.
type Alert struct {
	Rule  config.AlerterRule
	Value float64
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %s %s %g (observed %g)", a.Rule.Name, a.Rule.Metric, a.Rule.Operator, a.Rule.Threshold, a.Value)
}

// Alerter evaluates finished scan reports against predefined rules
// and triggers a notification if any rule is violated.
type Alerter struct {
	rules    []config.AlerterRule
	notifier model.Notifier
	analyzer model.Analyzer
}

// NewAlerter creates a new Alerter instance. analyzer may be nil, in which case
// notifications carry no AI section.
func NewAlerter(cfg *config.AlerterConfig, notifier model.Notifier, analyzer model.Analyzer) (*Alerter, error) {
	for _, rule := range cfg.Rules {
		if _, ok := metricValue(&model.Report{}, rule.Metric); !ok {
			return nil, fmt.Errorf("alerter rule '%s' uses unknown metric '%s'", rule.Name, rule.Metric)
		}
		switch rule.Operator {
		case ">", "<", "=", ">=", "<=":
		default:
			return nil, fmt.Errorf("alerter rule '%s' uses unknown operator '%s'", rule.Name, rule.Operator)
		}
	}

	a := &Alerter{
		rules:    cfg.Rules,
		notifier: notifier,
	}
	if cfg.AIAnalysis.Enabled {
		a.analyzer = analyzer
	}
	return a, nil
}

// Check returns the rules violated by r without notifying anyone.
func (a *Alerter) Check(r *model.Report) []Alert {
	var alerts []Alert
	for _, rule := range a.rules {
		value, _ := metricValue(r, rule.Metric)
		if check(value, rule.Threshold, rule.Operator) {
			alerts = append(alerts, Alert{Rule: rule, Value: value})
		}
	}
	return alerts
}

// Evaluate checks r against all rules and sends one consolidated notification
// when at least one fired. The fired alerts are returned either way.
func (a *Alerter) Evaluate(ctx context.Context, r *model.Report) ([]Alert, error) {
	alerts := a.Check(r)
	if len(alerts) == 0 {
		return nil, nil
	}

	log.Printf("Alerter evaluation completed. %d alert(s) triggered.", len(alerts))

	var md strings.Builder
	md.WriteString("# FlowSentry Alert Summary\n\n")
	md.WriteString("The following alerts were triggered by the last scan:\n\n")
	for _, alert := range alerts {
		md.WriteString("- " + alert.String() + "\n")
	}
	md.WriteString("\n")
	md.WriteString(report.Markdown(r))

	body := string(markdown.ToHTML([]byte(md.String()), nil, nil))

	aiAnalysis, err := a.getAIAnalysis(ctx, md.String())
	if err != nil {
		log.Printf("Failed to get AI analysis: %v", err)
	} else if aiAnalysis != "" {
		html := markdown.ToHTML([]byte(aiAnalysis), nil, nil)
		body += "<hr><h2>AI-Powered Analysis</h2>" + string(html)
	}

	if a.notifier == nil {
		return alerts, nil
	}
	subject := fmt.Sprintf("FlowSentry Alert Summary (%d Triggered)", len(alerts))
	if err := a.notifier.Send(subject, body); err != nil {
		log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
		return alerts, err
	}
	log.Printf("INFO: Consolidated alert notification sent successfully.")
	return alerts, nil
}

func (a *Alerter) getAIAnalysis(ctx context.Context, alertContent string) (string, error) {
	if a.analyzer == nil {
		return "", nil
	}

	log.Println("Requesting AI analysis for alert summary...")
	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	return a.analyzer.AnalyzeAlerts(ctx, alertContent)
}

func metricValue(r *model.Report, metric string) (float64, bool) {
	switch metric {
	case "total_backdoor":
		return float64(r.Totals.Backdoor), true
	case "total_dos":
		return float64(r.Totals.DoS), true
	case "total_recon":
		return float64(r.Totals.Recon), true
	case "total_triggers":
		return float64(r.Totals.Total()), true
	case "malformed_lines":
		return float64(r.Malformed), true
	case "dropped_records":
		return float64(r.Dropped), true
	case "lines_read":
		return float64(r.LinesRead), true
	default:
		return 0, false
	}
}

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
