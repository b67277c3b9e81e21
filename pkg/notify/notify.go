// Package notify reports the agreement outcome of study runs to external channels.
// An outcome is classified first (agreed, low agreement, degenerate, failed) and only
// the classes selected in the configuration are delivered.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/config"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/report"
)

// Status classifies the outcome of one study run.
type Status string

// outcome classes, in decreasing severity.
const (
	StatusFailed       Status = "failure"
	StatusLowAgreement Status = "low_agreement"
	StatusDegenerate   Status = "degenerate"
	StatusAgreed       Status = "success"
)

const defaultTimeout = 10 * time.Second

// Outcome is the result of analyzing one study file. Report is nil when Err is set.
type Outcome struct {
	File     string
	Report   *report.Result
	Err      error
	Duration time.Duration
}

// logger is the subset of progress.Logger used here.
type logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// Service delivers outcomes to the configured channels. A nil *Service is valid and sends nothing.
type Service struct {
	channels  []channel
	policy    policy
	precision int
	timeout   time.Duration
	hostname  string
	log       logger
}

// New builds the notification service from cfg. It returns nil, nil when no channel is
// configured. Precision of the reported alpha values is taken from cfg.Precision.
func New(cfg *config.Config, log logger) (*Service, error) {
	if len(cfg.NotifyChannels) == 0 {
		return nil, nil //nolint:nilnil // nil service is a valid no-op sender
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	svc := &Service{
		policy: policy{
			onError:      cfg.NotifyOnError,
			onComplete:   cfg.NotifyOnComplete,
			onDegenerate: cfg.NotifyOnDegenerate,
			below:        cfg.NotifyAlphaBelow,
			belowSet:     cfg.NotifyAlphaBelowSet,
		},
		precision: cfg.Precision,
		timeout:   time.Duration(cfg.NotifyTimeoutMs) * time.Millisecond,
		hostname:  hostname,
		log:       log,
	}
	if svc.timeout <= 0 {
		svc.timeout = defaultTimeout
	}

	for _, name := range cfg.NotifyChannels {
		name = strings.ToLower(strings.TrimSpace(name))
		build, ok := builders[name]
		if !ok {
			return nil, fmt.Errorf("unknown notification channel: %q", name)
		}
		chs, bErr := build(&cfg.Values)
		var off *disabledError
		if errors.As(bErr, &off) {
			log.Warn("%s notifications disabled: %s", name, off.reason)
			continue
		}
		if bErr != nil {
			return nil, fmt.Errorf("%s channel: %w", name, bErr)
		}
		svc.channels = append(svc.channels, chs...)
	}
	if len(svc.channels) == 0 {
		log.Warn("no notification channel available, outcomes will not be delivered")
	}
	log.Debug("notifications via %s", describe(svc.channels))
	return svc, nil
}

// Send classifies o and delivers it to every channel when the configuration asks for
// that class. Delivery is best effort, failures are logged and never returned.
func (s *Service) Send(ctx context.Context, o Outcome) {
	if s == nil {
		return
	}
	n := s.policy.classify(o)
	if !s.policy.wants(n.status) {
		s.log.Debug("notification skipped for %s: %s", o.File, n.status)
		return
	}
	n.host, n.precision = s.hostname, s.precision

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	for _, ch := range s.channels {
		text, err := ch.render(n)
		if err != nil {
			s.log.Warn("notification for %s not rendered: %v", o.File, err)
			continue
		}
		if err := ch.notifier.Send(ctx, ch.dest, text); err != nil {
			s.log.Warn("%s notification failed: %v", ch.notifier, err)
		}
	}
}

// policy decides which outcomes are worth a notification.
type policy struct {
	onError      bool
	onComplete   bool
	onDegenerate bool
	below        float64
	belowSet     bool
}

// classify assigns a status to o and collects the categories that fall below the threshold.
// low agreement takes precedence over degenerate rows.
func (p policy) classify(o Outcome) notice {
	n := notice{outcome: o, threshold: p.below, thresholdSet: p.belowSet}
	if o.Err != nil || o.Report == nil {
		n.status = StatusFailed
		return n
	}

	degenerate := false
	for _, row := range o.Report.Categories {
		if row.Error != "" {
			degenerate = true
			continue
		}
		if p.belowSet && row.Alpha < p.below {
			n.low = append(n.low, row.Category)
		}
	}
	switch {
	case p.belowSet && (o.Report.Joint < p.below || len(n.low) > 0):
		n.status = StatusLowAgreement
	case degenerate:
		n.status = StatusDegenerate
	default:
		n.status = StatusAgreed
	}
	return n
}

// wants reports whether outcomes of status st are delivered. low agreement is always
// delivered, setting a threshold is the opt-in.
func (p policy) wants(st Status) bool {
	switch st {
	case StatusFailed:
		return p.onError
	case StatusLowAgreement:
		return true
	case StatusDegenerate:
		return p.onDegenerate || p.onComplete
	default:
		return p.onComplete
	}
}
