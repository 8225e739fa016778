package intake

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/portfoliobuilder/intake/cmd/server/internal/intake"

var (
	tracer = otel.Tracer(name)
	meter  = otel.Meter(name)
)

type counters struct {
	codesIssued       metric.Int64Counter
	notifyFailures    metric.Int64Counter
	verifyRejections  metric.Int64Counter
	commits           metric.Int64Counter
	commitFailures    metric.Int64Counter
	publicIDConflicts metric.Int64Counter
}

func newCounters() (*counters, error) {
	var (
		c   counters
		err error
	)

	if c.codesIssued, err = meter.Int64Counter(
		"intake.codes_issued",
		metric.WithDescription("verification codes generated"),
	); err != nil {
		return nil, err
	}
	if c.notifyFailures, err = meter.Int64Counter(
		"intake.notification_failures",
		metric.WithDescription("verification emails that could not be delivered"),
	); err != nil {
		return nil, err
	}
	if c.verifyRejections, err = meter.Int64Counter(
		"intake.verification_rejections",
		metric.WithDescription("verification attempts that did not pass the gate"),
	); err != nil {
		return nil, err
	}
	if c.commits, err = meter.Int64Counter(
		"intake.submissions_committed",
		metric.WithDescription("submissions written to the database"),
	); err != nil {
		return nil, err
	}
	if c.commitFailures, err = meter.Int64Counter(
		"intake.commit_failures",
		metric.WithDescription("verified submissions that failed to commit"),
	); err != nil {
		return nil, err
	}
	if c.publicIDConflicts, err = meter.Int64Counter(
		"intake.public_id_conflicts",
		metric.WithDescription("public id collisions resolved by regeneration"),
	); err != nil {
		return nil, err
	}

	return &c, nil
}
