package aws

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const metricsNamespace = "ReservasLaberinto"

// MetricsEmitter publishes submission outcome counts to CloudWatch.
// Emission is best-effort: a metrics failure must never fail a request.
type MetricsEmitter struct {
	CloudWatch CloudWatchAPI
	nowFunc    func() time.Time
}

// NewMetricsEmitter returns an emitter, or nil if the client is nil
// (metrics disabled).
func NewMetricsEmitter(cw CloudWatchAPI) *MetricsEmitter {
	if cw == nil {
		return nil
	}
	return &MetricsEmitter{CloudWatch: cw, nowFunc: time.Now}
}

// EmitSubmissionOutcome records one submission with the given outcome
// dimension (e.g. "success", "gate_conflict", "validation_error",
// "terminal", "exhausted").
func (m *MetricsEmitter) EmitSubmissionOutcome(ctx context.Context, handler, outcome string) {
	if m == nil {
		return
	}
	now := m.nowFunc()
	value := 1.0
	input := &cloudwatch.PutMetricDataInput{
		Namespace: awsString(metricsNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("Submissions"),
				Timestamp:  &now,
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Handler"), Value: awsString(handler)},
					{Name: awsString("Outcome"), Value: awsString(outcome)},
				},
			},
		},
	}
	if _, err := m.CloudWatch.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put metric data failed: %v", err)
	}
}
