// Package telemetry ships a periodic self-disclosure log record describing
// the running instance to an external OTLP collector.
package telemetry

import (
	"os"
	"time"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// selfDisclosureBody is the fixed body text of every disclosure record.
const selfDisclosureBody = "Selbstauskunft"

// SelfDisclosure builds the instance disclosure record from a static
// attribute set plus the pod name read from the environment per record.
type SelfDisclosure struct {
	attributes map[string]string
}

func NewSelfDisclosure(attributes map[string]string) *SelfDisclosure {
	return &SelfDisclosure{attributes: attributes}
}

// Record assembles one log record with the fixed body, the current
// timestamp, the configured attributes and, when $HOSTNAME is non-blank, a
// pod_name attribute.
func (s *SelfDisclosure) Record() sdklog.Record {
	var rec sdklog.Record
	now := time.Now()
	rec.SetTimestamp(now)
	rec.SetObservedTimestamp(now)
	rec.SetBody(log.StringValue(selfDisclosureBody))
	rec.SetSeverity(log.SeverityInfo)

	for k, v := range s.attributes {
		rec.AddAttributes(log.String(k, v))
	}
	if host := os.Getenv("HOSTNAME"); host != "" {
		rec.AddAttributes(log.String("pod_name", host))
	}
	return rec
}
