package model

// Metric is one business counter with an explicit availability flag.
// An unreachable source leaves Available=false; a zero value with
// Available=true means "measured, and it really was zero".
type Metric struct {
	Value     int64
	Available bool
}

// Count returns an available Metric holding v.
func Count(v int64) Metric {
	return Metric{Value: v, Available: true}
}

// BusinessMetrics is the optional bag of counters sourced from the
// warehouse and the operational database. Fields carry their own
// availability so a partially reachable backend yields a partially
// available bag, never silent zeros.
type BusinessMetrics struct {
	Offers     Metric
	Heartbeats Metric
	Upsells    Metric
}

// Available reports whether any field was sourced successfully.
func (b BusinessMetrics) Available() bool {
	return b.Offers.Available || b.Heartbeats.Available || b.Upsells.Available
}

// Merge overlays other onto b field-wise: available fields in other win.
func (b BusinessMetrics) Merge(other BusinessMetrics) BusinessMetrics {
	if other.Offers.Available {
		b.Offers = other.Offers
	}
	if other.Heartbeats.Available {
		b.Heartbeats = other.Heartbeats
	}
	if other.Upsells.Available {
		b.Upsells = other.Upsells
	}
	return b
}
