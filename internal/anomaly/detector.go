// Package anomaly flags suspicious period-to-period rate changes across the
// records of one batch. The check is local: per meter, consecutive periods
// only, never more than one period back.
package anomaly

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bevalen/tune-energy-ocr-ui/internal/entity"
)

// DefaultThreshold is the relative rate change above which a record is flagged.
const DefaultThreshold = 0.15

// Flag describes one detected anomaly, for operator visibility. The corrected
// estimate is illustrative only and never applied to the record.
type Flag struct {
	RecordIndex       int
	RateDelta         float64
	CorrectedEstimate float64
}

// Detector scans sorted records and annotates anomalies in place.
type Detector struct {
	Threshold float64
	Logger    *slog.Logger
}

// NewDetector builds a detector; a non-positive threshold falls back to the
// default 15%.
func NewDetector(threshold float64, logger *slog.Logger) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{Threshold: threshold, Logger: logger}
}

// Detect sorts the error-free, dated records by (meter, end_date) and compares
// each against its immediate predecessor. A pair with a nil or zero charges or
// kWh value on either side is skipped (the predecessor still advances). When
// the relative $/kWh change exceeds the threshold, the current record's
// Warning is set and the baseline resets so the following record is not
// compared against the anomaly.
//
// Records are mutated in place via the shared pointers; the returned flags
// reference batch sequence indexes.
func (d *Detector) Detect(records []*entity.BillingRecord) []Flag {
	eligible := make([]*entity.BillingRecord, 0, len(records))
	for _, r := range records {
		if !r.Failed() && r.EndDate != nil && *r.EndDate != "" {
			eligible = append(eligible, r)
		}
	}
	// ISO 8601 dates sort chronologically as strings.
	sort.SliceStable(eligible, func(i, j int) bool {
		mi, mj := deref(eligible[i].MeterNumber), deref(eligible[j].MeterNumber)
		if mi != mj {
			return mi < mj
		}
		return *eligible[i].EndDate < *eligible[j].EndDate
	})

	var flags []Flag
	var prev *entity.BillingRecord
	for _, curr := range eligible {
		if prev == nil {
			prev = curr
			continue
		}

		prevCharges, currCharges := value(prev.TotalCharges), value(curr.TotalCharges)
		prevKWH, currKWH := value(prev.TotalKWH), value(curr.TotalKWH)
		if prevCharges == 0 || currCharges == 0 || prevKWH == 0 || currKWH == 0 {
			prev = curr
			continue
		}

		currRate := currCharges / currKWH
		prevRate := prevCharges / prevKWH
		rateDelta := abs((currRate - prevRate) / currRate)

		if rateDelta > d.Threshold {
			estimate := prevRate / currCharges
			curr.Warning = fmt.Sprintf(
				"Anomaly detected: calculated rate changed %.0f%% from previous period",
				rateDelta*100,
			)
			flags = append(flags, Flag{
				RecordIndex:       curr.SequenceIndex,
				RateDelta:         rateDelta,
				CorrectedEstimate: estimate,
			})
			d.Logger.Warn("anomaly.flagged",
				"filename", curr.Filename,
				"sequence_index", curr.SequenceIndex,
				"meter", deref(curr.MeterNumber),
				"rate_delta", rateDelta,
				"corrected_estimate", estimate,
			)
			// Fresh baseline: the next record must not be compared against
			// this anomalous one.
			prev = nil
			continue
		}
		prev = curr
	}
	return flags
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
