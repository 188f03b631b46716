// Package telemetry defines the vehicle telemetry sample that drives one
// orchestration run, plus the anomaly report produced by analysis.
package telemetry

import (
	"strings"
	"time"
)

// Sample is a single vehicle telemetry reading. It is immutable once
// ingested and is the unit of work for one orchestration run.
type Sample struct {
	VehicleID     string    `json:"vehicle_id"`
	VehicleModel  string    `json:"vehicle_model"`
	Timestamp     time.Time `json:"timestamp"`
	MileageKM     float64   `json:"mileage_km"`
	EngineTempC   float64   `json:"engine_temp_c"`
	RPM           float64   `json:"rpm"`
	BrakePadMM    float64   `json:"brake_pad_mm"`
	OilQualityPct float64   `json:"oil_quality_pct"`
	DTCCodes      []string  `json:"dtc_codes"`
}

// Validate checks the fields required before a sample can be orchestrated.
func (s *Sample) Validate() error {
	if strings.TrimSpace(s.VehicleID) == "" {
		return ErrMissingVehicleID
	}
	if s.MileageKM < 0 {
		return ErrNegativeMileage
	}
	return nil
}

// Normalize fills defaults for optional fields.
func (s *Sample) Normalize() {
	if strings.TrimSpace(s.VehicleModel) == "" {
		s.VehicleModel = "Unknown Model"
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
}

// HasDTC reports whether the sample carries the given diagnostic trouble code.
func (s *Sample) HasDTC(code string) bool {
	for _, c := range s.DTCCodes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// Anomaly describes a single out-of-range reading discovered during analysis.
type Anomaly struct {
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Severity  string  `json:"severity"`
}

// AnomalyReport is the output of the analysis collaborator.
type AnomalyReport struct {
	Status        string             `json:"status"`
	Anomalies     map[string]Anomaly `json:"anomalies"`
	AnomalyCount  int                `json:"anomaly_count"`
	OverallHealth string             `json:"overall_health"`
}

// AnomalyKeys returns the sorted-stable list of anomaly names. Order follows
// a fixed key precedence so summaries are reproducible.
func (r *AnomalyReport) AnomalyKeys() []string {
	if r == nil || len(r.Anomalies) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.Anomalies))
	for _, k := range anomalyKeyOrder {
		if _, ok := r.Anomalies[k]; ok {
			keys = append(keys, k)
		}
	}
	// Anything outside the known set goes last, in map order.
	for k := range r.Anomalies {
		if !isKnownAnomalyKey(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

var anomalyKeyOrder = []string{"engine_temp", "brake_pad", "oil_quality", "high_rpm"}

func isKnownAnomalyKey(k string) bool {
	for _, known := range anomalyKeyOrder {
		if k == known {
			return true
		}
	}
	return false
}
