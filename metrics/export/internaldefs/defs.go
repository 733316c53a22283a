package internaldefs

import (
	attendance "github.com/mzahmi/attendance"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   attendance.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   attendance.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter, in a stable order.
var CounterDefs = []CounterDef{
	{ID: attendance.MetricInitialized, Name: "attendance_initialized_total", Help: "Successful ledger initializations."},
	{ID: attendance.MetricInitializeRejected, Name: "attendance_initialize_rejected_total", Help: "Initialize calls rejected because an admin already exists."},
	{ID: attendance.MetricHashRotated, Name: "attendance_session_rotated_total", Help: "Session hash rotations."},
	{ID: attendance.MetricAdminTransferred, Name: "attendance_admin_transferred_total", Help: "Admin transfers."},
	{ID: attendance.MetricRegisterSuccess, Name: "attendance_register_success_total", Help: "Accepted presence registrations."},
	{ID: attendance.MetricRegisterRejected, Name: "attendance_register_rejected_total", Help: "Rejected presence registrations."},
	{ID: attendance.MetricProfileUpdated, Name: "attendance_profile_updated_total", Help: "Successful profile writes."},
	{ID: attendance.MetricProfileRejected, Name: "attendance_profile_rejected_total", Help: "Rejected profile writes."},
	{ID: attendance.MetricPresenceHit, Name: "attendance_presence_hit_total", Help: "Positive single-user presence checks."},
	{ID: attendance.MetricPresenceMiss, Name: "attendance_presence_miss_total", Help: "Negative single-user presence checks."},
	{ID: attendance.MetricBatchChecked, Name: "attendance_batch_checked_total", Help: "Batch presence queries."},
	{ID: attendance.MetricUnauthorized, Name: "attendance_unauthorized_total", Help: "Gated operations rejected for missing authorization."},
}

// HistogramDefs lists every exported histogram, in a stable order.
var HistogramDefs = []HistogramDef{
	{ID: attendance.MetricBatchLatency, Name: "attendance_check_batch_latency_seconds", Help: "Batch presence query latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// engine's fixed 8-bucket layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is the instrument-name-safe spelling of each bound.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// 8-bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats require.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
