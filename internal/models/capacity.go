package models

// StatusCategory is the coarse connection state of a generation unit.
type StatusCategory string

const (
	StatusConnected StatusCategory = "CONNECTED"
	StatusSCR       StatusCategory = "SCR"
	StatusICC       StatusCategory = "ICC"
	StatusOther     StatusCategory = "OTHER"
)

// TransformerRecord is one row of the equipment table.
type TransformerRecord struct {
	Row             int      `json:"row"`
	SubstationName  string   `json:"substation_name"`
	SubstationKey   string   `json:"substation_key"`
	TransformerName string   `json:"transformer_name"`
	Capacity        float64  `json:"capacity"`
	AppliesFlag     string   `json:"applies_flag"`
	Feeders         []string `json:"feeders"` // one entry per feeder column, may be blank
}

// GenerationRecord is one row of the distributed-generation table.
type GenerationRecord struct {
	Row            int            `json:"row"`
	SubstationName string         `json:"substation_name"`
	SubstationKey  string         `json:"substation_key"`
	FeederName     string         `json:"feeder_name"`
	FeederKey      string         `json:"feeder_key"`
	PowerMW        float64        `json:"power_mw"`
	StatusText     string         `json:"status_text"`
	Status         StatusCategory `json:"status"`

	// pass-through fields, only used by the detail report
	ProcessID string `json:"process_id,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Commune   string `json:"commune,omitempty"`
	PoleID    string `json:"pole_id,omitempty"`
}

// FeederAssociation links a transformer to one of its feeders. A transformer
// without feeders produces a single association with empty feeder fields.
type FeederAssociation struct {
	Row             int
	Source          int // position of the record in the expanded input
	SubstationKey   string
	SubstationName  string
	TransformerName string
	Capacity        float64
	FeederName      string
	FeederKey       string
}

// Bare reports whether the association stands for a transformer with no feeders.
func (a FeederAssociation) Bare() bool {
	return a.FeederKey == ""
}

// TransformerGroup is every transformer of a substation sharing the same
// feeder set.
type TransformerGroup struct {
	SubstationKey  string   `json:"substation_key"`
	SubstationName string   `json:"substation_name"`
	Transformers   []string `json:"transformers"`
	Capacity       float64  `json:"capacity"`
	FeederKeys     []string `json:"feeder_keys"`
	FeederNames    []string `json:"feeder_names"`
}

// LoadTotals holds the subtracted generation per status category.
type LoadTotals struct {
	Connected float64 `json:"connected"`
	ICC       float64 `json:"icc"`
	SCR       float64 `json:"scr"`
}

// Total is Connected + ICC + SCR.
func (l LoadTotals) Total() float64 {
	return l.Connected + l.ICC + l.SCR
}

// SummaryRow is one output line per TransformerGroup.
type SummaryRow struct {
	Substation      string  `json:"substation"`
	Transformers    string  `json:"transformers"`
	Capacity        float64 `json:"capacity"`
	Connected       float64 `json:"connected"`
	ICC             float64 `json:"icc"`
	SCR             float64 `json:"scr"`
	TotalSubtracted float64 `json:"total_subtracted"`
	Available       float64 `json:"available"`
	Feeders         string  `json:"feeders"`
}

// Diagnostics counts what a run absorbed instead of failing on.
type Diagnostics struct {
	EquipmentRows         int `json:"equipment_rows"`
	GenerationRows        int `json:"generation_rows"`
	FeederColumns         int `json:"feeder_columns"`
	InScopeTransformers   int `json:"in_scope_transformers"`
	InScopeSubstations    int `json:"in_scope_substations"`
	Groups                int `json:"groups"`
	CoercedCells          int `json:"coerced_cells"`
	UnmatchedGeneration   int `json:"unmatched_generation"`
	OtherStatusGeneration int `json:"other_status_generation"`
}

// ReconcileResult is the output of one reconciliation run.
type ReconcileResult struct {
	RunID                   string       `json:"run_id"`
	Rows                    []SummaryRow `json:"rows"`
	SubstationsWithCapacity []string     `json:"substations_with_capacity"`
	Diagnostics             Diagnostics  `json:"diagnostics"`
}

// SubstationDetail lists the generation records behind one capacity-bearing substation.
type SubstationDetail struct {
	Requested  string             `json:"requested"`
	Substation string             `json:"substation,omitempty"`
	Matched    bool               `json:"matched"`
	Records    []GenerationRecord `json:"records,omitempty"`
}
