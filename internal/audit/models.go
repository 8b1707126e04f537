package audit

// Verdict statuses recorded on supervisor comment rows.
const (
	StatusPass = "PASS"
	StatusFlag = "FLAG"
)

// Verdict is the reviewer's judgement on one supervisor comment.
type Verdict struct {
	Status string `json:"status" jsonschema:"enum=PASS,enum=FLAG"`
	Notes  string `json:"notes"`
}

// Sample is one supervisor comment row drawn for review.
type Sample struct {
	ID           int64
	DiaryDate    string
	Label        string
	Hours        *float64
	Machine      string
	StartSMU     string
	EndSMU       string
	MachineHours string
	Location     string
	Activity     string
	Material     string
	Comment      string
	SourceFile   string
	Worksheet    string
}

// Totals summarizes one audit run.
type Totals struct {
	Audited int
	Pass    int
	Flag    int
	Errors  int
}
