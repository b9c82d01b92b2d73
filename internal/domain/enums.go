package domain

type OperationType string

const (
	OperationOPP     OperationType = "OPP"
	OperationVEFA    OperationType = "VEFA"
	OperationAMO     OperationType = "AMO"
	OperationMandate OperationType = "MANDAT"
)

// OperationTypes lists the operation kinds in catalog order.
var OperationTypes = []OperationType{OperationOPP, OperationVEFA, OperationAMO, OperationMandate}

func (t OperationType) Valid() bool {
	switch t {
	case OperationOPP, OperationVEFA, OperationAMO, OperationMandate:
		return true
	}
	return false
}

type OperationStatus string

const (
	StatusPreparing OperationStatus = "preparing"
	StatusActive    OperationStatus = "active"
	StatusOnHold    OperationStatus = "on_hold"
	StatusBlocked   OperationStatus = "blocked"
	StatusDone      OperationStatus = "done"
	StatusCancelled OperationStatus = "cancelled"
)

// OperationStatuses is the full status set in display order.
var OperationStatuses = []OperationStatus{
	StatusPreparing, StatusActive, StatusOnHold, StatusBlocked, StatusDone, StatusCancelled,
}

func (s OperationStatus) Valid() bool {
	for _, v := range OperationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsManual reports whether the status can only be set by a user, never derived.
func (s OperationStatus) IsManual() bool {
	return s == StatusOnHold || s == StatusCancelled
}

type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not_started"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseDone       PhaseStatus = "done"
	PhaseLate       PhaseStatus = "late"
	PhaseBlocked    PhaseStatus = "blocked"
)

var PhaseStatuses = []PhaseStatus{PhaseNotStarted, PhaseInProgress, PhaseDone, PhaseLate, PhaseBlocked}

func (s PhaseStatus) Valid() bool {
	for _, v := range PhaseStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type AlertType string

const (
	AlertDelay          AlertType = "delay"
	AlertBudget         AlertType = "budget"
	AlertTechnical      AlertType = "technical"
	AlertAdministrative AlertType = "administrative"
	AlertCommercial     AlertType = "commercial"
	AlertLegal          AlertType = "legal"
)

var AlertTypes = []AlertType{
	AlertDelay, AlertBudget, AlertTechnical, AlertAdministrative, AlertCommercial, AlertLegal,
}

func (t AlertType) Valid() bool {
	for _, v := range AlertTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities is ordered from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank orders severities; unknown values rank 0.
func (s Severity) Rank() int {
	for i, v := range Severities {
		if s == v {
			return i + 1
		}
	}
	return 0
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

type AlertSource string

const (
	SourceRule   AlertSource = "rule"
	SourceManual AlertSource = "manual"
)

type BudgetKind string

const (
	BudgetInitial BudgetKind = "initial"
	BudgetRevised BudgetKind = "revised"
	BudgetFinal   BudgetKind = "final"
)

func (k BudgetKind) Valid() bool {
	return k == BudgetInitial || k == BudgetRevised || k == BudgetFinal
}

type REMPeriod string

const (
	PeriodQuarter REMPeriod = "quarter"
	PeriodHalf    REMPeriod = "half"
)

// MaxIndex is the highest period index within a year.
func (p REMPeriod) MaxIndex() int {
	switch p {
	case PeriodQuarter:
		return 4
	case PeriodHalf:
		return 2
	}
	return 0
}
