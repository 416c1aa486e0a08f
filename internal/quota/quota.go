// Package quota classifies durable-storage pressure. Read-only: the
// numbers come from the storage layer, decisions stay with the caller.
package quota

type Usage struct {
	UsedBytes  int64   `json:"usedBytes"`
	LimitBytes int64   `json:"limitBytes"`
	Percentage float64 `json:"percentage"`
}

type Level string

const (
	LevelNormal   Level = "normal"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

const (
	highThreshold     = 80.0
	criticalThreshold = 90.0
)

// LevelFor - Normal below 80%, High from 80 to 90%, Critical above 90%.
func LevelFor(percentage float64) Level {
	switch {
	case percentage > criticalThreshold:
		return LevelCritical
	case percentage >= highThreshold:
		return LevelHigh
	}
	return LevelNormal
}

func (u Usage) Level() Level {
	return LevelFor(u.Percentage)
}
