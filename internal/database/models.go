package database

import (
	"time"
)

// FluxResult is the flux_results row. Diagnostics hold a JSON object.
type FluxResult struct {
	ID             string    `gorm:"column:id;primaryKey"`
	StartTime      time.Time `gorm:"column:start_time;primaryKey"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	Site           string    `gorm:"column:site"`
	Samples        int       `gorm:"column:samples"`
	RotationMethod string    `gorm:"column:rotation_method"`
	Value          float64   `gorm:"column:value"`
	Unit           string    `gorm:"column:unit"`
	QualityFlags   int64     `gorm:"column:quality_flags"`
	Diagnostics    string    `gorm:"column:diagnostics;type:jsonb"`
}

// TableName implements the gorm Tabler interface.
func (FluxResult) TableName() string {
	return "flux_results"
}
