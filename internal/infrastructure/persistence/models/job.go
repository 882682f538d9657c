package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
)

// JobModel is the persistence model for bulk.Job
type JobModel struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey"`
	JobType            string     `gorm:"type:varchar(30);not null;index"`
	Status             string     `gorm:"type:varchar(30);not null;index"`
	FileName           string     `gorm:"type:varchar(255)"`
	StoreCode          string     `gorm:"type:varchar(20)"`
	TotalRecords       int        `gorm:"not null;default:0"`
	ProcessedRecords   int        `gorm:"not null;default:0"`
	SuccessRecords     int        `gorm:"not null;default:0"`
	ErrorRecords       int        `gorm:"not null;default:0"`
	WarningRecords     int        `gorm:"not null;default:0"`
	ProgressPercentage float64    `gorm:"not null;default:0"`
	StartedAt          time.Time  `gorm:"not null;index"`
	CompletedAt        *time.Time
	StartedBy          string `gorm:"type:varchar(50);index"`
	ErrorMessage       string `gorm:"type:text"`
	DetailedErrors     string `gorm:"type:text"`
	DetailedWarnings   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "background_jobs"
}

// ToDomain converts the model
func (m *JobModel) ToDomain() bulk.Job {
	return bulk.Job{
		JobID:              m.ID,
		JobType:            bulk.JobType(m.JobType),
		Status:             bulk.JobStatus(m.Status),
		FileName:           m.FileName,
		StoreCode:          m.StoreCode,
		TotalRecords:       m.TotalRecords,
		ProcessedRecords:   m.ProcessedRecords,
		SuccessRecords:     m.SuccessRecords,
		ErrorRecords:       m.ErrorRecords,
		WarningRecords:     m.WarningRecords,
		ProgressPercentage: m.ProgressPercentage,
		StartedAt:          m.StartedAt,
		CompletedAt:        m.CompletedAt,
		StartedBy:          m.StartedBy,
		ErrorMessage:       m.ErrorMessage,
		DetailedErrors:     decodeLines(m.DetailedErrors),
		DetailedWarnings:   decodeLines(m.DetailedWarnings),
	}
}

// FromDomain fills the model from a job
func (m *JobModel) FromDomain(j bulk.Job) {
	m.ID = j.JobID
	m.JobType = string(j.JobType)
	m.Status = string(j.Status)
	m.FileName = j.FileName
	m.StoreCode = j.StoreCode
	m.TotalRecords = j.TotalRecords
	m.ProcessedRecords = j.ProcessedRecords
	m.SuccessRecords = j.SuccessRecords
	m.ErrorRecords = j.ErrorRecords
	m.WarningRecords = j.WarningRecords
	m.ProgressPercentage = j.ProgressPercentage
	m.StartedAt = j.StartedAt
	m.CompletedAt = j.CompletedAt
	m.StartedBy = j.StartedBy
	m.ErrorMessage = j.ErrorMessage
	m.DetailedErrors = encodeLines(j.DetailedErrors)
	m.DetailedWarnings = encodeLines(j.DetailedWarnings)
}

func encodeLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	b, _ := json.Marshal(lines)
	return string(b)
}

func decodeLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	if err := json.Unmarshal([]byte(s), &lines); err != nil {
		return []string{s}
	}
	return lines
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
