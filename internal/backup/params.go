package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Params drive the periodic repository backup. days_to_backup and
// end_date_of_backup are mutually exclusive: when both are null the
// backup runs up to the current date.
type Params struct {
	OldestObjectBackedUp *time.Time `json:"oldest_object_backedup"`
	BackupDir            string     `json:"backup_dir"`
	DaysToBackup         *int       `json:"days_to_backup"`
	EndDateOfBackup      *time.Time `json:"end_date_of_backup"`
	PeriodicityDays      int        `json:"periodicity"`
	ThresholdHours       int        `json:"backup_length_threshold"`
}

func (p *Params) Validate() error {
	if p.BackupDir == "" {
		return fmt.Errorf("backup_dir must be set")
	}
	if p.DaysToBackup != nil && p.EndDateOfBackup != nil {
		return fmt.Errorf("days_to_backup and end_date_of_backup cannot both be set")
	}
	if p.DaysToBackup != nil && *p.DaysToBackup <= 0 {
		return fmt.Errorf("days_to_backup must be positive")
	}
	if p.PeriodicityDays <= 0 {
		return fmt.Errorf("periodicity must be positive")
	}
	if p.ThresholdHours <= 0 {
		return fmt.Errorf("backup_length_threshold must be positive")
	}
	return nil
}

// EndDate resolves the effective end of the backup window relative to now.
func (p *Params) EndDate(now time.Time) time.Time {
	if p.EndDateOfBackup != nil {
		return *p.EndDateOfBackup
	}
	if p.DaysToBackup != nil {
		start := now
		if p.OldestObjectBackedUp != nil {
			start = *p.OldestObjectBackedUp
		}
		return start.AddDate(0, 0, *p.DaysToBackup)
	}
	return now
}

func (p *Params) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup params: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write backup params: %w", err)
	}
	return nil
}

func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse backup params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
