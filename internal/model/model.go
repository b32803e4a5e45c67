package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&SweepRecord{},
	&ToggleRecord{},
}

// Session is one load of the extension.
type Session struct {
	gorm.Model
	StartTime        time.Time `json:"startTime" gorm:"type:timestamptz;NOT NULL;"`
	ExtensionVersion string    `json:"extensionVersion" gorm:"size:64"`
	HostVersion      string    `json:"hostVersion" gorm:"size:64"`
}

func (*Session) TableName() string {
	return "sessions"
}

// SweepRecord is a summary of one sweep that hid at least one text.
type SweepRecord struct {
	ID           uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time      `json:"time" gorm:"type:timestamptz;NOT NULL;index:idx_sweep_time"`
	SessionID    uint           `json:"sessionId" gorm:"index:idx_sweep_session_id"`
	Session      Session        `gorm:"foreignkey:SessionID;"`
	ClearedCount int            `json:"clearedCount"`
	ClearedTotal uint64         `json:"clearedTotal"`
	ClearedTypes datatypes.JSON `json:"clearedTypes"`
	RegistrySize int            `json:"registrySize"`
}

func (*SweepRecord) TableName() string {
	return "sweep_records"
}

// ToggleRecord is written whenever the toggle changes.
type ToggleRecord struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"type:timestamptz;NOT NULL;index:idx_toggle_time"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_toggle_session_id"`
	Session   Session   `gorm:"foreignkey:SessionID;"`
	Enabled   bool      `json:"enabled"`
	Source    string    `json:"source" gorm:"size:16"`
}

func (*ToggleRecord) TableName() string {
	return "toggle_records"
}

// Status is the answer to a :STATUS: query.
type Status struct {
	Time         time.Time             `json:"time"`
	Enabled      bool                  `json:"enabled"`
	ClearedTotal uint64                `json:"clearedTotal"`
	RegistrySize int                   `json:"registrySize"`
	Pools        map[string]PoolStatus `json:"pools"`
	Recycled     uint64                `json:"recycled"`
	Orphaned     uint64                `json:"orphaned"`
	Skipped      uint64                `json:"skipped"`
}

// PoolStatus reports occupancy of one named pool.
type PoolStatus struct {
	Inactive int `json:"inactive"`
	All      int `json:"all"`
}
