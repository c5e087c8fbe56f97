package models

import "time"

// DiaryEntry is one gratitude diary entry.
type DiaryEntry struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Content string `gorm:"type:text;not null" json:"content"`
	// Date is the calendar day (YYYY-MM-DD, UTC) the entry belongs to.
	Date      string    `gorm:"size:10;index" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (DiaryEntry) TableName() string {
	return "diary_entries"
}

// RelapseEntry records a streak reset with an optional reason.
type RelapseEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Reason    string    `gorm:"type:text" json:"reason"`
	Date      string    `gorm:"size:10" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (RelapseEntry) TableName() string {
	return "relapse_entries"
}

// DayKey formats t as the UTC calendar day used by Date columns.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
