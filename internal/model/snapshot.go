package model

// 快照键：用户集合与出勤记录集合各占一行
const (
	SnapshotKeyUsers   = "users"
	SnapshotKeyRecords = "attendanceRecords"
)

// Snapshot 集合快照表，对应 ledger_snapshots
// Value 为整个集合的 JSON 数组，每次变更整体覆盖
type Snapshot struct {
	Key   string `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value string `gorm:"type:text;not null"          json:"value"`
	BaseModel
}

// TableName 指定表名
func (Snapshot) TableName() string { return "ledger_snapshots" }
