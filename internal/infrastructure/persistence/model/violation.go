package model

// Violation rows are unique per (inspection_id, violation_number) so that
// re-running the load step cannot duplicate them.
type Violation struct {
	RowID                uint64  `gorm:"column:row_id;primaryKey;autoIncrement"`
	InspectionID         string  `gorm:"column:inspection_id;type:text;not null;uniqueIndex:idx_violation_entry"`
	ViolationNumber      int     `gorm:"column:violation_number;not null;uniqueIndex:idx_violation_entry"`
	ViolationDescription string  `gorm:"column:violation_description;type:text;not null"`
	ViolationComments    *string `gorm:"column:violation_comments;type:text"`
}

func (Violation) TableName() string {
	return "violations"
}
