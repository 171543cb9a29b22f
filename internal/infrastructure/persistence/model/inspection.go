package model

import "time"

type Inspection struct {
	ID             string    `gorm:"column:id;type:text;primaryKey"`
	RestaurantID   string    `gorm:"column:restaurant_id;type:text;not null;index"`
	InspectionDate time.Time `gorm:"column:inspection_date;not null"`
	InspectionType string    `gorm:"column:inspection_type;type:text"`
	Results        string    `gorm:"column:results;type:text"`
}

func (Inspection) TableName() string {
	return "inspections"
}
