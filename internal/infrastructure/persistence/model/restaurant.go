package model

type Restaurant struct {
	ID           string   `gorm:"column:id;type:text;primaryKey"`
	License      string   `gorm:"column:license;type:text;not null;index"`
	DBAName      string   `gorm:"column:dba_name;type:text;not null"`
	AKAName      string   `gorm:"column:aka_name;type:text"`
	FacilityType string   `gorm:"column:facility_type;type:text"`
	Risk         string   `gorm:"column:risk;type:text"`
	Address      string   `gorm:"column:address;type:text"`
	City         string   `gorm:"column:city;type:text"`
	State        string   `gorm:"column:state;type:text"`
	Zip          string   `gorm:"column:zip;type:text"`
	Latitude     *float64 `gorm:"column:latitude"`
	Longitude    *float64 `gorm:"column:longitude"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}
