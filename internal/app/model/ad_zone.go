package model

import "time"

// AdZone describes a configured ad placement.
type AdZone struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ZoneID    string    `json:"zoneId" gorm:"column:zone_id;size:64;not null;uniqueIndex"`
	ZoneName  *string   `json:"zoneName" gorm:"column:zone_name;size:255"`
	ZoneType  *string   `json:"zoneType" gorm:"column:zone_type;size:64"`
	IsActive  bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at;autoUpdateTime"`
}

func (AdZone) TableName() string {
	return "ad_zones"
}
