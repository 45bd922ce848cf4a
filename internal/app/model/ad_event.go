package model

import (
	"time"

	"gorm.io/datatypes"
)

// EventType is the kind of ad interaction reported by the ad network.
type EventType string

const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
)

// Valid reports whether t is one of the known event kinds.
func (t EventType) Valid() bool {
	return t == EventImpression || t == EventClick
}

// AdEvent is one observed impression or click. Rows are append-only.
type AdEvent struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	EventType  EventType      `json:"eventType" gorm:"column:event_type;size:16;not null;index"`
	EventID    *string        `json:"eventId" gorm:"column:event_id;size:255"`
	UserID     *uint          `json:"userId" gorm:"column:user_id"`
	TelegramID *string        `json:"telegramId" gorm:"column:telegram_id;size:64;index"`
	ZoneID     string         `json:"zoneId" gorm:"column:zone_id;size:64;not null;index"`
	ClickID    *string        `json:"clickId" gorm:"column:click_id;size:255"`
	SubID      *string        `json:"subId" gorm:"column:sub_id;size:255"`
	SubID2     *string        `json:"subId2" gorm:"column:sub_id2;size:255;index"`
	Revenue    *string        `json:"revenue" gorm:"column:revenue;size:64"`
	Currency   *string        `json:"currency" gorm:"column:currency;size:10"`
	UserAgent  *string        `json:"userAgent" gorm:"column:user_agent;type:text"`
	IPAddress  *string        `json:"ipAddress" gorm:"column:ip_address;size:45"`
	Country    *string        `json:"country" gorm:"column:country;size:2"`
	RawData    datatypes.JSON `json:"rawData,omitempty" gorm:"column:raw_data"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"column:created_at;autoCreateTime;index"`
}

func (AdEvent) TableName() string {
	return "ad_events"
}

// JetStream names for the recorded-event stream.
const (
	AdEventStreamName       = "ADEVENTS"
	AdEventStreamSubject    = "adevents.recorded"
	AdEventConsumerName     = "stats-cache-invalidator"
	AdEventStreamMaxBytes   = 1024 * 1024 * 100 // 100MB
	AdEventStreamDuplicates = 2 * time.Minute
)
