package model

// GlobalStats summarises every stored event.
type GlobalStats struct {
	Impressions int64 `json:"impressions" yaml:"impressions"`
	Clicks      int64 `json:"clicks" yaml:"clicks"`
	UniqueUsers int64 `json:"uniqueUsers" yaml:"uniqueUsers"`
}

// UserStats summarises the events attributed to one email.
type UserStats struct {
	Impressions  int64  `json:"impressions" yaml:"impressions"`
	Clicks       int64  `json:"clicks" yaml:"clicks"`
	TotalRevenue string `json:"totalRevenue" yaml:"totalRevenue"`
}
