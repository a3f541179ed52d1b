package models

// CoinSnapshot is one asset's market state as returned by the markets feed.
// A refresh always produces new snapshots; fields are never mutated in place.
type CoinSnapshot struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	CurrentPrice  float64 `json:"current_price"`
	PriceChange24 float64 `json:"price_change_percentage_24h"`
	TotalVolume   float64 `json:"total_volume"`
	MarketCap     float64 `json:"market_cap"`
}

// CoinDetail is the single-coin payload from the upstream detail endpoint.
// Consumed by the detail view only; not part of the polling cycle.
type CoinDetail struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Image       struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData struct {
		CurrentPriceNative map[string]float64 `json:"current_price"`
		MarketCapNative    map[string]float64 `json:"market_cap"`
		TotalVolumeNative  map[string]float64 `json:"total_volume"`
		ATHNative          map[string]float64 `json:"ath"`
		ATLNative          map[string]float64 `json:"atl"`
		PriceChange24      float64            `json:"price_change_percentage_24h"`
		MarketCapRank      int                `json:"market_cap_rank"`
		CirculatingSupply  float64            `json:"circulating_supply"`
	} `json:"market_data"`
	CommunityData struct {
		TwitterFollowers  int64 `json:"twitter_followers"`
		RedditSubscribers int64 `json:"reddit_subscribers"`
		TelegramUsers     int64 `json:"telegram_channel_user_count"`
	} `json:"community_data"`
	Description map[string]string `json:"description"`
}
