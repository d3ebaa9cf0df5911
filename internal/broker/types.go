package broker

import "time"

// Asset is broker metadata for one tradeable symbol.
type Asset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Status   string `json:"status"`
	Tradable bool   `json:"tradable"`
}

// Bar is one aggregated price bar.
type Bar struct {
	Timestamp time.Time `json:"t"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

// barsResponse is one page of the historical bars endpoint.
type barsResponse struct {
	Bars          []Bar  `json:"bars"`
	Symbol        string `json:"symbol"`
	NextPageToken string `json:"next_page_token"`
}
