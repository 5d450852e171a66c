package models

// Asset is an instrument name a user trades, e.g. "EURUSD".
type Asset struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	AssetName string `json:"assetName"`
}
