// Package dto defines data transfer objects for the coinlist HTTP API.
package dto

// CoinItem represents a supported coin in the API response.
// It contains only the public-facing fields needed by clients.
type CoinItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
