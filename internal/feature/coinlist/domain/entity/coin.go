// Package entity defines the domain models for the coinlist feature.
package entity

import "time"

// Coin represents a cryptocurrency supported by the portfolio. It maps
// the portfolio-facing ticker code to the identifiers the upstream
// market-data providers use for the same coin.
type Coin struct {
	ID           uint      `gorm:"primaryKey"`
	Code         string    `gorm:"size:20;not null;uniqueIndex"`
	Name         string    `gorm:"size:255;not null"`
	CoinGeckoID  string    `gorm:"size:100;not null"`
	StreamSymbol string    `gorm:"size:40;not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	SortKey      int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
