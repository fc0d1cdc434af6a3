package models

// TaskOffer is a catalog entry for offerwall tasks ("install app X",
// "complete survey Y"). Offers flagged RequiresReview credit pendingCoins
// until an admin releases them; the rest credit spendable coins directly.
type TaskOffer struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Slug  string `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Title string `gorm:"size:256;not null" json:"title"`

	Reward         int64  `gorm:"not null" json:"reward"`
	Network        string `gorm:"size:64" json:"network,omitempty"` // ad/offer network identifier
	RequiresReview bool   `gorm:"default:false" json:"requires_review"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	Timestamps
}
