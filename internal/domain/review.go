package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review guest review shown on the public site once approved
type Review struct {
	ID         int64     `json:"id,string"`
	AuthorName string    `gorm:"size:255" json:"authorName"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	ImageUrl   string    `gorm:"size:1024" json:"imageUrl,omitempty"`
	Featured   bool      `gorm:"index" json:"featured"`
	Order      int       `gorm:"column:sort_order" json:"order"`
	Approved   bool      `gorm:"index" json:"approved"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Review) TableName() string {
	return "review"
}
