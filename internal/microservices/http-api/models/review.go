package models

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Review is unique per (author, title); the composite index is the
// authoritative guard against concurrent duplicates.
type Review struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID  int64     `json:"-" gorm:"not null;uniqueIndex:idx_reviews_author_title,priority:2"`
	AuthorID string    `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_title,priority:1"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Score    int       `json:"score" gorm:"not null;check:chk_reviews_score,score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	// Associations
	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
