package models

// TitleGenre is the explicit join row between titles and genres.
type TitleGenre struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;index"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
