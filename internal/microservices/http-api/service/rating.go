package service

// Rating is the mean of the scores rounded half up, so 7.5 becomes 8.
// It is nil for a title without reviews.
func Rating(sum, count int64) *int {
	if count <= 0 {
		return nil
	}
	r := int((2*sum + count) / (2 * count))
	return &r
}
