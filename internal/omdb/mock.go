package omdb

// mockRating derives a deterministic pseudo-rating from the digits of an
// IMDb ID, for testing and offline operation without real credentials.
// A position-weighted checksum maps into a rating in [6.0, 9.0] and a
// synthetic vote count.
func mockRating(imdbID string) *Rating {
	checksum := 0
	weight := 1
	for _, r := range imdbID {
		if r < '0' || r > '9' {
			continue
		}
		checksum += weight * int(r-'0')
		weight++
	}

	value := 6.0 + float64(checksum%31)/10.0
	votes := 5000 + (checksum*2711)%1500000
	return &Rating{Rating: &value, Votes: &votes}
}
