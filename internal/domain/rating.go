package domain

import "strconv"

// RatingAggregate provides the average and count of a movie's review ratings.
// Average always carries at most two decimals.
type RatingAggregate struct {
	Average float64
	Count   int
}

// FormatAverage renders the decimal representation exposed to clients: "0" for a
// movie without reviews, otherwise exactly two decimals ("4.50").
func FormatAverage(average float64, count int) string {
	if count == 0 {
		return "0"
	}
	return strconv.FormatFloat(average, 'f', 2, 64)
}
