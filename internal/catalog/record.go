// Package catalog defines the canonical movie record and the normalizer that
// derives it from raw TMDB payloads. A record only leaves this package when
// every derived field is populated; incomplete records are dropped here and
// never reach the store.
package catalog

// AgeRating is the viewer age classification derived from a US certification.
type AgeRating string

const (
	RatingAll      AgeRating = "ALL"
	RatingSeven    AgeRating = "7+"
	RatingThirteen AgeRating = "13+"
	RatingAdult    AgeRating = "18+"
)

// certRatings maps US certifications to age ratings. Anything unmapped,
// including a missing US entry, falls back to the most restrictive value.
// That conflates "not rated" with adult content; the behavior is inherited
// from the source data contract and is kept as is.
var certRatings = map[string]AgeRating{
	"G":     RatingAll,
	"PG":    RatingSeven,
	"PG-13": RatingThirteen,
	"R":     RatingAdult,
	"NC-17": RatingAdult,
}

// RatingFromCertification derives the age rating for a US certification code.
func RatingFromCertification(cert string) AgeRating {
	if rating, ok := certRatings[cert]; ok {
		return rating
	}
	return RatingAdult
}

// Record is the canonical, store-ready representation of one catalog movie.
// IMDBID is the sole reconciliation key; TMDBID is carried as the upstream
// numeric identifier.
type Record struct {
	TMDBID      int64
	IMDBID      string
	Title       string
	Synopsis    string
	Genres      string
	Rating      AgeRating
	Duration    string
	ReleaseDate string
	Status      string
	Score       float64
	VoteCount   int64
	Popularity  float64
	Budget      string
	Revenue     string
	Language    string
	LogoURL     string
	PosterURL   string
	BannerURL   string
	TrailerURL  string
}
