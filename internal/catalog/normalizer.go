package catalog

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"reelsync/internal/tmdb"
)

const (
	imageBaseURL = "https://www.themoviedb.org/t/p/original"
	watchBaseURL = "https://www.youtube.com/watch?v="
)

// Normalizer converts raw TMDB payload bundles into admissible records.
type Normalizer struct{}

// NewNormalizer constructs a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize derives a canonical record from the raw payload fragments for one
// movie. The boolean reports admissibility: a false return means at least one
// derived field came up empty and the record must be dropped, not persisted.
func (n *Normalizer) Normalize(detail *tmdb.Detail, images *tmdb.Images, releases *tmdb.ReleaseDates, genres map[int64]string) (Record, bool) {
	if detail == nil {
		return Record{}, false
	}

	record := Record{
		TMDBID:      detail.ID,
		IMDBID:      strings.TrimSpace(detail.IMDBID),
		Title:       strings.TrimSpace(detail.Title),
		Synopsis:    strings.TrimSpace(detail.Overview),
		Rating:      deriveRating(releases),
		ReleaseDate: strings.TrimSpace(detail.ReleaseDate),
		Status:      strings.TrimSpace(detail.Status),
		Score:       detail.VoteAverage,
		VoteCount:   detail.VoteCount,
		Popularity:  detail.Popularity,
		Language:    strings.TrimSpace(detail.OriginalLanguage),
		TrailerURL:  deriveTrailerURL(detail.Videos.Results),
	}

	genreNames, complete := resolveGenres(detail.Genres, genres)
	record.Genres = strings.Join(genreNames, ", ")
	if !complete {
		return Record{}, false
	}

	record.LogoURL, record.PosterURL, record.BannerURL = deriveImageURLs(detail, images)

	// Zero-valued numerics fail the completeness gate before formatting, so a
	// zero budget or revenue rejects the record rather than persisting "$0".
	// Legitimate zero-revenue films are indistinguishable from missing data
	// under this contract.
	if detail.Runtime <= 0 || detail.Budget <= 0 || detail.Revenue <= 0 {
		return Record{}, false
	}
	record.Duration = fmt.Sprintf("%dm", detail.Runtime)
	record.Budget = "$" + humanize.Comma(detail.Budget)
	record.Revenue = "$" + humanize.Comma(detail.Revenue)

	if !admissible(record) {
		return Record{}, false
	}
	return record, true
}

// resolveGenres maps genre ids through the lookup table. An unresolved id
// makes the result incomplete.
func resolveGenres(refs []tmdb.Genre, index map[int64]string) ([]string, bool) {
	if len(refs) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(refs))
	complete := true
	for _, ref := range refs {
		name := index[ref.ID]
		if strings.TrimSpace(name) == "" {
			complete = false
		}
		names = append(names, name)
	}
	return names, complete
}

func deriveRating(releases *tmdb.ReleaseDates) AgeRating {
	if releases == nil {
		return RatingAdult
	}
	for _, country := range releases.Results {
		if country.ISO3166 != "US" {
			continue
		}
		if len(country.ReleaseDates) == 0 {
			break
		}
		return RatingFromCertification(country.ReleaseDates[0].Certification)
	}
	return RatingAdult
}

// deriveImageURLs selects the logo, poster, and banner URLs. The poster
// prefers an English-tagged backdrop from the image collection and falls back
// to the detail backdrop; the banner always uses the detail backdrop.
func deriveImageURLs(detail *tmdb.Detail, images *tmdb.Images) (logo, poster, banner string) {
	if images != nil && len(images.Logos) > 0 && images.Logos[0].FilePath != "" {
		logo = imageBaseURL + images.Logos[0].FilePath
	}

	if detail.BackdropPath != "" {
		banner = imageBaseURL + detail.BackdropPath
	}

	poster = banner
	if images != nil {
		for _, backdrop := range images.Backdrops {
			if backdrop.ISO639 == "en" && backdrop.FilePath != "" {
				poster = imageBaseURL + backdrop.FilePath
				break
			}
		}
	}
	return logo, poster, banner
}

func deriveTrailerURL(videos []tmdb.Video) string {
	for _, video := range videos {
		if video.Type == "Trailer" && video.Key != "" {
			return watchBaseURL + video.Key
		}
	}
	return ""
}

// admissible reports whether every derived field is populated.
func admissible(r Record) bool {
	if r.TMDBID <= 0 || r.Score <= 0 || r.VoteCount <= 0 || r.Popularity <= 0 {
		return false
	}
	for _, field := range []string{
		r.IMDBID, r.Title, r.Synopsis, r.Genres, string(r.Rating), r.Duration,
		r.ReleaseDate, r.Status, r.Budget, r.Revenue, r.Language,
		r.LogoURL, r.PosterURL, r.BannerURL, r.TrailerURL,
	} {
		if field == "" {
			return false
		}
	}
	return true
}
