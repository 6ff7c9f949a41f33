package catalog_test

import (
	"testing"

	"reelsync/internal/catalog"
	"reelsync/internal/tmdb"
)

func fullDetail() *tmdb.Detail {
	detail := &tmdb.Detail{
		ID:               550,
		IMDBID:           "tt0137523",
		Title:            "Fight Club",
		Overview:         "An insomniac office worker crosses paths with a soap maker.",
		Genres:           []tmdb.Genre{{ID: 18}, {ID: 53}},
		Runtime:          139,
		ReleaseDate:      "1999-10-15",
		Status:           "Released",
		VoteAverage:      8.4,
		VoteCount:        26000,
		Popularity:       61.4,
		Budget:           63000000,
		Revenue:          100853753,
		OriginalLanguage: "en",
		BackdropPath:     "/backdrop.jpg",
	}
	detail.Videos.Results = []tmdb.Video{
		{Key: "teaser1", Site: "YouTube", Type: "Teaser"},
		{Key: "trailer1", Site: "YouTube", Type: "Trailer"},
	}
	return detail
}

func fullImages() *tmdb.Images {
	return &tmdb.Images{
		Backdrops: []tmdb.Image{
			{FilePath: "/fr.jpg", ISO639: "fr"},
			{FilePath: "/en.jpg", ISO639: "en"},
		},
		Logos: []tmdb.Image{{FilePath: "/logo.png"}},
	}
}

func usReleases(cert string) *tmdb.ReleaseDates {
	releases := &tmdb.ReleaseDates{}
	releases.Results = []tmdb.CountryRelease{
		{ISO3166: "DE", ReleaseDates: []struct {
			Certification string `json:"certification"`
		}{{Certification: "FSK 16"}}},
		{ISO3166: "US", ReleaseDates: []struct {
			Certification string `json:"certification"`
		}{{Certification: cert}}},
	}
	return releases
}

func genreIndex() map[int64]string {
	return map[int64]string{18: "Drama", 53: "Thriller"}
}

func TestNormalizeFullBundle(t *testing.T) {
	normalizer := catalog.NewNormalizer()
	record, ok := normalizer.Normalize(fullDetail(), fullImages(), usReleases("R"), genreIndex())
	if !ok {
		t.Fatal("expected admissible record")
	}
	if record.IMDBID != "tt0137523" {
		t.Fatalf("unexpected key: %q", record.IMDBID)
	}
	if record.Genres != "Drama, Thriller" {
		t.Fatalf("unexpected genres: %q", record.Genres)
	}
	if record.Rating != catalog.RatingAdult {
		t.Fatalf("unexpected rating: %q", record.Rating)
	}
	if record.Duration != "139m" {
		t.Fatalf("unexpected duration: %q", record.Duration)
	}
	if record.Budget != "$63,000,000" {
		t.Fatalf("unexpected budget formatting: %q", record.Budget)
	}
	if record.PosterURL != "https://www.themoviedb.org/t/p/original/en.jpg" {
		t.Fatalf("expected English backdrop as poster, got %q", record.PosterURL)
	}
	if record.BannerURL != "https://www.themoviedb.org/t/p/original/backdrop.jpg" {
		t.Fatalf("unexpected banner: %q", record.BannerURL)
	}
	if record.LogoURL != "https://www.themoviedb.org/t/p/original/logo.png" {
		t.Fatalf("unexpected logo: %q", record.LogoURL)
	}
	if record.TrailerURL != "https://www.youtube.com/watch?v=trailer1" {
		t.Fatalf("unexpected trailer: %q", record.TrailerURL)
	}
}

func TestNormalizePosterFallsBackToDetailBackdrop(t *testing.T) {
	images := fullImages()
	images.Backdrops = []tmdb.Image{{FilePath: "/fr.jpg", ISO639: "fr"}}

	record, ok := catalog.NewNormalizer().Normalize(fullDetail(), images, usReleases("PG"), genreIndex())
	if !ok {
		t.Fatal("expected admissible record")
	}
	if record.PosterURL != "https://www.themoviedb.org/t/p/original/backdrop.jpg" {
		t.Fatalf("expected detail backdrop fallback, got %q", record.PosterURL)
	}
}

func TestNormalizeRatingTable(t *testing.T) {
	cases := []struct {
		cert string
		want catalog.AgeRating
	}{
		{"G", catalog.RatingAll},
		{"PG", catalog.RatingSeven},
		{"PG-13", catalog.RatingThirteen},
		{"R", catalog.RatingAdult},
		{"NC-17", catalog.RatingAdult},
		{"NR", catalog.RatingAdult},
		{"", catalog.RatingAdult},
	}
	for _, tc := range cases {
		record, ok := catalog.NewNormalizer().Normalize(fullDetail(), fullImages(), usReleases(tc.cert), genreIndex())
		if !ok {
			t.Fatalf("cert %q: expected admissible record", tc.cert)
		}
		if record.Rating != tc.want {
			t.Fatalf("cert %q: got rating %q, want %q", tc.cert, record.Rating, tc.want)
		}
	}
}

func TestNormalizeMissingUSEntryDefaultsAdult(t *testing.T) {
	releases := &tmdb.ReleaseDates{Results: []tmdb.CountryRelease{{ISO3166: "FR"}}}
	record, ok := catalog.NewNormalizer().Normalize(fullDetail(), fullImages(), releases, genreIndex())
	if !ok {
		t.Fatal("expected admissible record")
	}
	if record.Rating != catalog.RatingAdult {
		t.Fatalf("expected most-restrictive default, got %q", record.Rating)
	}
}

func TestNormalizeCompletenessGate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*tmdb.Detail, *tmdb.Images, map[int64]string)
	}{
		{"no imdb id", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.IMDBID = "" }},
		{"no trailer", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) {
			d.Videos.Results = []tmdb.Video{{Key: "x", Type: "Teaser"}}
		}},
		{"zero revenue", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.Revenue = 0 }},
		{"zero budget", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.Budget = 0 }},
		{"zero runtime", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.Runtime = 0 }},
		{"zero votes", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.VoteCount = 0 }},
		{"unmapped genre", func(_ *tmdb.Detail, _ *tmdb.Images, g map[int64]string) { delete(g, 53) }},
		{"no genres", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.Genres = nil }},
		{"no backdrop anywhere", func(d *tmdb.Detail, img *tmdb.Images, _ map[int64]string) {
			d.BackdropPath = ""
			img.Backdrops = nil
		}},
		{"no logo", func(_ *tmdb.Detail, img *tmdb.Images, _ map[int64]string) { img.Logos = nil }},
		{"no release date", func(d *tmdb.Detail, _ *tmdb.Images, _ map[int64]string) { d.ReleaseDate = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			detail := fullDetail()
			images := fullImages()
			genres := genreIndex()
			tc.mutate(detail, images, genres)
			if _, ok := catalog.NewNormalizer().Normalize(detail, images, usReleases("R"), genres); ok {
				t.Fatal("expected record to be rejected")
			}
		})
	}
}

func TestNormalizeNilDetailRejected(t *testing.T) {
	if _, ok := catalog.NewNormalizer().Normalize(nil, nil, nil, nil); ok {
		t.Fatal("expected rejection for nil detail")
	}
}
