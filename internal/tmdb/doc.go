// Package tmdb provides the subset of The Movie Database API the pipeline
// consumes: paginated listing endpoints, per-movie detail (with videos),
// images, release certifications, and the global genre index.
package tmdb
