// Package trailer materializes trailer video assets for catalog records: it
// resolves a progressive stream from the record's watch-page URL, downloads
// it to scratch space, transcodes it with an external encoder, and installs
// the result at its final path with a single rename. A record whose asset
// cannot be materialized is retracted from the catalog so the store and the
// filesystem never disagree.
package trailer
