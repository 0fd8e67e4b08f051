// Package catalog provides a Go client for the music catalog site that
// tracks are downloaded from. It handles cookie-based authentication,
// the site's AJAX header contract, listing-page scraping, and the
// login-handshake scrape used to read the per-user download budget.
package catalog
