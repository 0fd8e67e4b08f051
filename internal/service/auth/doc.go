// Package auth provides browser-based authentication services for Soundeo.
//
// This package implements automated authentication token extraction
// using browser automation via go-rod. It handles the OAuth flow
// through identity-provider and extracts the authentication token from the
// browser's auth cookie.
package auth
