package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// resetETAPattern extracts the human-readable wait time out of a title
// attribute such as `title="Main (will be reset in 6 hours 57 minutes 9 seconds)"`.
var resetETAPattern = regexp.MustCompile(`will be reset in ([^)]+)`)

// parseDownloadURLResponse extracts jsActions.redirect.url from the download
// endpoint's JSON body, or reports why the track could not be downloaded.
func parseDownloadURLResponse(body []byte) (string, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %w", ErrParseResponse, err)
	}

	jsActions, ok := payload["jsActions"].(map[string]any)
	if !ok {
		if isNotDownloadableResponse(payload) {
			return "", ErrNotDownloadable
		}

		return "", fmt.Errorf("%w: missing jsActions", ErrParseResponse)
	}

	redirect, ok := jsActions["redirect"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: missing jsActions.redirect", ErrParseResponse)
	}

	downloadURL, ok := redirect["url"].(string)
	if !ok || downloadURL == "" {
		return "", fmt.Errorf("%w: missing jsActions.redirect.url", ErrParseResponse)
	}

	return downloadURL, nil
}

// isNotDownloadableResponse recognizes the site's handful of ways of saying
// "you cannot have this": an explicit error flag, or an explicit restricted flag.
func isNotDownloadableResponse(payload map[string]any) bool {
	if errored, ok := payload["error"].(bool); ok && errored {
		return true
	}

	if restricted, ok := payload["restricted"].(bool); ok && restricted {
		return true
	}

	return false
}

// parseListingPage extracts every track ID referenced by an
// `a.track-download-lnk[data-track-id]` anchor on a listing page.
func parseListingPage(body io.Reader) (map[string]struct{}, error) {
	trackIDs := make(map[string]struct{})

	tokenizer := html.NewTokenizer(body)

	for {
		tokenType := tokenizer.Next()

		switch tokenType {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to parse listing page: %w", err)
			}

			return trackIDs, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}

			if trackID, ok := extractTrackDownloadLink(token); ok {
				trackIDs[trackID] = struct{}{}
			}
		}
	}
}

// extractTrackDownloadLink reports the data-track-id of an anchor token,
// provided it carries the track-download-lnk class.
func extractTrackDownloadLink(token html.Token) (string, bool) {
	var (
		hasClass string
		trackID  string
	)

	for _, attr := range token.Attr {
		switch attr.Key {
		case "class":
			hasClass = attr.Val
		case "data-track-id":
			trackID = attr.Val
		}
	}

	if trackID == "" || !strings.Contains(hasClass, "track-download-lnk") {
		return "", false
	}

	return trackID, true
}

// parseBudgetSnapshot scrapes the #span-downloads fragment returned by the
// login handshake: the main counter, an optional bonus counter, and the reset ETA.
func parseBudgetSnapshot(body io.Reader) (*BudgetSnapshot, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login handshake body: %w", err)
	}

	counters := extractSpanDownloadsCounters(raw)
	if len(counters) == 0 {
		return nil, fmt.Errorf("%w: missing #span-downloads", ErrParseResponse)
	}

	main, err := strconv.ParseUint(counters[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid main counter %q", ErrParseResponse, counters[0])
	}

	snapshot := &BudgetSnapshot{Main: uint32(main)}

	if len(counters) == 2 { //nolint:mnd // the site reports either one or two counters.
		bonus, parseErr := strconv.ParseUint(counters[1], 10, 32)
		if parseErr == nil {
			snapshot.Bonus = uint32(bonus)
		}
	}

	if match := resetETAPattern.FindStringSubmatch(string(raw)); len(match) == 2 { //nolint:mnd
		snapshot.ResetETA = strings.TrimSpace(match[1])
	}

	return snapshot, nil
}

// extractSpanDownloadsCounters walks the document looking for
// `#span-downloads span` elements and returns their inner text in order.
func extractSpanDownloadsCounters(raw []byte) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(string(raw)))

	var (
		counters      []string
		insideWrapper bool
		wrapperDepth  int
	)

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			return counters
		}

		token := tokenizer.Token()
		if token.Data != "span" {
			continue
		}

		switch tokenType {
		case html.StartTagToken:
			if hasID(token, "span-downloads") {
				insideWrapper = true
				wrapperDepth = 0

				continue
			}

			if !insideWrapper {
				continue
			}

			wrapperDepth++

			if text := nextText(tokenizer); text != "" {
				counters = append(counters, strings.TrimSpace(text))
			}
		case html.EndTagToken:
			if insideWrapper {
				if wrapperDepth == 0 {
					insideWrapper = false
				} else {
					wrapperDepth--
				}
			}
		}
	}
}

func hasID(token html.Token, id string) bool {
	for _, attr := range token.Attr {
		if attr.Key == "id" && attr.Val == id {
			return true
		}
	}

	return false
}

// nextText reads the immediately following text token, if any.
func nextText(tokenizer *html.Tokenizer) string {
	if tokenizer.Next() != html.TextToken {
		return ""
	}

	return string(tokenizer.Text())
}
