// Package extract turns rendered search result pages into records.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
)

// ItemSelector matches one sound button on a search result page.
const ItemSelector = ".instant"

var soundPathPattern = regexp.MustCompile(`'(/media/sounds/[^']+\.mp3)'`)

// Extractor implements crawler.Extractor with goquery.
type Extractor struct {
	origin string
}

// New builds an Extractor resolving media paths against the origin of baseURL.
func New(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &Extractor{origin: u.Scheme + "://" + u.Host}, nil
}

// Extract returns the records found on page, in document order. Items whose
// play button does not reference an mp3 under /media/sounds/ are skipped.
func (e *Extractor) Extract(ctx context.Context, page crawler.Page) ([]crawler.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}
	if len(bytes.TrimSpace(page.Body)) == 0 {
		return nil, errors.New("empty page body")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	records := make([]crawler.Record, 0)
	doc.Find(ItemSelector).Each(func(_ int, item *goquery.Selection) {
		onclick, ok := item.Find("[onclick]").First().Attr("onclick")
		if !ok {
			return
		}
		m := soundPathPattern.FindStringSubmatch(onclick)
		if m == nil {
			return
		}
		records = append(records, crawler.Record{
			Name: strings.TrimSpace(item.Text()),
			Link: e.origin + m[1],
		})
	})
	return records, nil
}
