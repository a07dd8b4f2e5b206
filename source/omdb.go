package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

// MaxDetailLookups caps the detail requests made per search.
const MaxDetailLookups = 20

// OMDB searches the OMDb API and enriches each hit with a detail lookup.
type OMDB struct {
	baseURL string
	apiKey  string
	fetch   *Fetcher
}

func NewOMDB(baseURL, apiKey string, f *Fetcher) *OMDB {
	return &OMDB{baseURL: baseURL, apiKey: apiKey, fetch: f}
}

func (o *OMDB) Name() string {
	return KindOMDB
}

type omdbSearchResponse struct {
	Search       []movie.Record `json:"Search"`
	TotalResults string         `json:"totalResults"`
	Response     string         `json:"Response"`
	Error        string         `json:"Error"`
}

// Search runs the s= query, then looks up details for up to
// MaxDetailLookups hits. A failed detail lookup falls back to the hit's
// search summary with an imdbRating of N/A.
func (o *OMDB) Search(ctx context.Context, query string) ([]movie.Record, error) {
	body, err := o.fetch.Get(ctx, o.endpoint(url.Values{"s": {query}}))
	if err != nil {
		return nil, err
	}

	var resp omdbSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Response != "True" {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, resp.Error)
	}
	if len(resp.Search) == 0 {
		return nil, ErrNoResults
	}

	hits := resp.Search
	if len(hits) > MaxDetailLookups {
		hits = hits[:MaxDetailLookups]
	}

	urls := make([]string, len(hits))
	for i, hit := range hits {
		urls[i] = o.endpoint(url.Values{"i": {movie.IDOf(hit)}})
	}
	details := o.fetch.GetAll(ctx, urls)

	records := make([]movie.Record, len(hits))
	for i, hit := range hits {
		records[i] = mergeDetail(hit, details[i])
	}
	return records, nil
}

func (o *OMDB) endpoint(params url.Values) string {
	params.Set("apikey", o.apiKey)
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return o.baseURL + "?" + params.Encode()
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// mergeDetail returns the detail record for hit, or the summary fallback
// when the lookup failed in any way.
func mergeDetail(hit movie.Record, res FetchResult) movie.Record {
	if res.Err == nil {
		var detail movie.Record
		if err := json.Unmarshal(res.Body, &detail); err == nil && detail != nil &&
			movie.PickString(detail, []string{"Response"}, "True") != "False" {
			delete(detail, "Response")
			if movie.IDOf(detail) == "" {
				detail["imdbID"] = movie.IDOf(hit)
			}
			return detail
		}
	}
	return summaryFallback(hit)
}

func summaryFallback(hit movie.Record) movie.Record {
	r := movie.Record{"imdbRating": movie.NotAvailable}
	for _, key := range []string{"Title", "Year", "Poster", "imdbID", "Type"} {
		if v := movie.Pick(hit, []string{key}, nil); v != nil {
			r[key] = v
		}
	}
	return r
}
