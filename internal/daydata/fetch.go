package daydata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"daycal/internal/model"
)

// Fetcher loads the day metadata of a whole year.
type Fetcher interface {
	FetchYear(ctx context.Context, year int) (model.YearData, error)
}

// HTTPFetcher loads {BaseURL}/data/{year}.json.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher for the site at baseURL
// (e.g. "https://example.com").
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchYear implements Fetcher. Any non-200 status is an error.
func (f *HTTPFetcher) FetchYear(ctx context.Context, year int) (model.YearData, error) {
	url := f.baseURL + "/data/" + strconv.Itoa(year) + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daydata: GET %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodeYear(body)
}

// DirFetcher loads {dir}/{year}.json from the local filesystem.
type DirFetcher struct {
	dir string
}

func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Dir returns the directory the fetcher reads from.
func (f *DirFetcher) Dir() string { return f.dir }

// FetchYear implements Fetcher.
func (f *DirFetcher) FetchYear(ctx context.Context, year int) (model.YearData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(filepath.Join(f.dir, strconv.Itoa(year)+".json"))
	if err != nil {
		return nil, err
	}
	return decodeYear(body)
}

func decodeYear(body []byte) (model.YearData, error) {
	if len(body) == 0 {
		return nil, errors.New("daydata: empty document")
	}
	var data model.YearData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("daydata: decode: %w", err)
	}
	if data == nil {
		data = model.YearData{}
	}
	return data, nil
}
