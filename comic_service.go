package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var ErrInvalidComicNumber = errors.New("invalid comic number")

// HttpClient is shared by every outbound call for the process lifetime.
var HttpClient = &http.Client{Timeout: 15 * time.Second}

// randomComicNumber picks uniformly in [1, latest].
var randomComicNumber = func(latest int) int {
	return rand.Intn(latest) + 1
}

type RandomComicResponse struct {
	Title   string `json:"title"`
	ImgUrl  string `json:"img_url"`
	Num     int    `json:"num"`
	AltText string `json:"alt_text"`
	Date    string `json:"date"`
}

type xkcdComic struct {
	Num   int      `json:"num"`
	Title string   `json:"title"`
	Img   string   `json:"img"`
	Alt   string   `json:"alt"`
	Year  looseInt `json:"year"`
	Month looseInt `json:"month"`
	Day   looseInt `json:"day"`
}

// looseInt accepts both 7 and "7"; xkcd sends its date parts as strings.
type looseInt int

func (i *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", b, err)
	}

	*i = looseInt(n)
	return nil
}

func NewHttpClient(cfg ExternalConfig) *http.Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &http.Client{Timeout: timeout}
}

func GetCurrentComicNumber(ctx context.Context) (int, error) {
	var latest xkcdComic

	url := strings.TrimRight(ServiceConfig.External.XkcdBaseUrl, "/") + "/info.0.json"
	if err := doJSON(ctx, http.MethodGet, url, nil, &latest); err != nil {
		return 0, err
	}

	return latest.Num, nil
}

func GetRandomComic(ctx context.Context) (*RandomComicResponse, error) {
	current, err := GetCurrentComicNumber(ctx)
	if err != nil {
		return nil, err
	}

	if current < 1 {
		return nil, fmt.Errorf("%w: latest comic is %d", ErrInvalidComicNumber, current)
	}

	n := randomComicNumber(current)

	var comic xkcdComic

	url := fmt.Sprintf("%s/%d/info.0.json", strings.TrimRight(ServiceConfig.External.XkcdBaseUrl, "/"), n)
	if err := doJSON(ctx, http.MethodGet, url, nil, &comic); err != nil {
		return nil, err
	}

	date, err := formatComicDate(int(comic.Year), int(comic.Month), int(comic.Day))
	if err != nil {
		return nil, err
	}

	return &RandomComicResponse{
		Title:   comic.Title,
		ImgUrl:  comic.Img,
		Num:     comic.Num,
		AltText: comic.Alt,
		Date:    date,
	}, nil
}

func formatComicDate(year, month, day int) (string, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date normalizes overflow, so a changed field means the input was invalid.
	if year < 1 || year > 9999 || t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("invalid comic date %d-%d-%d", year, month, day)
	}

	return t.Format("2006-01-02"), nil
}

// doJSON issues a single request and decodes a 2xx JSON body into v.
func doJSON(ctx context.Context, method string, url string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}

	for k, values := range header {
		for _, value := range values {
			req.Header.Add(k, value)
		}
	}

	resp, err := HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err = sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed response from %s: %w", url, err)
	}

	return nil
}
