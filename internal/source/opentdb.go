package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trivia-quiz-service/internal/domain"
)

// DefaultOpenTDBURL is the public Open Trivia Database endpoint.
const DefaultOpenTDBURL = "https://opentdb.com/api.php"

// OpenTDB fetches multiple-choice questions from the Open Trivia Database API.
type OpenTDB struct {
	baseURL string
	client  *http.Client
}

// NewOpenTDB builds a client for baseURL. A nil client gets a 10s timeout default.
func NewOpenTDB(baseURL string, client *http.Client) *OpenTDB {
	if baseURL == "" {
		baseURL = DefaultOpenTDBURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenTDB{baseURL: baseURL, client: client}
}

type openTDBResponse struct {
	ResponseCode *int                  `json:"response_code"`
	Results      *[]domain.RawQuestion `json:"results"`
}

// LoadPool requests amount questions of the given difficulty.
func (o *OpenTDB) LoadPool(ctx context.Context, difficulty domain.Difficulty, amount int) ([]domain.RawQuestion, error) {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("opentdb url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(amount))
	q.Set("difficulty", string(difficulty))
	q.Set("type", "multiple")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("opentdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, &domain.HTTPError{StatusCode: res.StatusCode, URL: o.baseURL}
	}

	var body openTDBResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode opentdb body: %v", domain.ErrMalformedResponse, err)
	}
	if body.Results == nil {
		return nil, fmt.Errorf("%w: opentdb body has no results", domain.ErrMalformedResponse)
	}
	// Non-zero codes (no results, invalid parameter, rate limit) come with an empty list.
	if body.ResponseCode != nil && *body.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: opentdb response code %d", domain.ErrMalformedResponse, *body.ResponseCode)
	}

	pool := *body.Results
	if err := domain.ValidatePool(pool); err != nil {
		return nil, err
	}
	for i := range pool {
		pool[i].Encoded = true
	}
	return pool, nil
}
