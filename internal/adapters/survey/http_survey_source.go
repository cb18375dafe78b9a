package survey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/platform/obs"
)

// HTTPSurveySource implements ProfileRepository on top of a remote survey
// service exposing GET /routes and GET /routes/{label}.
//
// The source is safe for concurrent use.
type HTTPSurveySource struct {
	session *http.Client
	apiKey  string
	baseURL string
	retry   retryPolicy
}

func NewHTTPSurveySource(baseURL, apiKey string) (*HTTPSurveySource, error) {
	if baseURL == "" {
		return nil, errors.New("survey base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse survey base url: %w", err)
	}

	return &HTTPSurveySource{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   defaultRetryPolicy(),
	}, nil
}

func (s *HTTPSurveySource) ListRoutes(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "survey.ListRoutes")(&err)

	var routes []string
	if err := s.getJSON(ctx, s.baseURL+"/routes", &routes); err != nil {
		return nil, fmt.Errorf("list survey routes: %w", err)
	}
	return routes, nil
}

func (s *HTTPSurveySource) GetProfile(ctx context.Context, route string) (_ *domain.ProfileInput, err error) {
	defer obs.Time(ctx, "survey.GetProfile")(&err)

	if strings.TrimSpace(route) == "" {
		return nil, errors.New("get survey profile: route must be non-empty")
	}

	var doc ProfileDocument
	err = s.getJSON(ctx, s.baseURL+"/routes/"+url.PathEscape(route), &doc)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %q", domain.ErrRouteNotFound, route)
		}
		return nil, fmt.Errorf("get survey profile %q: %w", route, err)
	}

	if doc.Route == "" {
		doc.Route = route
	}
	return doc.ToInput()
}

// getJSON fetches u under the retry policy and decodes the body into dst.
func (s *HTTPSurveySource) getJSON(ctx context.Context, u string, dst any) error {
	var resp *http.Response
	err := s.retry.run(ctx, func() error {
		req, err := s.newRequest(ctx, http.MethodGet, u)
		if err != nil {
			return err
		}
		resp, err = s.do(req)
		return err
	}, func(attempt int, err error) {
		log.Debugw("survey request retry", "url", u, "attempt", attempt, "err", err)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

type httpStatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (s *HTTPSurveySource) newRequest(ctx context.Context, method, u string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("Authorization", s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (s *HTTPSurveySource) do(req *http.Request) (*http.Response, error) {
	resp, err := s.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code:       resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return resp, nil
}
