package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"wiboard-complete/core"
)

var (
	accessKey  string
	baseURL    string
	httpClient = &http.Client{Timeout: 10 * time.Second}
)

func Init() {
	accessKey = os.Getenv("UNSPLASH_ACCESS_KEY")
	baseURL = os.Getenv("UNSPLASH_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.unsplash.com" // Default value
	}
	if accessKey == "" {
		logrus.Warn("UNSPLASH_ACCESS_KEY environment variable not set. Photo routes will not work.")
	}
}

// unsplashPhoto is the subset of the upstream photo record we consume.
type unsplashPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Regular string `json:"regular"`
	} `json:"urls"`
	User struct {
		Username     string `json:"username"`
		ProfileImage struct {
			Medium string `json:"medium"`
		} `json:"profile_image"`
	} `json:"user"`
	Likes int `json:"likes"`
}

func (p *unsplashPhoto) toDetail() core.ImageDetail {
	title := p.Description
	if title == "" {
		title = p.AltDescription
	}
	if title == "" {
		title = "Untitled"
	}
	description := p.AltDescription
	if description == "" {
		description = "No description available"
	}
	return core.ImageDetail{
		ID:            p.ID,
		Title:         title,
		Description:   description,
		ImageLargeURL: p.URLs.Regular,
		User: core.PhotoUser{
			Username:     p.User.Username,
			ProfileImage: p.User.ProfileImage.Medium,
		},
		Likes: p.Likes,
	}
}

// upstreamError carries the user-facing classification of an image source
// failure. Every category is surfaced to the client with a retry affordance;
// nothing is swallowed.
type upstreamError struct {
	status    int
	message   string
	retryable bool
}

func (e *upstreamError) Error() string { return e.message }

func classifyStatus(status int) *upstreamError {
	switch status {
	case http.StatusUnauthorized:
		return &upstreamError{http.StatusBadGateway, "Image source rejected our credentials", false}
	case http.StatusForbidden, http.StatusTooManyRequests:
		return &upstreamError{http.StatusTooManyRequests, "Image source rate limit reached", true}
	case http.StatusNotFound:
		return &upstreamError{http.StatusNotFound, "Photo not found", false}
	default:
		return &upstreamError{http.StatusBadGateway, fmt.Sprintf("Image source returned status %d", status), true}
	}
}

// fetch performs one upstream request and decodes the response into out.
// Timeouts come back as a retryable failure rather than an automatic retry
// loop; trying again is the user's call.
func fetch(ctx context.Context, endpoint string, out any) *upstreamError {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &upstreamError{http.StatusInternalServerError, "Failed to build image source request", false}
	}
	req.Header.Set("Authorization", "Client-ID "+accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return &upstreamError{http.StatusGatewayTimeout, "Image source timed out", true}
		}
		return &upstreamError{http.StatusBadGateway, "Failed to reach image source", true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return classifyStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &upstreamError{http.StatusBadGateway, "Image source returned an unreadable response", true}
	}
	return nil
}

func renderUpstreamError(w http.ResponseWriter, r *http.Request, endpoint string, uerr *upstreamError) {
	logrus.WithFields(logrus.Fields{
		"url":    endpoint,
		"status": uerr.status,
	}).Warn(uerr.message)
	render.Status(r, uerr.status)
	render.JSON(w, r, map[string]any{
		"error":     uerr.message,
		"retryable": uerr.retryable,
	})
}

// HandleGetPhoto proxies a single photo lookup by upstream id.
func HandleGetPhoto() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Photo id is required"})
			return
		}
		if accessKey == "" {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Image source is not configured on the server"})
			return
		}

		endpoint := fmt.Sprintf("%s/photos/%s", baseURL, url.PathEscape(id))
		var photo unsplashPhoto
		if uerr := fetch(r.Context(), endpoint, &photo); uerr != nil {
			renderUpstreamError(w, r, endpoint, uerr)
			return
		}
		render.JSON(w, r, photo.toDetail())
	}
}

// HandleSearch proxies a paged photo search.
func HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query == "" {
			query = "nature" // Same default feed the frontend uses
		}
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
		if err != nil || perPage < 1 || perPage > 30 {
			perPage = 10
		}
		if accessKey == "" {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Image source is not configured on the server"})
			return
		}

		endpoint := fmt.Sprintf("%s/search/photos?query=%s&page=%d&per_page=%d",
			baseURL, url.QueryEscape(query), page, perPage)
		var result struct {
			Results []unsplashPhoto `json:"results"`
		}
		if uerr := fetch(r.Context(), endpoint, &result); uerr != nil {
			renderUpstreamError(w, r, endpoint, uerr)
			return
		}

		details := make([]core.ImageDetail, 0, len(result.Results))
		for i := range result.Results {
			details = append(details, result.Results[i].toDetail())
		}
		render.JSON(w, r, details)
	}
}
