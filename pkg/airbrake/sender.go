// sender.go delivers notices over HTTP and classifies the responses.

package airbrake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// rateLimitDelayHeader names the 429 response header carrying the retry
// delay in seconds.
const rateLimitDelayHeader = "X-RateLimit-Delay"

// noticesPathTemplate is the fixed notices endpoint path.
const noticesPathTemplate = "/api/v3/projects/%d/notices"

// noticeResponse is the JSON body the notices endpoint answers with:
// id/url on success, message on a rejected notice.
type noticeResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// newHTTPClient builds the one transport client a notifier owns for its
// lifetime. Authorization and content type are fixed here so every
// request carries them.
func newHTTPClient(cfg Config) *resty.Client {
	client := resty.New()
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	}
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetAuthToken(cfg.ProjectKey)
	return client
}

// buildNoticesURL resolves the delivery target: the configured host,
// scheme-qualified ("https://" prefixed when the scheme is missing) and
// stripped of any trailing slash, plus the fixed notices path.
func buildNoticesURL(host string, projectID int64) string {
	h := strings.TrimSuffix(host, "/")
	if !strings.Contains(h, "://") {
		h = "https://" + h
	}
	return h + fmt.Sprintf(noticesPathTemplate, projectID)
}

// SendNotice runs the filter chain and delivers the notice. It always
// returns the same notice, augmented with either the remote id (and
// permalink when provided) or the in-band Err field; ordinary transport
// and response failures never surface as anything else. Delivery is
// synchronous and single-attempt: no retry, no queue.
func (n *Notifier) SendNotice(ctx context.Context, notice *Notice) *Notice {
	if n.cfg.Disabled {
		notice.Err = ErrDisabled
		n.log.DebugContext(ctx, "notice suppressed", "reason", "notifier disabled")
		return notice
	}
	if reset, limited := n.rateLimited(); limited {
		notice.Err = ErrIPRateLimited
		n.log.DebugContext(ctx, "notice suppressed", "reason", "rate limited", "reset", reset)
		return notice
	}
	notice = n.deliver(ctx, notice)
	if notice.Err != nil {
		n.log.WarnContext(ctx, "notice not delivered", "error", notice.Err)
	}
	return notice
}

func (n *Notifier) deliver(ctx context.Context, notice *Notice) *Notice {
	filtered := n.applyFilters(notice)
	if filtered == nil {
		notice.Err = ErrNoticeFiltered
		n.log.DebugContext(ctx, "notice suppressed", "reason", "vetoed by filter")
		return notice
	}
	notice = filtered

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(notice).
		Post(n.noticesURL)
	if err != nil {
		notice.Err = fmt.Errorf("airbrake: sending notice: %w", err)
		return notice
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		notice.Err = ErrUnauthorized
	case http.StatusTooManyRequests:
		if delay, err := strconv.Atoi(resp.Header().Get(rateLimitDelayHeader)); err == nil && delay > 0 {
			n.setRateLimitReset(n.nowFunc().Add(time.Duration(delay) * time.Second))
		}
		notice.Err = ErrIPRateLimited
	default:
		var result noticeResponse
		if err := json.Unmarshal(resp.Body(), &result); err == nil && result.ID != "" {
			notice.ID = result.ID
			notice.URL = result.URL
		} else if err == nil && result.Message != "" {
			notice.Err = errors.New(result.Message)
		} else {
			notice.Err = fmt.Errorf("airbrake: unexpected response: %s", resp.Body())
		}
	}
	return notice
}

// rateLimited reports whether deliveries are currently gated by an
// earlier 429 response.
func (n *Notifier) rateLimited() (time.Time, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rateLimitReset, n.nowFunc().Before(n.rateLimitReset)
}

func (n *Notifier) setRateLimitReset(reset time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rateLimitReset = reset
}
