package airbrake

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
)

func TestAddFilter_VetoStopsChainAndDelivery(t *testing.T) {
	transport := &countingTransport{}
	n := newTestNotifier(t, func(cfg *Config) {
		cfg.HTTPClient = &http.Client{Transport: transport}
	})

	var mu sync.Mutex
	var order []string
	n.AddFilter(func(notice *Notice) *Notice {
		mu.Lock()
		order = append(order, "veto")
		mu.Unlock()
		return nil
	})
	n.AddFilter(func(notice *Notice) *Notice {
		mu.Lock()
		order = append(order, "after")
		mu.Unlock()
		return notice
	})

	notice := n.Notify(context.Background(), errors.New("boom"))

	if !errors.Is(notice.Err, ErrNoticeFiltered) {
		t.Errorf("notice.Err = %v, want ErrNoticeFiltered", notice.Err)
	}
	if got := transport.callCount(); got != 0 {
		t.Errorf("transport invoked %d times, want 0 for a vetoed notice", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 1 || order[0] != "veto" {
		t.Errorf("filter invocations = %v, want the chain to stop at the veto", order)
	}
}

func TestAddFilter_RunsInRegistrationOrder(t *testing.T) {
	n := newTestNotifier(t)

	n.AddFilter(func(notice *Notice) *Notice {
		notice.Context["step"] = "first"
		return notice
	}).AddFilter(func(notice *Notice) *Notice {
		if notice.Context["step"] == "first" {
			notice.Context["step"] = "second"
		}
		return notice
	})

	notice := n.applyFilters(n.BuildNotice(errors.New("boom")))
	if notice == nil {
		t.Fatal("notice should survive the chain")
	}
	if got := notice.Context["step"]; got != "second" {
		t.Errorf("Context[step] = %v, want filters applied in registration order", got)
	}
}

func TestRedactionFilter_RunsBeforeUserFilters(t *testing.T) {
	n := newTestNotifier(t)

	var seen any
	n.AddFilter(func(notice *Notice) *Notice {
		seen = notice.Params["password"]
		return notice
	})

	notice := n.applyFilters(n.BuildNotice(errors.New("boom"), WithParams(map[string]any{
		"password": "hunter2",
	})))

	if notice == nil {
		t.Fatal("notice should survive the chain")
	}
	if seen != redactedValue {
		t.Errorf("user filter saw password = %v, want it already redacted", seen)
	}
}

func TestRedactionFilter_AppliedOnTheWire(t *testing.T) {
	rs := newRecordingServer(t, http.StatusCreated, `{"id":"f-1"}`)

	n := newTestNotifier(t, func(cfg *Config) {
		cfg.Host = rs.srv.URL
	})

	notice := n.Notify(context.Background(), errors.New("boom"),
		WithParams(map[string]any{
			"password": "hunter2",
			"username": "jdoe",
			"profile": map[string]any{
				"api_token": "tok-123",
				"city":      "Lisbon",
			},
			"headers": map[string]string{
				"authorization": "Bearer abc",
				"accept":        "application/json",
			},
		}),
		WithSession(map[string]any{"session_secret": "s3cr3t", "theme": "dark"}),
	)
	if notice.Err != nil {
		t.Fatalf("Notify returned error: %v", notice.Err)
	}

	bodies := rs.getBodies()
	if len(bodies) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(bodies))
	}

	params, ok := bodies[0]["params"].(map[string]any)
	if !ok {
		t.Fatalf("wire params = %T, want a map", bodies[0]["params"])
	}
	session, ok := bodies[0]["session"].(map[string]any)
	if !ok {
		t.Fatalf("wire session = %T, want a map", bodies[0]["session"])
	}

	if params["password"] != redactedValue {
		t.Errorf("wire params.password = %v, want %q", params["password"], redactedValue)
	}
	if params["username"] != "jdoe" {
		t.Errorf("wire params.username = %v, want untouched", params["username"])
	}
	profile, ok := params["profile"].(map[string]any)
	if !ok {
		t.Fatalf("wire params.profile = %T, want a map", params["profile"])
	}
	if profile["api_token"] != redactedValue {
		t.Errorf("wire params.profile.api_token = %v, want %q", profile["api_token"], redactedValue)
	}
	if profile["city"] != "Lisbon" {
		t.Errorf("wire params.profile.city = %v, want untouched", profile["city"])
	}
	headers, ok := params["headers"].(map[string]any)
	if !ok {
		t.Fatalf("wire params.headers = %T, want a map", params["headers"])
	}
	if headers["authorization"] != redactedValue {
		t.Errorf("wire params.headers.authorization = %v, want %q", headers["authorization"], redactedValue)
	}
	if headers["accept"] != "application/json" {
		t.Errorf("wire params.headers.accept = %v, want untouched", headers["accept"])
	}
	if session["session_secret"] != redactedValue {
		t.Errorf("wire session.session_secret = %v, want %q", session["session_secret"], redactedValue)
	}
	if session["theme"] != "dark" {
		t.Errorf("wire session.theme = %v, want untouched", session["theme"])
	}
}

func TestRedactionFilter_NeverTouchesErrors(t *testing.T) {
	n := newTestNotifier(t)

	notice := n.applyFilters(n.BuildNotice(errors.New("password rejected for user")))
	if notice == nil {
		t.Fatal("notice should survive the chain")
	}
	if got := notice.Errors[0].Message; got != "password rejected for user" {
		t.Errorf("error message = %q, redaction must not rewrite error payloads", got)
	}
}

func TestCustomKeysBlocklistReplacesDefaults(t *testing.T) {
	n := newTestNotifier(t, func(cfg *Config) {
		cfg.KeysBlocklist = []string{`(?i)ssn`}
	})

	notice := n.applyFilters(n.BuildNotice(errors.New("boom"), WithParams(map[string]any{
		"ssn":      "123-45-6789",
		"password": "kept-because-custom-list",
	})))

	if notice == nil {
		t.Fatal("notice should survive the chain")
	}
	if notice.Params["ssn"] != redactedValue {
		t.Errorf("params.ssn = %v, want %q", notice.Params["ssn"], redactedValue)
	}
	if notice.Params["password"] != "kept-because-custom-list" {
		t.Errorf("params.password = %v, custom blocklist should replace the defaults", notice.Params["password"])
	}
}
