// dryrun.go implements the transport that prints the wire request
// instead of delivering it.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// dryRunTransport intercepts the notice POST, prints the request line,
// the relevant headers, and the pretty-printed JSON body, then answers
// with a synthetic created response so the pipeline reports success.
type dryRunTransport struct {
	out io.Writer
}

func (tr *dryRunTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	var body []byte
	if r.Body != nil {
		read, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		_ = r.Body.Close()
		body = read
	}

	fmt.Fprintf(tr.out, "POST %s\n", r.URL)
	fmt.Fprintf(tr.out, "Content-Type: %s\n", r.Header.Get("Content-Type"))
	fmt.Fprintf(tr.out, "Authorization: Bearer %s\n", maskKey(bearerToken(r)))
	fmt.Fprintf(tr.out, "\n%s\n", prettyJSON(body))

	return &http.Response{
		StatusCode: http.StatusCreated,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"id":"dry-run"}`)),
		Request:    r,
	}, nil
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// maskKey hides all but the last four characters so the printout can be
// shared without leaking the project key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func prettyJSON(raw []byte) []byte {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return raw
	}
	return pretty.Bytes()
}
