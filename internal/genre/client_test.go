package genre

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestPredictSendsProfile(t *testing.T) {
	var captured map[string][]string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", req.Method)
		}
		if req.URL.String() != "http://classifier.test/predict" {
			t.Fatalf("unexpected url %s", req.URL)
		}
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return respond(http.StatusOK, `{"genre":" environment "}`), nil
	})

	client, err := NewClient("http://classifier.test/predict", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	genre, err := client.Predict(context.Background(), []string{"ocean"}, nil)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if genre != "environment" {
		t.Fatalf("unexpected genre %q", genre)
	}
	if len(captured["interests"]) != 1 || captured["strengths"] == nil {
		t.Fatalf("unexpected payload %v", captured)
	}
}

func TestPredictErrors(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty endpoint")
	}

	cases := map[string]*http.Response{
		"server error": respond(http.StatusBadGateway, "upstream down"),
		"bad json":     respond(http.StatusOK, "not-json"),
		"empty genre":  respond(http.StatusOK, `{"genre":""}`),
	}
	for name, resp := range cases {
		resp := resp
		client, _ := NewClient("http://classifier.test", WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return resp, nil
		})}))
		_, err := client.Predict(context.Background(), []string{"teaching"}, []string{"patience"})
		if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("%s: expected dependency error, got %v", name, err)
		}
	}

	client, _ := NewClient("http://classifier.test")
	if _, err := client.Predict(context.Background(), nil, nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty profile, got %v", err)
	}
}
