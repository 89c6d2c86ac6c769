package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ts := httptest.NewServer(r)
	defer ts.Close()

	ok := httpRequestsTotal.WithLabelValues("GET", "200")
	teapot := httpRequestsTotal.WithLabelValues("GET", "418")
	okBefore := testutil.ToFloat64(ok)
	teapotBefore := testutil.ToFloat64(teapot)

	for _, path := range []string{"/test", "/teapot"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		if errInner := resp.Body.Close(); errInner != nil {
			t.Log(errInner)
		}
	}

	if delta := testutil.ToFloat64(ok) - okBefore; delta != 1 {
		t.Errorf("Expected httpRequestsTotal for GET 200 to grow by 1, got %f", delta)
	}
	if delta := testutil.ToFloat64(teapot) - teapotBefore; delta != 1 {
		t.Errorf("Expected httpRequestsTotal for GET 418 to grow by 1, got %f", delta)
	}
	if val := testutil.CollectAndCount(httpRequestDurationSeconds); val <= 0 {
		t.Errorf("Expected httpRequestDurationSeconds to be observed, got %d", val)
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	rw.WriteHeader(http.StatusAccepted)
	rw.Flush()

	if rw.status != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rw.status)
	}
	if !rec.Flushed {
		t.Fatal("expected flush to reach the recorder")
	}
}
