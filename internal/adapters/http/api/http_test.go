package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoofprint/hoofprint/internal/adapters/http/api"
	service "github.com/hoofprint/hoofprint/internal/app"
	"github.com/hoofprint/hoofprint/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := service.New()
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func createTrail(t *testing.T, baseURL, name string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, baseURL+"/api/trails", map[string]any{
		"name": name, "active": true,
	})
	So(status, ShouldEqual, http.StatusCreated)
	id, _ := body["id"].(string)
	So(id, ShouldNotBeEmpty)
	return id
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		Convey("When probing the health endpoint", func() {
			status, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)

			Convey("Then it should report ok", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When posting to the health endpoint", func() {
			status, _ := doJSON(t, http.MethodPost, ts.URL+"/healthz", nil)

			Convey("Then the verb should be rejected", func() {
				So(status, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When reading coordinator stats", func() {
			status, body := doJSON(t, http.MethodGet, ts.URL+"/stats", nil)

			Convey("Then the started flag should be set", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(body["started"], ShouldEqual, true)
			})
		})

		Convey("When scraping metrics", func() {
			resp, err := http.Get(ts.URL + "/metrics")

			Convey("Then the exposition endpoint should respond", func() {
				So(err, ShouldBeNil)
				defer resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestTrailEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		Convey("When creating a trail without a name", func() {
			status, body := doJSON(t, http.MethodPost, ts.URL+"/api/trails", map[string]any{"location": "nowhere"})

			Convey("Then it should be a bad request", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When posting a malformed body", func() {
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/trails", bytes.NewBufferString("{not json"))
			So(err, ShouldBeNil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should be a bad request", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When running a trail through its lifecycle", func() {
			id := createTrail(t, ts.URL, "Ridge Loop")

			status, body := doJSON(t, http.MethodGet, ts.URL+"/api/trails/"+id, nil)
			So(status, ShouldEqual, http.StatusOK)
			So(body["name"], ShouldEqual, "Ridge Loop")

			status, list := doJSON(t, http.MethodGet, ts.URL+"/api/trails", nil)
			So(status, ShouldEqual, http.StatusOK)
			data, _ := list["data"].([]any)
			So(data, ShouldHaveLength, 1)

			status, body = doJSON(t, http.MethodPut, ts.URL+"/api/trails/"+id, map[string]any{"name": "Ridge Loop Extended"})
			So(status, ShouldEqual, http.StatusOK)
			So(body["name"], ShouldEqual, "Ridge Loop Extended")

			status, body = doJSON(t, http.MethodDelete, ts.URL+"/api/trails/"+id, nil)
			So(status, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "deleted")

			status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/trails/"+id, nil)
			So(status, ShouldEqual, http.StatusNotFound)
		})

		Convey("When reading a missing trail", func() {
			status, body := doJSON(t, http.MethodGet, ts.URL+"/api/trails/missing", nil)

			Convey("Then it should report not found", func() {
				So(status, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When using an unsupported verb", func() {
			status, body := doJSON(t, http.MethodPatch, ts.URL+"/api/trails", nil)

			Convey("Then it should be rejected", func() {
				So(status, ShouldEqual, http.StatusMethodNotAllowed)
				So(body["code"], ShouldEqual, "method_not_allowed")
			})
		})

		Convey("When requesting an unknown subresource", func() {
			id := createTrail(t, ts.URL, "Ridge Loop")
			status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/trails/"+id+"/photos", nil)

			Convey("Then it should be not found", func() {
				So(status, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRegistrationEndpoints(t *testing.T) {
	Convey("Given a server with one trail", t, func() {
		ts := newTestServer(t)
		trailID := createTrail(t, ts.URL, "Ridge Loop")

		Convey("When creating a valid registration", func() {
			status, body := doJSON(t, http.MethodPost, ts.URL+"/api/registrations", map[string]any{
				"trailId": trailID, "riderName": "Ada", "horseCount": 2,
			})

			Convey("Then it should be created", func() {
				So(status, ShouldEqual, http.StatusCreated)
				So(body["riderName"], ShouldEqual, "Ada")
				So(body["horseCount"], ShouldEqual, float64(2))
			})

			Convey("And it should show under the trail's registrations", func() {
				status, listBody := doJSON(t, http.MethodGet, ts.URL+"/api/trails/"+trailID+"/registrations", nil)
				So(status, ShouldEqual, http.StatusOK)
				data, _ := listBody["data"].([]any)
				So(data, ShouldHaveLength, 1)
			})
		})

		Convey("When creating against an unknown trail", func() {
			status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/registrations", map[string]any{
				"trailId": "ghost", "riderName": "Ada", "horseCount": 1,
			})

			Convey("Then it should be not found", func() {
				So(status, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When listing with pagination parameters", func() {
			for i := 0; i < 12; i++ {
				status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/registrations", map[string]any{
					"trailId": trailID, "riderName": fmt.Sprintf("Rider %d", i), "horseCount": 1,
				})
				So(status, ShouldEqual, http.StatusCreated)
			}

			status, body := doJSON(t, http.MethodGet, ts.URL+"/api/registrations?page=1&limit=5", nil)

			Convey("Then the page envelope should be complete", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(body["totalItems"], ShouldEqual, float64(12))
				So(body["totalPages"], ShouldEqual, float64(3))
				So(body["hasNextPage"], ShouldEqual, true)
				So(body["hasPrevPage"], ShouldEqual, false)
				data, _ := body["data"].([]any)
				So(data, ShouldHaveLength, 5)
			})
		})

		Convey("When passing a non-numeric page parameter", func() {
			status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/registrations?page=abc", nil)

			Convey("Then it should be a bad request", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When filtering by trail", func() {
			otherID := createTrail(t, ts.URL, "Creek Path")
			for _, tid := range []string{trailID, otherID, otherID} {
				status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/registrations", map[string]any{
					"trailId": tid, "riderName": "Rider", "horseCount": 1,
				})
				So(status, ShouldEqual, http.StatusCreated)
			}

			status, body := doJSON(t, http.MethodGet, ts.URL+"/api/registrations?trail="+otherID, nil)

			Convey("Then only that trail's registrations should appear", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(body["totalItems"], ShouldEqual, float64(2))
			})
		})

		Convey("When updating and deleting a registration", func() {
			status, created := doJSON(t, http.MethodPost, ts.URL+"/api/registrations", map[string]any{
				"trailId": trailID, "riderName": "Ada", "horseCount": 2,
			})
			So(status, ShouldEqual, http.StatusCreated)
			id, _ := created["id"].(string)

			status, updated := doJSON(t, http.MethodPut, ts.URL+"/api/registrations/"+id, map[string]any{"horseCount": 5})
			So(status, ShouldEqual, http.StatusOK)
			So(updated["horseCount"], ShouldEqual, float64(5))

			status, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/registrations/"+id, nil)
			So(status, ShouldEqual, http.StatusOK)

			status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/registrations/"+id, nil)
			So(status, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTemplateEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		Convey("When running a template through its lifecycle", func() {
			status, created := doJSON(t, http.MethodPost, ts.URL+"/api/templates", map[string]any{
				"name": "welcome", "subject": "Welcome", "body": "See you there.",
			})
			So(status, ShouldEqual, http.StatusCreated)
			id, _ := created["id"].(string)
			So(id, ShouldNotBeEmpty)

			status, got := doJSON(t, http.MethodGet, ts.URL+"/api/templates/"+id, nil)
			So(status, ShouldEqual, http.StatusOK)
			So(got["subject"], ShouldEqual, "Welcome")

			status, updated := doJSON(t, http.MethodPut, ts.URL+"/api/templates/"+id, map[string]any{"subject": "Saddle up"})
			So(status, ShouldEqual, http.StatusOK)
			So(updated["subject"], ShouldEqual, "Saddle up")

			status, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/templates/"+id, nil)
			So(status, ShouldEqual, http.StatusOK)
		})

		Convey("When creating a template without a name", func() {
			status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/templates", map[string]any{"subject": "Hi"})

			Convey("Then it should be a bad request", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestStatisticsEndpoints(t *testing.T) {
	Convey("Given a server with a trail and a registration", t, func() {
		ts := newTestServer(t)
		trailID := createTrail(t, ts.URL, "Ridge Loop")
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/registrations", map[string]any{
			"trailId": trailID, "riderName": "Ada", "horseCount": 2,
		})
		So(status, ShouldEqual, http.StatusCreated)

		Convey("When reading statistics", func() {
			status, body := doJSON(t, http.MethodGet, ts.URL+"/api/statistics", nil)

			Convey("Then the snapshot groupings should be present", func() {
				So(status, ShouldEqual, http.StatusOK)
				byTrail, _ := body["byTrail"].([]any)
				So(byTrail, ShouldHaveLength, 1)
				bucket, _ := byTrail[0].(map[string]any)
				So(bucket["trailName"], ShouldEqual, "Ridge Loop")
				So(bucket["horses"], ShouldEqual, float64(2))
				So(body["byDay"], ShouldNotBeNil)
				So(body["byWeek"], ShouldNotBeNil)
				So(body["byMonth"], ShouldNotBeNil)
			})
		})

		Convey("When forcing a recompute", func() {
			status, body := doJSON(t, http.MethodPost, ts.URL+"/api/statistics/recompute", nil)

			Convey("Then a fresh snapshot should be returned", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(body["generatedAt"], ShouldNotBeNil)
			})
		})

		Convey("When recomputing with the wrong verb", func() {
			status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/statistics/recompute", nil)

			Convey("Then it should be rejected", func() {
				So(status, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}
