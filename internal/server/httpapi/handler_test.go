package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vehiclereg/internal/server/auth"
	"github.com/dmitrijs2005/vehiclereg/internal/server/repositories/records"
	"github.com/dmitrijs2005/vehiclereg/internal/server/services"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	svc := services.NewRecordService(records.NewMemoryRepository(), nil)
	ts := httptest.NewServer(NewServer("", nil, svc, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeErr(t *testing.T, b []byte) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(b, &e))
	return e
}

const createBody = `{"registrationNumber":"WP-CAB-1234","ownerName":"Nimal Perera","make":"Toyota"}`

func TestRecords_CreateGetList(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, b := call(t, ts, http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(b))

	resp, b = call(t, ts, http.MethodPost, "/records", createBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(b))
	var created vehicle.Record
	require.NoError(t, json.Unmarshal(b, &created))
	assert.Equal(t, "rec_1", created.ID)
	assert.Equal(t, "Toyota", created.Make)

	resp, b = call(t, ts, http.MethodGet, "/records/rec_1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got vehicle.Record
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "WP-CAB-1234", got.RegistrationNumber)

	resp, b = call(t, ts, http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []vehicle.Record
	require.NoError(t, json.Unmarshal(b, &all))
	assert.Len(t, all, 1)
}

func TestRecords_CreateErrors(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, _ := call(t, ts, http.MethodPost, "/records", createBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodPost, "/records", `{"registrationNumber":"wp cab 1234","ownerName":"Other"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, b := call(t, ts, http.MethodPost, "/records", `{"registrationNumber":"CAR-1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ownerName", decodeErr(t, b).Field)

	resp, b = call(t, ts, http.MethodPost, "/records", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "body", decodeErr(t, b).Field)
}

func TestRecords_CheckDuplicate(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, http.MethodPost, "/records", createBody)

	_, b := call(t, ts, http.MethodGet, "/records/check-duplicate/WPCAB1234", "")
	assert.JSONEq(t, `{"exists":true}`, string(b))

	_, b = call(t, ts, http.MethodGet, "/records/check-duplicate/CP-XY-0001", "")
	assert.JSONEq(t, `{"exists":false}`, string(b))
}

func TestRecords_UpdateKeepsNumber(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, http.MethodPost, "/records", createBody)

	resp, b := call(t, ts, http.MethodPut, "/records/rec_1", `{"registrationNumber":"wp-cab-1234","color":"Red"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	var rec vehicle.Record
	require.NoError(t, json.Unmarshal(b, &rec))
	assert.Equal(t, "Red", rec.Color)
	assert.Equal(t, "Toyota", rec.Make)

	resp, b = call(t, ts, http.MethodPut, "/records/rec_1", `{"registrationNumber":"CP-XY-0001"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "registrationNumber", decodeErr(t, b).Field)

	resp, _ = call(t, ts, http.MethodPut, "/records/rec_404", `{"color":"Blue"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecords_PatchStatus(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, http.MethodPost, "/records", createBody)

	resp, b := call(t, ts, http.MethodPatch, "/records/rec_1/status", `{"ownerComplete":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	resp, b = call(t, ts, http.MethodPatch, "/records/rec_1/status", `{"detailsComplete":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))

	var rec vehicle.Record
	require.NoError(t, json.Unmarshal(b, &rec))
	assert.True(t, rec.Status.Done(vehicle.StageOwner))
	assert.True(t, rec.Status.Done(vehicle.StageDetails))

	resp, b = call(t, ts, http.MethodPatch, "/records/rec_1/status", `{"paintComplete":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "status", decodeErr(t, b).Field)

	resp, _ = call(t, ts, http.MethodPatch, "/records/rec_1/status", `{"ownerComplete":true,"detailsComplete":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodPatch, "/records/rec_9/status", `{"ownerComplete":true}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecords_IncompleteAndDelete(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, http.MethodPost, "/records", createBody)

	_, b := call(t, ts, http.MethodGet, "/records/incomplete", "")
	var inc []vehicle.Record
	require.NoError(t, json.Unmarshal(b, &inc))
	require.Len(t, inc, 1)

	resp, _ := call(t, ts, http.MethodDelete, "/records/rec_1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodDelete, "/records/rec_1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, b = call(t, ts, http.MethodGet, "/records/incomplete", "")
	assert.JSONEq(t, `[]`, string(b))
}

func TestAuth_RequiresBearerToken(t *testing.T) {
	secret := "s3cret"
	ts := newTestServer(t, Options{SecretKey: secret})

	resp, _ := call(t, ts, http.MethodGet, "/records", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tok, err := auth.GenerateToken("desk-1", []byte(secret), time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/records", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bad, err := auth.GenerateToken("desk-1", []byte("other"), time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newTestServer(t, Options{Registry: reg, MetricsPath: "/metrics"})

	call(t, ts, http.MethodGet, "/records/rec_7", "")
	call(t, ts, http.MethodGet, "/records/rec_8", "")

	resp, b := call(t, ts, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), `vr_http_requests_total{method="GET",route="/records/{id}",status="404"} 2`)
	assert.NotContains(t, string(b), "rec_7")
}
