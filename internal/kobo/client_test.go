package kobo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tree-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSubmissions(t *testing.T) {
	var gotAuth, gotQuery, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 2,
			"results": [
				{
					"_id": 101,
					"_submission_time": "2026-03-14T09:30:00",
					"_geolocation": [-1.2921, 36.8219],
					"institution": "Greenwood High",
					"local_name": "Silky Oak",
					"dbh_cm": "10.5"
				},
				{
					"_id": "102",
					"institution": "Acacia Trust",
					"local_name": "Mango",
					"rcd_cm": 3.2,
					"_geolocation": [null, null]
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(config.KoboConfig{
		APIURL:   server.URL,
		APIToken: "secret-token",
	})

	since := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	subs, err := client.ListSubmissions(context.Background(), "aXYZ", since)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "Token secret-token", gotAuth)
	assert.Equal(t, "/assets/aXYZ/data/", gotPath)

	var filter map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotQuery), &filter))
	assert.Equal(t, "2026-03-13T00:00:00", filter["_submission_time"]["$gte"])

	// Numeric and string submission ids both decode.
	assert.Equal(t, FlexString("101"), subs[0].ID)
	assert.Equal(t, FlexString("102"), subs[1].ID)

	// String-typed measurements coerce to floats.
	assert.True(t, subs[0].DBHCm.Valid)
	assert.Equal(t, 10.5, subs[0].DBHCm.Value)
	assert.True(t, subs[1].RCDCm.Valid)

	lat, lon := subs[0].Coordinates()
	require.NotNil(t, lat)
	assert.Equal(t, -1.2921, *lat)
	assert.Equal(t, 36.8219, *lon)

	// Null geolocation pair yields no coordinates.
	lat, lon = subs[1].Coordinates()
	assert.Nil(t, lat)
	assert.Nil(t, lon)
}

func TestListSubmissionsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.KoboConfig{APIURL: server.URL, APIToken: "bad"})

	_, err := client.ListSubmissions(context.Background(), "aXYZ", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFlexFloatCoercion(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		value float64
		valid bool
	}{
		{"number", `{"dbh_cm": 10.5}`, 10.5, true},
		{"numeric string", `{"dbh_cm": "7.25"}`, 7.25, true},
		{"empty string", `{"dbh_cm": ""}`, 0, false},
		{"null", `{"dbh_cm": null}`, 0, false},
		{"absent", `{}`, 0, false},
		{"garbage string", `{"dbh_cm": "n/a"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sub Submission
			require.NoError(t, json.Unmarshal([]byte(tt.json), &sub))
			assert.Equal(t, tt.valid, sub.DBHCm.Valid)
			assert.Equal(t, tt.value, sub.DBHCm.Value)
		})
	}
}

func TestCoordinatesFallback(t *testing.T) {
	// Separate latitude/longitude fields are used when _geolocation is
	// absent.
	sub := Submission{
		Latitude:  FlexFloat{Value: -0.5, Valid: true},
		Longitude: FlexFloat{Value: 37.1, Valid: true},
	}
	lat, lon := sub.Coordinates()
	require.NotNil(t, lat)
	assert.Equal(t, -0.5, *lat)
	assert.Equal(t, 37.1, *lon)
}
