package places

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestAutocompleteRestrictsCountry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/autocomplete/json", r.URL.Path)
		assert.Equal(t, "country:tw", r.URL.Query().Get("components"))
		assert.Equal(t, "豆花", r.URL.Query().Get("input"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"status":"OK","predictions":[{"place_id":"p1","description":"豆花荘, 台北市"}]}`))
	})

	preds, err := c.Autocomplete(context.Background(), "豆花")
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{PlaceID: "p1", Description: "豆花荘, 台北市"}}, preds)
}

func TestAutocompleteZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","predictions":[]}`))
	})
	preds, err := c.Autocomplete(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		w.Write([]byte(`{"status":"OK","result":{"name":"豆花荘","formatted_address":"台北市",
			"geometry":{"location":{"lat":25.05,"lng":121.52}},
			"photos":[{"photo_reference":"ref1"},{"photo_reference":"ref2"}]}}`))
	})

	p, err := c.Details(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "豆花荘", p.Name)
	assert.Equal(t, 25.05, p.Location.Lat)
	require.Len(t, p.Photos, 2)
	assert.Equal(t, "/places/photo?ref=ref1", p.Photos[0])
	for _, u := range p.Photos {
		assert.NotContains(t, u, "test-key")
	}
}

func TestPhotoURLUsesProxy(t *testing.T) {
	c := NewClient("secret-key", WithPhotoProxy("https://api.example/places/photo"))
	u := c.PhotoURL("a b/c")
	assert.Equal(t, "https://api.example/places/photo?ref=a+b%2Fc", u)
	assert.NotContains(t, u, "secret-key")
}

func TestPhotoFetchesWithKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/photo", r.URL.Path)
		assert.Equal(t, "ref1", r.URL.Query().Get("photo_reference"))
		assert.Equal(t, "800", r.URL.Query().Get("maxwidth"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})

	body, contentType, err := c.Photo(context.Background(), "ref1")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "image/jpeg", contentType)
}

func TestPhotoNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, _, err := c.Photo(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestReverseAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25.05,121.52", r.URL.Query().Get("latlng"))
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`))
	})
	_, err := c.Reverse(context.Background(), 25.05, 121.52)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestReverse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"台南市中西区"}]}`))
	})
	addr, err := c.Reverse(context.Background(), 22.99, 120.2)
	require.NoError(t, err)
	assert.Equal(t, "台南市中西区", addr)
}

func TestMissingKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Autocomplete(context.Background(), "x")
	assert.Error(t, err)
}
