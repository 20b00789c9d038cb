package mock

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequestBundleParsesJSONBodyForMutatingVerbs(t *testing.T) {
	body := `{"username":"alice","count":3}`
	req := httptest.NewRequest(http.MethodPost, "/login?q=item-1&tag=a&tag=b", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	bundle := newRequestBundle(req, []byte(body), map[string]string{"id": "42"})

	require.Equal(t, "alice", bundle.Body()["username"])
	require.Equal(t, "item-1", bundle.Query("q"))
	require.Equal(t, []string{"a", "b"}, bundle.QueryArray("tag"))
	require.Equal(t, "42", bundle.Path("id"))
}

func TestNewRequestBundleSkipsBodyParsingForGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items", strings.NewReader(`{"x":1}`))
	req.Header.Set("Content-Type", "application/json")

	bundle := newRequestBundle(req, []byte(`{"x":1}`), nil)
	require.Empty(t, bundle.Body())
}

func TestNewRequestBundleNonObjectJSONYieldsEmptyMap(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`[1,2,3]`))
	req.Header.Set("Content-Type", "application/json")

	bundle := newRequestBundle(req, []byte(`[1,2,3]`), nil)
	require.Empty(t, bundle.Body())
}

func TestNewRequestBundleParsesFormEncodedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("a=1&a=2&b=solo"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	bundle := newRequestBundle(req, []byte("a=1&a=2&b=solo"), nil)
	require.Equal(t, []string{"1", "2"}, bundle.Body()["a"])
	require.Equal(t, "solo", bundle.Body()["b"])
}

func TestNewRequestBundleUnknownContentTypeYieldsEmptyMap(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("whatever"))
	req.Header.Set("Content-Type", "text/plain")

	bundle := newRequestBundle(req, []byte("whatever"), nil)
	require.Empty(t, bundle.Body())
}
