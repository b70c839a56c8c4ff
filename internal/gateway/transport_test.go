package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPostFormPayload(t *testing.T) {
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("ProcReturnCode=00"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, testLogger())

	data := url.Values{}
	data.Set("ShopCode", "FIRSATPOS")
	data.Set("TxnType", "Auth")

	body, err := client.Post(context.Background(), server.URL, FormPayload(data))
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "ShopCode=FIRSATPOS&TxnType=Auth", gotBody)
	assert.Equal(t, "ProcReturnCode=00", string(body))
}

func TestPostXMLPayload(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("<R><ResponseCode>00</ResponseCode></R>"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, testLogger())

	_, err := client.Post(context.Background(), server.URL, XMLPayload("<Request/>"))
	require.NoError(t, err)

	assert.Equal(t, "text/xml; charset=ISO-8859-1", gotContentType)
}

func TestPostNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance window", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, testLogger())

	_, err := client.Post(context.Background(), server.URL, FormPayload(url.Values{}))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
	assert.Contains(t, err.Error(), "maintenance window")
}

func TestPostNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(time.Second, testLogger())

	_, err := client.Post(context.Background(), server.URL, FormPayload(url.Values{}))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
}

func TestPostHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(30*time.Second, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Post(ctx, server.URL, FormPayload(url.Values{}))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransportError))
}
