package mediacheck

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestValidator(client *http.Client) *Validator {
	return NewValidator(client, 5*time.Second, zerolog.New(io.Discard))
}

func serveBytes(contentType string, payload []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(payload)
	}))
}

func TestValidateAcceptsVerticalJPEG(t *testing.T) {
	srv := serveBytes("image/jpeg", encodeJPEG(t, 1080, 1350))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	require.NotNil(t, ref)
	assert.Equal(t, "image/jpeg", ref.MIME)
	assert.Equal(t, 1080, ref.Width)
	assert.Equal(t, 1350, ref.Height)
}

func TestValidateAcceptsPNG(t *testing.T) {
	srv := serveBytes("image/png", encodePNG(t, 768, 768))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	require.NotNil(t, ref)
	assert.Equal(t, "image/png", ref.MIME)
}

func TestValidateRejectsExcessiveAspectRatio(t *testing.T) {
	srv := serveBytes("image/jpeg", encodeJPEG(t, 2000, 800))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	assert.Nil(t, ref)
}

func TestValidateAcceptsBoundaryAspectRatio(t *testing.T) {
	// 2286x1000 sits exactly on the 2.286 limit and must pass.
	srv := serveBytes("image/jpeg", encodeJPEG(t, 2286, 1000))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	require.NotNil(t, ref)
}

func TestValidateRejectsUnsupportedMIME(t *testing.T) {
	srv := serveBytes("text/html", []byte("<html><body>not an image</body></html>"))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	assert.Nil(t, ref)
}

func TestValidateRejectsOversizedPayload(t *testing.T) {
	payload := encodeJPEG(t, 100, 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", len(payload)-1, int64(20<<20)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	assert.Nil(t, ref)
}

func TestValidateHonorsContentRangeTotalWithinLimit(t *testing.T) {
	payload := encodeJPEG(t, 1080, 1350)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", len(payload)-1, int64(2<<20)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	require.NotNil(t, ref)
	assert.Equal(t, int64(2<<20), ref.Bytes)
}

func TestValidateResolvesRedirects(t *testing.T) {
	payload := encodeJPEG(t, 1000, 1000)
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final.jpg", http.StatusFound)
	})
	mux.HandleFunc("/final.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL+"/start")
	require.NotNil(t, ref)
	assert.True(t, strings.HasSuffix(ref.URL, "/final.jpg"))
}

func TestValidateRejectsOnNetworkError(t *testing.T) {
	srv := serveBytes("image/jpeg", encodeJPEG(t, 100, 100))
	url := srv.URL
	srv.Close()

	ref := newTestValidator(&http.Client{}).Validate(context.Background(), url)
	assert.Nil(t, ref)
}

func TestValidateFallsBackToSniffedMIME(t *testing.T) {
	srv := serveBytes("application/octet-stream", encodePNG(t, 500, 500))
	defer srv.Close()

	ref := newTestValidator(srv.Client()).Validate(context.Background(), srv.URL)
	require.NotNil(t, ref)
	assert.Equal(t, "image/png", ref.MIME)
}
