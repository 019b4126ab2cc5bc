package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptstore-backend/internal/domains/prompt/model"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestDetectFromBytes(t *testing.T) {
	d := NewRatioDetector(time.Second)

	tests := []struct {
		name   string
		width  int
		height int
		want   string
	}{
		{"square", 64, 64, "1:1"},
		{"widescreen", 1920, 1080, "16:9"},
		{"tall", 1080, 1920, "9:16"},
		{"portrait", 640, 960, "2:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.DetectFromBytes(pngBytes(t, tt.width, tt.height)))
		})
	}

	t.Run("garbage falls back to default", func(t *testing.T) {
		assert.Equal(t, model.DefaultRatio, d.DetectFromBytes([]byte("not an image")))
	})
}

func TestDetectFromURL(t *testing.T) {
	d := NewRatioDetector(time.Second)

	t.Run("resolves bucket from served image", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(pngBytes(t, 1600, 900))
		}))
		defer srv.Close()

		assert.Equal(t, "16:9", d.DetectFromURL(context.Background(), srv.URL))
	})

	t.Run("empty url is default", func(t *testing.T) {
		assert.Equal(t, model.DefaultRatio, d.DetectFromURL(context.Background(), ""))
	})

	t.Run("http error is default", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		assert.Equal(t, model.DefaultRatio, d.DetectFromURL(context.Background(), srv.URL))
	})

	t.Run("unreachable host is default", func(t *testing.T) {
		assert.Equal(t, model.DefaultRatio, d.DetectFromURL(context.Background(), "http://127.0.0.1:1/x.png"))
	})
}
