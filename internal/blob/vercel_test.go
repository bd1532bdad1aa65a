package blob

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVercelStore_ListPaginates(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)

		w.Header().Set("Content-Type", "application/json")
		switch cursor {
		case "":
			_, _ = w.Write([]byte(`{"blobs":[{"url":"https://b/natours-1.jpg","pathname":"natours-1.jpg"}],"cursor":"c2","hasMore":true}`))
		case "c2":
			_, _ = w.Write([]byte(`{"blobs":[{"url":"https://b/natours-2.jpg","pathname":"natours-2.jpg"}],"hasMore":false}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	store := NewVercelStore(server.URL, "tok", nil)
	objects, err := store.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "c2"}, cursors)
	assert.Equal(t, []Object{
		{Pathname: "natours-1.jpg", URL: "https://b/natours-1.jpg"},
		{Pathname: "natours-2.jpg", URL: "https://b/natours-2.jpg"},
	}, objects)
	assert.Equal(t, "vercel", store.Name())
}

func TestVercelStore_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorized", http.StatusForbidden, `{"error":{"code":"forbidden"}}`, "list request failed"},
		{"malformed body", http.StatusOK, `{"blobs": [`, "malformed list response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewVercelStore(server.URL, "tok", nil).List(context.Background())
			require.Error(t, err)

			var blobErr *Error
			require.True(t, errors.As(err, &blobErr))
			assert.Equal(t, "vercel", blobErr.Provider)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewVercelStore_DefaultURL(t *testing.T) {
	store := NewVercelStore("", "tok", nil)
	u, err := store.pageURL("abc")
	require.NoError(t, err)
	assert.Equal(t, DefaultVercelAPIURL+"?cursor=abc&limit=1000", u)
}
