package gcs

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/models"
)

type fakeGCS struct {
	mu       sync.Mutex
	metadata map[string]interface{}
	media    []byte
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, "/upload/") {
		http.NotFound(w, r)
		return
	}
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mr := multipart.NewReader(r.Body, params["boundary"])
	for i := 0; ; i++ {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		data, _ := io.ReadAll(part)
		if i == 0 {
			_ = json.Unmarshal(data, &f.metadata)
		} else {
			f.media = data
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"bucket":"exports","name":"contacts.jsonl"}`))
}

func TestWrite(t *testing.T) {
	fake := &fakeGCS{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	dest, err := NewGCSDestination(config.NewConnectorConfig("out", "gcs").
		Set("bucket", "exports").
		Set("key", "contacts.jsonl").
		Set("format", "jsonl").
		Set("endpoint", srv.URL+"/storage/v1/"))
	require.NoError(t, err)

	tbl := models.FromRows("contacts", []string{"email", "visits"}, []models.Row{
		{"email": "a@x.id", "visits": int64(3)},
		{"email": "b@x.id"},
	})
	require.NoError(t, dest.Write(context.Background(), tbl))
	require.NoError(t, dest.Close(context.Background()))

	assert.Equal(t, "contacts.jsonl", fake.metadata["name"])
	assert.Equal(t, "application/x-ndjson", fake.metadata["contentType"])
	assert.Equal(t, "{\"email\":\"a@x.id\",\"visits\":3}\n{\"email\":\"b@x.id\",\"visits\":null}\n", string(fake.media))
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewGCSDestination(config.NewConnectorConfig("out", "gcs").Set("key", "k"))
	assert.Error(t, err)

	_, err = NewGCSDestination(config.NewConnectorConfig("out", "gcs").
		Set("bucket", "b").
		Set("key", "k").
		Set("compression", "rar"))
	assert.Error(t, err)
}
