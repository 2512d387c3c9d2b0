package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	url   string
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Upload(ctx context.Context, file File) (string, error) {
	f.calls.Add(1)
	return f.url, f.err
}

func quietLogger() echo.Logger {
	l := echo.New().Logger
	l.SetOutput(io.Discard)
	return l
}

var testFile = File{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: errors.New("down")}
	p2 := &fakeProvider{name: "two", url: "https://two.example/a.jpg"}
	p3 := &fakeProvider{name: "three", url: "https://three.example/a.jpg"}

	res, err := NewChain([]Provider{p1, p2, p3}, WithLogger(quietLogger())).Upload(context.Background(), testFile)
	require.NoError(t, err)
	assert.Equal(t, "https://two.example/a.jpg", res.URL)
	assert.Equal(t, "two", res.Provider)
	assert.EqualValues(t, 1, p1.calls.Load())
	assert.EqualValues(t, 1, p2.calls.Load())
	assert.EqualValues(t, 0, p3.calls.Load(), "provider after the first success must not be attempted")
}

func TestChainFallsBackToDataURI(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: errors.New("down")}
	p2 := &fakeProvider{name: "two", err: errors.New("bad shape")}

	res, err := NewChain([]Provider{p1, p2}, WithLogger(quietLogger())).Upload(context.Background(), testFile)
	require.NoError(t, err)
	assert.Equal(t, DataURIProvider, res.Provider)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(testFile.Data), res.URL)
	assert.EqualValues(t, 1, p1.calls.Load())
	assert.EqualValues(t, 1, p2.calls.Load())
}

func TestChainWithoutFallback(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: errors.New("down")}
	_, err := NewChain([]Provider{p1}, WithLogger(quietLogger()), WithDataURIFallback(false)).
		Upload(context.Background(), testFile)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Contains(t, err.Error(), "one: down")
}

func TestChainHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p1 := &fakeProvider{name: "one", url: "https://one.example"}
	_, err := NewChain([]Provider{p1}, WithLogger(quietLogger())).Upload(ctx, testFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, p1.calls.Load())
}

func TestChainProviders(t *testing.T) {
	c := NewChain(DefaultProviders(nil))
	assert.Equal(t, []string{"0x0.st", "catbox.moe", "pomf.lain.la"}, c.Providers())
}

func TestDataURIDefaultsContentType(t *testing.T) {
	assert.Equal(t, "data:application/octet-stream;base64,AQI=", DataURI(File{Data: []byte{1, 2}}))
}

// hostServer records the multipart form it receives and replies with reply.
func hostServer(t *testing.T, status int, reply string, got *map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		for k, fh := range r.MultipartForm.File {
			f, err := fh[0].Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(f)
			f.Close()
			fields[k] = "file:" + fh[0].Filename + ":" + string(data)
		}
		*got = fields
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestZeroXZeroProvider(t *testing.T) {
	var form map[string]string
	srv := hostServer(t, http.StatusOK, "https://0x0.st/abc.jpg\n", &form)

	url, err := NewZeroXZero(srv.URL, srv.Client()).Upload(context.Background(), testFile)
	require.NoError(t, err)
	assert.Equal(t, "https://0x0.st/abc.jpg", url)
	assert.Equal(t, "file:a.jpg:jpeg-bytes", form["file"])
}

func TestZeroXZeroRejectsUnexpectedBody(t *testing.T) {
	var form map[string]string
	srv := hostServer(t, http.StatusOK, "<html>blocked</html>", &form)
	_, err := NewZeroXZero(srv.URL, srv.Client()).Upload(context.Background(), testFile)
	assert.Error(t, err)
}

func TestCatboxProvider(t *testing.T) {
	var form map[string]string
	srv := hostServer(t, http.StatusOK, "https://files.catbox.moe/xyz.jpg", &form)

	url, err := NewCatbox(srv.URL, srv.Client()).Upload(context.Background(), testFile)
	require.NoError(t, err)
	assert.Equal(t, "https://files.catbox.moe/xyz.jpg", url)
	assert.Equal(t, "fileupload", form["reqtype"])
	assert.Equal(t, "file:a.jpg:jpeg-bytes", form["fileToUpload"])
}

func TestCatboxRejectsErrorStatus(t *testing.T) {
	var form map[string]string
	srv := hostServer(t, http.StatusServiceUnavailable, "https://files.catbox.moe/xyz.jpg", &form)
	_, err := NewCatbox(srv.URL, srv.Client()).Upload(context.Background(), testFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPomfProvider(t *testing.T) {
	var form map[string]string
	srv := hostServer(t, http.StatusOK, `{"success":true,"files":[{"url":"https://pomf2.lain.la/f/q.jpg"}]}`, &form)

	url, err := NewPomf(srv.URL, srv.Client()).Upload(context.Background(), testFile)
	require.NoError(t, err)
	assert.Equal(t, "https://pomf2.lain.la/f/q.jpg", url)
	assert.Equal(t, "file:a.jpg:jpeg-bytes", form["files[]"])
}

func TestPomfJSON(t *testing.T) {
	tests := []struct {
		body    string
		wantErr bool
	}{
		{`{"success":true,"files":[{"url":"https://x/y"}]}`, false},
		{`{"success":false,"files":[{"url":"https://x/y"}]}`, true},
		{`{"success":true,"files":[]}`, true},
		{`not json`, true},
	}
	for _, tt := range tests {
		_, err := PomfJSON([]byte(tt.body))
		if (err != nil) != tt.wantErr {
			t.Errorf("PomfJSON(%q) err = %v, wantErr %v", tt.body, err, tt.wantErr)
		}
	}
}

func TestChainOverHTTPHosts(t *testing.T) {
	var f1, f2, f3 map[string]string
	down := hostServer(t, http.StatusInternalServerError, "oops", &f1)
	ok := hostServer(t, http.StatusOK, "https://files.catbox.moe/ok.jpg", &f2)
	third := hostServer(t, http.StatusOK, `{"success":true,"files":[{"url":"https://p/3"}]}`, &f3)

	chain := NewChain([]Provider{
		NewZeroXZero(down.URL, down.Client()),
		NewCatbox(ok.URL, ok.Client()),
		NewPomf(third.URL, third.Client()),
	}, WithLogger(quietLogger()))

	res, err := chain.Upload(context.Background(), testFile)
	require.NoError(t, err)
	assert.Equal(t, "https://files.catbox.moe/ok.jpg", res.URL)
	assert.NotNil(t, f1)
	assert.NotNil(t, f2)
	assert.Nil(t, f3, "third host must not be contacted")
}

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		in           string
		wantEndpoint string
		wantSecure   bool
		wantErr      bool
	}{
		{"minio:9000", "minio:9000", false, false},
		{"http://minio:9000", "minio:9000", false, false},
		{"https://s3.example.com", "s3.example.com", true, false},
		{"http://minio:9000/", "minio:9000", false, false},
		{"http://minio:9000/bucket", "", false, true},
		{"", "", false, true},
	}
	for _, tt := range tests {
		ep, secure, err := normaliseEndpoint(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for input %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.in, err)
		}
		if ep != tt.wantEndpoint || secure != tt.wantSecure {
			t.Fatalf("normaliseEndpoint(%q) = (%q,%v), want (%q,%v)", tt.in, ep, secure, tt.wantEndpoint, tt.wantSecure)
		}
	}
}

func TestS3ProviderObjectKeyAndURL(t *testing.T) {
	p, err := NewS3Provider(S3Config{Endpoint: "https://s3.example.com", Bucket: "photos", Prefix: "/uploads/"})
	require.NoError(t, err)
	assert.Equal(t, "s3:photos", p.Name())
	assert.Equal(t, "https://s3.example.com/photos", p.publicURL)

	key := p.objectKey("Holiday.JPG")
	assert.True(t, strings.HasPrefix(key, "uploads/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	_, err = NewS3Provider(S3Config{Endpoint: "minio:9000"})
	assert.Error(t, err, "bucket is required")
	assert.False(t, S3Config{Bucket: "b"}.Enabled())
}
