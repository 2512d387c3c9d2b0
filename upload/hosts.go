package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Endpoints of the anonymous hosts, in the order DefaultProviders tries them.
const (
	ZeroXZeroEndpoint = "https://0x0.st"
	CatboxEndpoint    = "https://catbox.moe/user/api.php"
	PomfEndpoint      = "https://pomf.lain.la/upload.php"
)

// DefaultTimeout bounds a single provider attempt.
const DefaultTimeout = 30 * time.Second

// maxResponseBody caps how much of a host's reply is read.
const maxResponseBody = 64 << 10

// FormProvider posts the file as a multipart form and extracts the URL from
// the response with Parse.
type FormProvider struct {
	ProviderName string
	Endpoint     string
	FileField    string
	Fields       map[string]string
	Parse        func(body []byte) (string, error)
	Client       *http.Client
}

func (p *FormProvider) Name() string { return p.ProviderName }

func (p *FormProvider) Upload(ctx context.Context, f File) (string, error) {
	body, contentType, err := p.encode(f)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return p.Parse(data)
}

func (p *FormProvider) encode(f File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range p.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.FileField, f.Name))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// TextURLWithPrefix accepts a plain-text reply holding a single URL that
// starts with prefix.
func TextURLWithPrefix(prefix string) func([]byte) (string, error) {
	return func(body []byte) (string, error) {
		url := strings.TrimSpace(string(body))
		if url == "" || !strings.HasPrefix(url, prefix) {
			return "", fmt.Errorf("unexpected response %q", truncate(url, 120))
		}
		return url, nil
	}
}

// pomfResponse is the JSON reply of pomf-compatible hosts.
type pomfResponse struct {
	Success bool `json:"success"`
	Files   []struct {
		URL string `json:"url"`
	} `json:"files"`
}

// PomfJSON accepts {"success":true,"files":[{"url":...}]}.
func PomfJSON(body []byte) (string, error) {
	var r pomfResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !r.Success || len(r.Files) == 0 || r.Files[0].URL == "" {
		return "", fmt.Errorf("upload rejected: %q", truncate(string(body), 120))
	}
	return r.Files[0].URL, nil
}

// NewZeroXZero returns a provider for 0x0.st. An empty endpoint uses the
// public host.
func NewZeroXZero(endpoint string, client *http.Client) *FormProvider {
	if endpoint == "" {
		endpoint = ZeroXZeroEndpoint
	}
	return &FormProvider{
		ProviderName: "0x0.st",
		Endpoint:     endpoint,
		FileField:    "file",
		Parse:        TextURLWithPrefix("https://0x0.st/"),
		Client:       client,
	}
}

// NewCatbox returns a provider for catbox.moe.
func NewCatbox(endpoint string, client *http.Client) *FormProvider {
	if endpoint == "" {
		endpoint = CatboxEndpoint
	}
	return &FormProvider{
		ProviderName: "catbox.moe",
		Endpoint:     endpoint,
		FileField:    "fileToUpload",
		Fields:       map[string]string{"reqtype": "fileupload"},
		Parse:        TextURLWithPrefix("https://files.catbox.moe/"),
		Client:       client,
	}
}

// NewPomf returns a provider for pomf.lain.la.
func NewPomf(endpoint string, client *http.Client) *FormProvider {
	if endpoint == "" {
		endpoint = PomfEndpoint
	}
	return &FormProvider{
		ProviderName: "pomf.lain.la",
		Endpoint:     endpoint,
		FileField:    "files[]",
		Parse:        PomfJSON,
		Client:       client,
	}
}

// DefaultProviders returns the three anonymous hosts in fallback order.
func DefaultProviders(client *http.Client) []Provider {
	return []Provider{
		NewZeroXZero("", client),
		NewCatbox("", client),
		NewPomf("", client),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
