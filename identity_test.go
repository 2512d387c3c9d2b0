package folio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

func TestAllowList(t *testing.T) {
	l := NewAllowList([]string{" Ada@Example.com", "", "bob@example.com"})

	assert.True(t, l.Allows("ada@example.com"))
	assert.True(t, l.Allows("ADA@EXAMPLE.COM "))
	assert.True(t, l.Allows("bob@example.com"))
	assert.False(t, l.Allows("eve@example.com"))
	assert.False(t, l.Allows(""))
	assert.Len(t, l, 2)

	assert.False(t, NewAllowList(nil).Allows("ada@example.com"))
}

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]interface{}
		want    Identity
		wantErr error
	}{
		{
			name:   "verified",
			claims: map[string]interface{}{"email": "ada@example.com", "email_verified": true, "name": "Ada"},
			want:   Identity{Email: "ada@example.com", Name: "Ada"},
		},
		{
			name:   "no verified claim",
			claims: map[string]interface{}{"email": "ada@example.com"},
			want:   Identity{Email: "ada@example.com"},
		},
		{
			name:    "unverified",
			claims:  map[string]interface{}{"email": "ada@example.com", "email_verified": false},
			wantErr: ErrUnverifiedEmail,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := identityFromClaims(tt.claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := identityFromClaims(map[string]interface{}{"name": "Nobody"})
	assert.Error(t, err)
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogleIdentity(GoogleConfig{ClientID: "client-id", ClientSecret: "secret"})
	u, err := url.Parse(g.AuthCodeURL("state-1", "https://ada.example/admin/callback/"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://ada.example/admin/callback/", q.Get("redirect_uri"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func tokenServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "https://ada.example/admin/callback/", r.PostForm.Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testGoogle(tokenURL string) *GoogleIdentity {
	g := NewGoogleIdentity(GoogleConfig{ClientID: "client-id", ClientSecret: "secret"})
	g.conf.Endpoint = oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
	return g
}

func TestGoogleExchange(t *testing.T) {
	srv := tokenServer(t, `{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"raw-id-token"}`)
	g := testGoogle(srv.URL)
	g.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "raw-id-token", token)
		assert.Equal(t, "client-id", audience)
		return &idtoken.Payload{Claims: map[string]interface{}{"email": "ada@example.com", "email_verified": true}}, nil
	}

	id, err := g.Exchange(context.Background(), "the-code", "https://ada.example/admin/callback/")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestGoogleExchangeRejectsBadToken(t *testing.T) {
	srv := tokenServer(t, `{"access_token":"at","token_type":"Bearer","id_token":"forged"}`)
	g := testGoogle(srv.URL)
	g.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return nil, errors.New("bad signature")
	}
	_, err := g.Exchange(context.Background(), "the-code", "https://ada.example/admin/callback/")
	assert.Error(t, err)
}

func TestGoogleExchangeRequiresIDToken(t *testing.T) {
	srv := tokenServer(t, `{"access_token":"at","token_type":"Bearer"}`)
	g := testGoogle(srv.URL)
	_, err := g.Exchange(context.Background(), "the-code", "https://ada.example/admin/callback/")
	assert.Error(t, err)
}
