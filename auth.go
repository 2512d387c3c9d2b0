package folio

import (
	"crypto/subtle"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var signInErrors = map[string]string{
	"state":     "Your sign-in link expired. Please try again.",
	"failed":    "Sign-in failed. Please try again.",
	"cancelled": "Sign-in was cancelled.",
}

func (a *App) handleAdmin(c echo.Context) error {
	if a.Identity == nil {
		return Render(c, a.Views.AdminDisabled())
	}
	email := SessionEmail(c)
	if email == "" {
		return Render(c, a.Views.AdminLogin(LoginPage{
			Popup: usePopup(c),
			Error: signInErrors[c.QueryParam("error")],
		}))
	}
	if !a.allowed.Allows(email) {
		return RenderStatus(c, http.StatusForbidden, a.Views.AdminDenied(email, CsrfToken(c)))
	}
	return a.renderDashboard(c, http.StatusOK, notices[c.QueryParam("notice")])
}

// handleSignIn starts the authorization-code flow.
func (a *App) handleSignIn(c echo.Context) error {
	if a.Identity == nil {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if !a.signInLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many sign-in attempts. Try again later.")
	}
	state := uuid.NewString()
	if err := setSignInState(c, state, usePopup(c)); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, a.Identity.AuthCodeURL(state, a.redirectURL(c)))
}

func (a *App) handleCallback(c echo.Context) error {
	if a.Identity == nil {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if reason := c.QueryParam("error"); reason != "" {
		c.Logger().Infof("sign-in cancelled: %s", reason)
		return c.Redirect(http.StatusSeeOther, "/admin/?error=cancelled")
	}
	want, popup := signInState(c)
	got := c.QueryParam("state")
	if want == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		a.signInLimiter.Record(c.RealIP())
		return c.Redirect(http.StatusSeeOther, "/admin/?error=state")
	}
	id, err := a.Identity.Exchange(c.Request().Context(), c.QueryParam("code"), a.redirectURL(c))
	if err != nil {
		c.Logger().Warnf("sign-in failed: %v", err)
		a.signInLimiter.Record(c.RealIP())
		return c.Redirect(http.StatusSeeOther, "/admin/?error=failed")
	}
	if err := setSessionEmail(c, id.Email); err != nil {
		return err
	}
	if !a.allowed.Allows(id.Email) {
		c.Logger().Warnf("sign-in by %s, not an admin", id.Email)
	}
	if popup {
		return Render(c, a.Views.SignInComplete())
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleSignOut(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// redirectURL is where the provider sends the browser back to.
func (a *App) redirectURL(c echo.Context) string {
	if a.Config.Google.RedirectURL != "" {
		return a.Config.Google.RedirectURL
	}
	return c.Scheme() + "://" + c.Request().Host + "/admin/callback/"
}

// usePopup selects the popup sign-in flow for every host except a local
// development server, where the full-page redirect flow is used.
func usePopup(c echo.Context) bool {
	host := c.Request().Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	switch host {
	case "localhost", "127.0.0.1":
		return false
	}
	return true
}
