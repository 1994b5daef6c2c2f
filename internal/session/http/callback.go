package http

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
)

const (
	CallbackPath = "/auth/callback"
	DonePath     = "/auth/done"

	sessionIDParam = "session_id"
)

// Authenticator completes an external-auth round trip.
type Authenticator interface {
	HandleAuthCallback(ctx context.Context, sessionID string) (*domain.User, error)
}

// Result is published once per callback attempt.
type Result struct {
	User *domain.User
	Err  error
}

// CallbackHandler receives the browser redirect that ends a login.
type CallbackHandler struct {
	auth    Authenticator
	results chan Result
}

func NewCallbackHandler(auth Authenticator) *CallbackHandler {
	return &CallbackHandler{
		auth:    auth,
		results: make(chan Result, 1),
	}
}

// Results yields callback outcomes to whoever is waiting on a login.
func (h *CallbackHandler) Results() <-chan Result {
	return h.results
}

func (h *CallbackHandler) Register(r gin.IRouter) {
	r.GET(CallbackPath, h.handleCallback)
	r.GET(DonePath, h.handleDone)
}

func (h *CallbackHandler) handleCallback(c *gin.Context) {
	sessionID, ok := SessionIDFromURL(c.Request.URL)
	if !ok {
		// The id may be in the fragment, which browsers never send; this
		// page moves it into the query and reloads.
		c.Header("Cache-Control", "no-store")
		c.Status(http.StatusOK)
		if err := forwardPage.Execute(c.Writer, forwardData{Param: sessionIDParam, Path: CallbackPath}); err != nil {
			_ = c.Error(err)
		}
		return
	}

	user, err := h.auth.HandleAuthCallback(c.Request.Context(), sessionID)
	h.publish(Result{User: user, Err: err})
	if err != nil {
		c.String(http.StatusUnauthorized, "Sign-in failed. Return to the terminal and run `lebfix login` again.\n")
		return
	}

	target := CleanURL(c.Request.URL)
	target.Path = DonePath
	c.Redirect(http.StatusFound, target.String())
}

func (h *CallbackHandler) handleDone(c *gin.Context) {
	c.String(http.StatusOK, "Signed in. You can close this window and return to the terminal.\n")
}

func (h *CallbackHandler) publish(r Result) {
	select {
	case h.results <- r:
	default:
	}
}

// SessionIDFromURL returns the session id carried by u's query or fragment.
// Blank ids count as absent.
func SessionIDFromURL(u *url.URL) (string, bool) {
	if id := strings.TrimSpace(u.Query().Get(sessionIDParam)); id != "" {
		return id, true
	}
	if frag, err := url.ParseQuery(u.Fragment); err == nil {
		if id := strings.TrimSpace(frag.Get(sessionIDParam)); id != "" {
			return id, true
		}
	}
	return "", false
}

// CleanURL returns a copy of u with the session id removed from both the
// query and the fragment. Unrelated parameters are kept.
func CleanURL(u *url.URL) *url.URL {
	out := *u
	out.Host = ""
	out.Scheme = ""
	out.User = nil

	q := out.Query()
	q.Del(sessionIDParam)
	out.RawQuery = q.Encode()

	if out.Fragment != "" {
		if frag, err := url.ParseQuery(out.Fragment); err == nil {
			frag.Del(sessionIDParam)
			out.Fragment = frag.Encode()
			out.RawFragment = ""
		}
	}
	return &out
}

type forwardData struct {
	Param string
	Path  string
}

var forwardPage = template.Must(template.New("forward").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>lebfix sign-in</title></head>
<body>
<p id="msg">Completing sign-in…</p>
<script>
(function () {
  var frag = new URLSearchParams(window.location.hash.slice(1));
  var id = frag.get({{.Param}});
  if (!id) {
    document.getElementById("msg").textContent = "No sign-in session found. Return to the terminal and run lebfix login again.";
    return;
  }
  var q = new URLSearchParams(window.location.search);
  q.set({{.Param}}, id);
  window.location.replace({{.Path}} + "?" + q.toString());
})();
</script>
</body></html>
`))
