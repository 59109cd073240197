package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	sessionToken = "access_token"
	sessionOwner = "repo_owner"
	sessionRepo  = "repo_name"
	sessionState = "oauth_state"

	credentialsKey = "credentials"
)

func sessionString(s sessions.Session, key string) string {
	v, _ := s.Get(key).(string)
	return v
}

// AuthRequired rejects editor requests without a token in the session and
// stores the caller's Credentials in the context.
func (h *Handler) AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	creds := Credentials{
		Token: sessionString(session, sessionToken),
		Owner: sessionString(session, sessionOwner),
		Repo:  sessionString(session, sessionRepo),
	}
	if creds.Token == "" && h.Anonymous != nil {
		creds = *h.Anonymous
	}
	if creds.Token == "" {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login/github")
			c.Abort()
		}
		return
	}
	if creds.Owner == "" || creds.Repo == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No content repository configured"})
		return
	}
	c.Set(credentialsKey, creds)
	c.Next()
}

func (h *Handler) GithubLogin(c *gin.Context) {
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionState, state)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.OAuth.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

func (h *Handler) AuthCallback(c *gin.Context) {
	session := sessions.Default(c)
	expected := sessionString(session, sessionState)
	if expected == "" || c.Query("state") != expected {
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := h.OAuth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	session.Delete(sessionState)
	session.Set(sessionToken, token.AccessToken)
	session.Set(sessionOwner, h.Owner)
	session.Set(sessionRepo, h.Repo)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, "/api/admin/posts")
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
