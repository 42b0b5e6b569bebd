package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/elmrakby/ai-resume-agent/config"
	"github.com/elmrakby/ai-resume-agent/database"
	"github.com/elmrakby/ai-resume-agent/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"gorm.io/gorm/clause"
)

var (
	providerOnce sync.Once
	provider     *oidc.Provider
	providerErr  error
)

func oidcProvider(ctx context.Context) (*oidc.Provider, error) {
	providerOnce.Do(func() {
		provider, providerErr = oidc.NewProvider(ctx, config.OIDC_ISSUER_URL)
	})
	return provider, providerErr
}

func oauthConfig(p *oidc.Provider) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.OIDC_CLIENT_ID,
		ClientSecret: config.OIDC_CLIENT_SECRET,
		RedirectURL:  config.OIDC_REDIRECT_URL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     p.Endpoint(),
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/login
func LoginStart(c *gin.Context) {
	if config.OIDC_CLIENT_ID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Login not configured"})
		return
	}

	p, err := oidcProvider(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider unreachable"})
		return
	}

	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}

	// state lives in an HttpOnly cookie for the round trip
	c.SetCookie(
		"oauth_state",
		state,
		300, // 5 minutes
		"/",
		"",    // domain (set in prod)
		false, // secure (true in prod HTTPS)
		true,  // httpOnly
	)

	c.Redirect(http.StatusFound, oauthConfig(p).AuthCodeURL(state))
}

// GET /auth/login/callback
func LoginCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}

	cookieState, err := c.Cookie("oauth_state")
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	p, err := oidcProvider(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider unreachable"})
		return
	}

	tok, err := oauthConfig(p).Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	verifier := p.Verifier(&oidc.Config{ClientID: config.OIDC_CLIENT_ID})
	idToken, err := verifier.Verify(c.Request.Context(), rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id_token"})
		return
	}

	var claims struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unreadable id_token claims"})
		return
	}
	if claims.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity provider returned no email"})
		return
	}

	user, err := upsertUser(idToken.Subject, claims.Email, claims.GivenName, claims.FamilyName, claims.Picture)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store user"})
		return
	}

	tokenString, err := issueAppJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	redirect := config.OIDC_FRONTEND_REDIRECT
	if redirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": tokenString})
		return
	}
	c.Redirect(http.StatusFound, redirect+"?token="+tokenString)
}

// GET /me
func GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// upsertUser mirrors the provider account locally, keyed by the subject
// claim. Re-logins refresh the profile fields.
func upsertUser(sub, email, firstName, lastName, picture string) (*users.User, error) {
	user := users.User{
		ID:              sub,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		ProfileImageURL: picture,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "first_name", "last_name", "profile_image_url", "updated_at",
		}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &user, nil
}

func issueAppJWT(user *users.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWT_SECRET))
}
