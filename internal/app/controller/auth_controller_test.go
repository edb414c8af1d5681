package controller

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Login_IssuesFreshTokens(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "jane@example.org", "password123", false)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/login", "", gin.H{"email": "jane@example.org", "password": "password123"})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decode(t, w)
		assert.Equal(t, "success", body["status"])
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "bearer", data["type"])

		token := data["token"].(string)
		assert.NotEmpty(t, token)
		assert.False(t, seen[token], "token reused")
		seen[token] = true
	}
}

func TestAuthController_Login_FailuresAreIndistinguishable(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "jane@example.org", "password123", false)

	wrongPassword := s.do(t, http.MethodPost, "/login", "", gin.H{"email": "jane@example.org", "password": "nope"})
	unknownEmail := s.do(t, http.MethodPost, "/login", "", gin.H{"email": "ghost@example.org", "password": "password123"})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid email/password", decode(t, wrongPassword)["message"])
}

func TestAuthController_Login_Validation(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"Empty body", nil},
		{"Missing password", gin.H{"email": "jane@example.org"}},
		{"Malformed JSON", `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode(t, w)["fields"])
		})
	}
}

func signupBody(email string) gin.H {
	return gin.H{
		"firstName":        "John",
		"lastName":         "Smith",
		"popAccueilNumber": "PA-42",
		"isVolunteer":      false,
		"isAdmin":          false,
		"email":            email,
		"password":         "secret-pass",
	}
}

func TestAuthController_Signup_RoleGate(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "member@example.org", "password123", false)
	s.createMember(t, "volunteer@example.org", "password123", true)

	memberToken := s.login(t, "member@example.org", "password123")
	volunteerToken := s.login(t, "volunteer@example.org", "password123")

	w := s.do(t, http.MethodPost, "/signup", memberToken, signupBody("new@example.org"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized", decode(t, w)["message"])
	_, err := s.users.FindByEmail("new@example.org")
	assert.Error(t, err, "member must not create users")

	w = s.do(t, http.MethodPost, "/signup", volunteerToken, signupBody("new@example.org"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "bearer", data["type"])

	// The returned token belongs to the new member.
	w = s.do(t, http.MethodGet, "/whoami", data["token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "new@example.org", me["email"])
	assert.Equal(t, "PA-42", me["popAccueilNumber"])
	assert.Equal(t, false, me["isVolunteer"])
}

func TestAuthController_Signup_DuplicateEmail(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "volunteer@example.org", "password123", true)
	token := s.login(t, "volunteer@example.org", "password123")

	w := s.do(t, http.MethodPost, "/signup", token, signupBody("volunteer@example.org"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "There was a problem creating the user, please try again later.", decode(t, w)["message"])
}

func TestAuthController_Signup_Validation(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "volunteer@example.org", "password123", true)
	token := s.login(t, "volunteer@example.org", "password123")

	body := signupBody("not-an-email")
	delete(body, "isAdmin")

	w := s.do(t, http.MethodPost, "/signup", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "required", fields["isAdmin"])
}

func TestAuthController_PasswordByteLimit(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "volunteer@example.org", "password123", true)
	token := s.login(t, "volunteer@example.org", "password123")
	user := s.createMember(t, "jane@example.org", "old-password", false)

	// 40 runes, 80 bytes.
	accented := strings.Repeat("é", 40)

	body := signupBody("new@example.org")
	body["password"] = accented
	w := s.do(t, http.MethodPost, "/signup", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "maxbytes", fields["password"])

	w = s.do(t, http.MethodPost, "/forgotten-password", "", gin.H{"forgottenPassword": gin.H{"email": "jane@example.org"}})
	require.Equal(t, http.StatusCreated, w.Code)
	resetToken := s.mail.tokens()[0]

	w = s.do(t, http.MethodPost, "/reset-password", "", resetBody(resetToken, accented))
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields = decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "maxbytes", fields["resetPassword.password"])

	// The token was not consumed by the rejected attempt.
	w = s.do(t, http.MethodPost, "/reset-password", "", resetBody(resetToken, strings.Repeat("é", 36)))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored, err := s.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)
}

func TestAuthController_ProtectedRoutesRejectMissingToken(t *testing.T) {
	s := setupTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/whoami"},
		{http.MethodPost, "/signup"},
		{http.MethodGet, "/events"},
		{http.MethodPost, "/events"},
		{http.MethodDelete, "/posts/1"},
		{http.MethodPost, "/basic-services/1/subscribe"},
	}

	for _, r := range routes {
		for _, token := range []string{"", "forged-token"} {
			w := s.do(t, r.method, r.path, token, signupBody("intruder@example.org"))
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
			assert.Equal(t, "not authenticated", decode(t, w)["message"])
		}
	}

	var count int64
	require.NoError(t, s.db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthController_WhoAmI_HidesSecrets(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "jane@example.org", "password123", false)
	token := s.login(t, "jane@example.org", "password123")

	w := s.do(t, http.MethodPost, "/forgotten-password", "", gin.H{"forgottenPassword": gin.H{"email": "jane@example.org"}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/whoami", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "resetPassword")
	assert.NotContains(t, body, s.mail.tokens()[0])
}

func TestAuthController_ForgottenPassword_UnknownEmail(t *testing.T) {
	s := setupTestServer(t)
	user := s.createMember(t, "jane@example.org", "password123", false)
	before, err := s.users.FindByID(user.ID)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/forgotten-password", "", gin.H{"forgottenPassword": gin.H{"email": "ghost@example.org"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	assert.Empty(t, s.mail.tokens())

	after, err := s.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Nil(t, after.ResetPasswordToken)

	var count int64
	require.NoError(t, s.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthController_ForgottenPassword_MissingParams(t *testing.T) {
	s := setupTestServer(t)

	for _, body := range []interface{}{nil, gin.H{}, gin.H{"email": "jane@example.org"}, gin.H{"forgottenPassword": gin.H{}}} {
		w := s.do(t, http.MethodPost, "/forgotten-password", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "missing params", decode(t, w)["status"])
	}
}

func TestAuthController_ResetPassword_SupersededTokenFails(t *testing.T) {
	s := setupTestServer(t)
	s.createMember(t, "jane@example.org", "password123", false)

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/forgotten-password", "", gin.H{"forgottenPassword": gin.H{"email": "jane@example.org"}})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	tokens := s.mail.tokens()
	require.Len(t, tokens, 2)
	require.NotEqual(t, tokens[0], tokens[1])

	w := s.do(t, http.MethodPost, "/reset-password", "", resetBody(tokens[0], "brand-new-pass"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid reset password", decode(t, w)["message"])

	w = s.do(t, http.MethodPost, "/reset-password", "", resetBody(tokens[1], "brand-new-pass"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthController_ResetPassword_Success(t *testing.T) {
	s := setupTestServer(t)
	user := s.createMember(t, "jane@example.org", "old-password", false)

	w := s.do(t, http.MethodPost, "/forgotten-password", "", gin.H{"forgottenPassword": gin.H{"email": "jane@example.org"}})
	require.Equal(t, http.StatusCreated, w.Code)
	resetToken := s.mail.tokens()[0]

	w = s.do(t, http.MethodPost, "/reset-password", "", resetBody(resetToken, "new-password"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	sessionToken := body["data"].(map[string]interface{})["token"].(string)
	assert.NotEmpty(t, sessionToken)

	stored, err := s.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)

	w = s.do(t, http.MethodGet, "/whoami", sessionToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.login(t, "jane@example.org", "new-password")
	w = s.do(t, http.MethodPost, "/login", "", gin.H{"email": "jane@example.org", "password": "old-password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Single use.
	w = s.do(t, http.MethodPost, "/reset-password", "", resetBody(resetToken, "another-password"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_ResetPassword_Rejections(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantMsg    string
	}{
		{"Garbage token", resetBody("garbage", "new-password"), http.StatusBadRequest, "Invalid reset password"},
		{"Missing token", gin.H{"resetPassword": gin.H{"password": "new-password"}}, http.StatusBadRequest, "Invalid request"},
		{"Unwrapped body", gin.H{"resetPasswordToken": "x", "password": "y"}, http.StatusBadRequest, "Invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/reset-password", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["message"])
		})
	}
}

func resetBody(token, password string) gin.H {
	return gin.H{"resetPassword": gin.H{"resetPasswordToken": token, "password": password}}
}
