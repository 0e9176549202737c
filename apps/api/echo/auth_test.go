package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/pogorelof/ai-exam/core/user"
)

func Test_tokenExpiry(t *testing.T) {
	setup(t)
	defer func() { jwt.TimeFunc = time.Now }()

	student := createUser(t, "Hero", "hero", "hero@test.cd", "LolCat123", user.RoleStudent)
	token := getToken(t, student)

	issued := time.Now()

	tests := []struct {
		name     string
		now      time.Time
		wantCode int
	}{
		{name: "fresh token", now: issued, wantCode: http.StatusOK},
		{name: "just before expiry", now: issued.Add(jwtExpirationDelta - time.Minute), wantCode: http.StatusOK},
		{name: "just after expiry", now: issued.Add(jwtExpirationDelta + time.Minute), wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwt.TimeFunc = func() time.Time { return tt.now }

			req, rec := newAuthRequest(http.MethodGet, "/v1/me", token)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
		})
	}
}

func Test_tokenClaims(t *testing.T) {
	setup(t)

	teacher := createUser(t, "Prof", "prof", "prof@test.cd", "LolCat123", user.RoleTeacher)

	claims := GetUserClaims(teacher)
	if claims.Username != teacher.Username {
		t.Errorf("Username = %s; want %s", claims.Username, teacher.Username)
	}
	if claims.Role != user.RoleTeacher {
		t.Errorf("Role = %s; want %s", claims.Role, user.RoleTeacher)
	}
	if !claims.IsTeacher {
		t.Error("IsTeacher = false; want true")
	}

	exp := time.Unix(claims.ExpiresAt, 0)
	iat := time.Unix(claims.IssuedAt, 0)
	if got := exp.Sub(iat); got != jwtExpirationDelta {
		t.Errorf("expiry delta = %v; want %v", got, jwtExpirationDelta)
	}
}
