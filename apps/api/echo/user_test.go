package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pogorelof/ai-exam/core/user"
)

func Test_userApi_register(t *testing.T) {
	setup(t)

	createUser(t, "Taken", "taken", "taken@test.cd", "lol", user.RoleStudent)

	newUser := func(uname, email, role string) []byte {
		return marchallObj(t, user.NewUser{
			FirstName:       "Awe",
			LastName:        "Mbuyi",
			Username:        uname,
			Email:           email,
			Role:            role,
			Password:        "LolCat123",
			PasswordConfirm: "LolCat123",
		})
	}

	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, user.NewUser{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"first_name":       "this field is required",
				"last_name":        "this field is required",
				"username":         "this field is required",
				"email":            "this field is required",
				"role":             "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "password mismatch", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				FirstName: "Awe", LastName: "Mbuyi", Username: "awe", Email: "awe@test.cd",
				Role: user.RoleStudent, Password: "LolCat123", PasswordConfirm: "nope",
			}),
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid role", body: newUser("awe", "awe@test.cd", "headmaster"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "username taken", body: newUser("taken", "awe@test.cd", user.RoleStudent), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: user.ErrUsernameExists.Error()}),
		},
		{
			name: "email taken", body: newUser("awe", "taken@test.cd", user.RoleStudent), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: user.ErrEmailExists.Error()}),
		},
		{
			name: "student registered", body: newUser("awe", "awe@test.cd", user.RoleStudent), wantCode: http.StatusCreated,
			wantData: marchallObj(t, MessageResponse{Message: "Success!"}),
		},
		{
			name: "teacher registered", body: newUser("prof", "prof@test.cd", user.RoleTeacher), wantCode: http.StatusCreated,
			wantData: marchallObj(t, MessageResponse{Message: "Success!"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	setup(t)

	student := createUser(t, "Hero", "hero", "hero@test.cd", "LolCat123", user.RoleStudent)

	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, LoginRequest{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, LoginRequest{Username: "lol", Password: "lol"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Username: student.Username, Password: "lol"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{name: "login with username", body: marchallObj(t, LoginRequest{Username: student.Username, Password: "LolCat123"}), wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, LoginRequest{Username: student.Email, Password: "LolCat123"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/token"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.AccessToken == "" {
					t.Error("failed! empty token")
				}
				if respData.TokenType != "bearer" {
					t.Errorf("failed! token_type = %s; want bearer", respData.TokenType)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	setup(t)

	student := createUser(t, "Hero", "hero", "hero@test.cd", "LolCat123", user.RoleStudent)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get self", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_aiToken(t *testing.T) {
	setup(t)

	teacher := createUser(t, "Prof", "prof", "prof@test.cd", "LolCat123", user.RoleTeacher)
	teacherToken := getToken(t, teacher)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "no token saved", method: http.MethodGet, token: teacherToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: user.ErrAPITokenNotFound.Error()}),
		},
		{
			name: "save requires token field", method: http.MethodPost, token: teacherToken, body: marchallObj(t, AITokenRequest{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"token": "this field is required"}),
		},
		{
			name: "token saved", method: http.MethodPost, token: teacherToken, body: marchallObj(t, AITokenRequest{Token: "sk-test-123"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "Token has been saved"}),
		},
		{
			name: "token retrieved", method: http.MethodGet, token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, AITokenResponse{Token: "sk-test-123"}),
		},
		{
			name: "token replaced", method: http.MethodPost, token: teacherToken, body: marchallObj(t, AITokenRequest{Token: "sk-test-456"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "Token has been saved"}),
		},
		{
			name: "replacement retrieved", method: http.MethodGet, token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, AITokenResponse{Token: "sk-test-456"}),
		},
	}
	for _, tt := range tests {
		tt.path = "/v1/ai/token"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
