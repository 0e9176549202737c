package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/quiz"
	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
	emailsvc "github.com/pogorelof/ai-exam/services/email"
	logsvc "github.com/pogorelof/ai-exam/services/logger"
	questiongensvc "github.com/pogorelof/ai-exam/services/questiongen"
	dummydb "github.com/pogorelof/ai-exam/storage/database/dummy"
)

var (
	app       Server
	usrRepo   user.Repository
	usrSvc    *user.Service
	schoolSvc *school.Service
	quizSvc   *quiz.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func testConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		AppName:   "AI Exam",
		SecretKey: "s3cr3t",
		Server: core.ServerConfig{
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: 1 * time.Hour,
		},
	}
}

func setup(t *testing.T) Server {
	t.Helper()

	conf := testConfig()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)

	// set up services
	appLogger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	appLogger.Enable(false)
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	usrSvc = user.NewService(usrRepo, emailsvc.NewConsoleService(conf.AppName), conf)
	schoolSvc = school.NewService(dummydb.NewSchoolRepository(db))
	quizSvc = quiz.NewService(dummydb.NewQuizRepository(db), schoolSvc, usrSvc, questiongensvc.NewPlaceholderGenerator())

	// set up server
	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         appLogger,
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			SchoolSvc:      schoolSvc,
			QuizSvc:        quizSvc,
		},
	)
	return app
}

func createUser(t *testing.T, first, uname, email, pwd, role string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		FirstName: first,
		LastName:  "Test",
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func createClass(t *testing.T, teacher user.User, title string) school.Class {
	t.Helper()

	class, err := schoolSvc.CreateClass(context.Background(), teacher, school.NewClass{Title: title})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return class
}

func enrollMember(t *testing.T, teacher, student user.User, class school.Class) {
	t.Helper()

	ctx := context.Background()
	if _, err := schoolSvc.RequestEnrollment(ctx, student, class.ID); err != nil {
		t.Fatalf("RequestEnrollment() failed: %v", err)
	}
	if _, err := schoolSvc.Respond(ctx, teacher, class.ID, school.Respond{StudentID: student.ID, Decision: school.DecisionAccept}); err != nil {
		t.Fatalf("Respond() failed: %v", err)
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
