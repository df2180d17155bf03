package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "vlogvalidator/apps/api/echo"
	"vlogvalidator/core"
	"vlogvalidator/core/auth"
	"vlogvalidator/core/submission"
	authsvc "vlogvalidator/services/auth"
	feedbacksvc "vlogvalidator/services/feedback"
	logsvc "vlogvalidator/services/logger"
	metadatasvc "vlogvalidator/services/metadata"
	inmemdb "vlogvalidator/storage/inmem"
)

type testApp struct {
	server  echoapi.Server
	conf    *core.Config
	subSvc  *submission.Service
	authSvc *auth.Service
}

// setup wires a full server against the in-memory store. noembedURL, when
// set, overrides the metadata endpoint so tests never leave the process.
func setup(t *testing.T, noembedURL string) *testApp {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Store.WriteTimeout = time.Second
	if noembedURL != "" {
		conf.Noembed.BaseURL = noembedURL
	}

	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))

	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewSubmissionRepository(db)

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	submission.InitValidators(validate, translator)

	subSvc := submission.NewService(repo, validate, conf)
	intake := submission.NewIntake(
		subSvc,
		metadatasvc.NewNoembedService(conf, logger),
		feedbacksvc.NewStaticService(),
	)
	authSvc := auth.NewService(authsvc.NewDummyBackend(conf))

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		SubmissionSvc:  subSvc,
		Intake:         intake,
		AuthSvc:        authSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &testApp{server: server, conf: conf, subSvc: subSvc, authSvc: authSvc}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
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

func getToken(t *testing.T, app *testApp) string {
	t.Helper()
	claims := echoapi.GetSessionClaims(auth.Session{UID: "uid-1", Email: "guru@sekolah.id"}, app.conf)
	token, err := echoapi.GenerateToken(claims, app.conf)
	require.NoError(t, err)
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code)
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

type httpErr struct {
	Error string `json:"error"`
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}
