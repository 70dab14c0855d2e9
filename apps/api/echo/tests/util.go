package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/kmr-srbh/paper-desktop/apps/api/echo"
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/tests"
)

var (
	today = core.NewDate(2024, time.March, 4)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// setup returns a server over a fresh store. seeds run before the session starts.
func setup(t *testing.T, seeds ...func(t *testing.T, env *testutil.Env)) (*Server, *testutil.Env) {
	env := testutil.NewEnv(t)
	testutil.FreezeToday(t, today)
	for _, seed := range seeds {
		seed(t, env)
	}

	disp := session.NewDispatcher(env.Services(), env.Logger)
	if _, err := disp.Start(context.Background()); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return NewServer(env.Conf, env.Logger, disp, env.Services()), env
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

// getToken unlocks the class with the test PIN.
func getToken(t *testing.T, app *Server) string {
	req, rec := newRequest(http.MethodPost, "/v1/unlock", marchallObj(t, PINRequest{PIN: testutil.PIN}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("getToken() failed: %v %s", rec.Code, rec.Body.String())
	}

	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return resp.Token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runHTTPTests runs tests in order against the same server.
func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
