package httpserver_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
)

func newRequest(method, path string) (*http.Request, *httptest.ResponseRecorder) {
	return httptest.NewRequest(method, path, nil), httptest.NewRecorder()
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
