// Copyright (c) 2025, The OpenStack Inventory Exporter Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/time/rate"
)

func TestRequestIDGenerated(t *testing.T) {
	s := testServer(t, nil)

	handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(contextKeyRequestID).(string)
		assert.NotEmpty(t, id)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	require.NoError(t, err)
}

func TestRequestIDPreserved(t *testing.T) {
	s := testServer(t, nil)
	want := uuid.New().String()

	handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Request-Id", want)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, want, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDInvalidReplaced(t *testing.T) {
	s := testServer(t, nil)

	handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler(rec, req)

	got := rec.Header().Get("X-Request-Id")
	assert.NotEqual(t, "not-a-uuid", got)
	_, err := uuid.Parse(got)
	require.NoError(t, err)
}

func TestRateLimitRejects(t *testing.T) {
	s := testServer(t, nil)
	s.rateLimiter = rate.NewLimiter(0, 0)

	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when rate limited")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestPanicRecovery(t *testing.T) {
	s := testServer(t, nil)

	handler := s.panicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
