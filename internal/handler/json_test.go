package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbeit-hub/attendance-manager/backend/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	h, err := NewHandler(&config.Config{}, nil, nil, nil)
	require.NoError(t, err)

	return h
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestSuccessResponse(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.successResponse(rec, req, "処理に成功しました", map[string]int{"id": 1})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "処理に成功しました", resp.Message)
	require.NotNil(t, resp.Data)
}

func TestErrorResponse(t *testing.T) {
	// 業務エラーは HTTP 200 + Success: false で返す
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	h.errorResponse(rec, req, "権限がありません")

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "権限がありません", resp.Message)
	require.Nil(t, resp.Data)
}

func TestInternalServerError(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.internalServerError(rec, req, errors.New("db down"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	// 内部事情は漏らさない
	require.Equal(t, "サーバー内部エラー", resp.Message)
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	var req struct {
		Year int `json:"year" validate:"required,min=2000"`
	}
	err := h.validate.Struct(req)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/", nil)
	h.badRequest(rec, httpReq, err)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Message)
	// 翻訳済みメッセージにはフィールド名が含まれる
	require.Contains(t, resp.Message, "Year")
}

func TestBadRequestPassesThroughPlainErrors(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	h.badRequest(rec, req, errors.New("unexpected EOF"))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "unexpected EOF", resp.Message)
}
