package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	h, err := NewHandler(&config.Config{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("创建 handler 失败: %v", err)
	}
	return h
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()

	resp := Response{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("响应不是合法的 JSON: %v", err)
	}
	return resp
}

func TestSuccessResponse(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	h.successResponse(w, r, "操作成功", map[string]string{"key": "value"})

	if w.Code != http.StatusOK {
		t.Errorf("期望状态码为 200，实际为 %d", w.Code)
	}

	want := Response{
		Success: true,
		Message: "操作成功",
		Data:    map[string]any{"key": "value"},
	}
	if diff := cmp.Diff(want, decodeResponse(t, w)); diff != "" {
		t.Errorf("响应内容不符合预期 (-want +got):\n%s", diff)
	}
}

func TestErrorResponseKeepsStatusOK(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	h.errorResponse(w, r, "线路不存在")

	// 业务失败通过 success 字段表达，HTTP 状态码保持 200
	if w.Code != http.StatusOK {
		t.Errorf("期望状态码为 200，实际为 %d", w.Code)
	}

	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("success 字段应该为 false")
	}
	if resp.Message != "线路不存在" {
		t.Errorf("期望消息为 %q，实际为 %q", "线路不存在", resp.Message)
	}
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	var req struct {
		Username string `json:"username" validate:"required"`
	}
	err := h.validate.Struct(req)
	if err == nil {
		t.Fatal("校验应该失败")
	}

	h.badRequest(w, r, err)

	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("success 字段应该为 false")
	}
	// zh 翻译器把字段错误翻译成中文提示
	if !strings.Contains(resp.Message, "必填") {
		t.Errorf("期望消息包含中文提示，实际为 %q", resp.Message)
	}
}

func TestInternalServerError(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	h.internalServerError(w, r, http.ErrAbortHandler)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望状态码为 500，实际为 %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("success 字段应该为 false")
	}
}
