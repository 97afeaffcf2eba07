package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"roulette/internal/conf"

	jsoniter "github.com/json-iterator/go"
)

func TestNewFeishuDisabled(t *testing.T) {
	if _, ok := NewFeishu(nil).(Noop); !ok {
		t.Errorf("nil 配置应返回 Noop")
	}
	if _, ok := NewFeishu(&conf.Notify{Enabled: true}).(Noop); !ok {
		t.Errorf("无 webhook 应返回 Noop")
	}
}

func TestFeishuSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = jsoniter.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"code":0,"msg":"ok"}`))
	}))
	defer srv.Close()

	n := NewFeishu(&conf.Notify{Enabled: true, WebhookUrl: srv.URL, SigningSecret: "s", Prefix: "[dev]"})
	if err := n.Send(context.Background(), &Message{Title: "批量模拟结束", Content: "**x**"}); err != nil {
		t.Fatalf("发送失败: %v", err)
	}
	if got["msg_type"] != "interactive" || got["sign"] == nil {
		t.Errorf("payload=%v", got)
	}
	card, _ := got["card"].(map[string]any)
	header, _ := card["header"].(map[string]any)
	title, _ := header["title"].(map[string]any)
	if c, _ := title["content"].(string); !strings.HasPrefix(c, "[dev] ") {
		t.Errorf("标题前缀缺失: %v", title)
	}
}

func TestFeishuSendErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":19021,"msg":"sign match fail"}`))
	}))
	defer srv.Close()

	n := NewFeishu(&conf.Notify{Enabled: true, WebhookUrl: srv.URL})
	if err := n.Send(context.Background(), &Message{Title: "t"}); err == nil {
		t.Errorf("非 0 code 应报错")
	}
}
