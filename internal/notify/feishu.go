package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roulette/internal/conf"

	"github.com/google/wire"
	jsoniter "github.com/json-iterator/go"
)

var ProviderSet = wire.NewSet(NewFeishu)

const sendTimeout = 10 * time.Second

// Feishu 飞书自定义机器人 webhook，发送卡片消息
type Feishu struct {
	webhookURL string
	secret     string
	prefix     string
	client     *http.Client
	now        func() time.Time
}

// NewFeishu 未开启或未配置 webhook 时返回 Noop
func NewFeishu(c *conf.Notify) Notifier {
	url := strings.TrimSpace(c.GetWebhookUrl())
	if !c.GetEnabled() || url == "" {
		return Noop{}
	}
	return &Feishu{
		webhookURL: url,
		secret:     strings.TrimSpace(c.GetSigningSecret()),
		prefix:     strings.TrimSpace(c.GetPrefix()),
		client:     &http.Client{Timeout: sendTimeout},
		now:        time.Now,
	}
}

type feishuReply struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (f *Feishu) Send(ctx context.Context, msg *Message) error {
	if msg == nil {
		return nil
	}
	body, err := jsoniter.Marshal(f.payload(msg))
	if err != nil {
		return fmt.Errorf("feishu: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feishu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu: status %d", resp.StatusCode)
	}
	var r feishuReply
	_ = jsoniter.NewDecoder(resp.Body).Decode(&r)
	if r.Code != 0 {
		return fmt.Errorf("feishu: code=%d msg=%s", r.Code, r.Msg)
	}
	return nil
}

// payload 交互卡片；配置了 secret 时附带 timestamp/sign
func (f *Feishu) payload(msg *Message) map[string]any {
	title := msg.Title
	if title == "" {
		title = "轮盘通知"
	}
	if f.prefix != "" {
		title = f.prefix + " " + title
	}
	content := msg.Content
	if content == "" {
		content = title
	}
	color := msg.Color
	if color == "" {
		color = ColorBlue
	}

	p := map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"config":   map[string]bool{"wide_screen_mode": true},
			"header":   map[string]any{"title": map[string]string{"tag": "plain_text", "content": title}, "template": color},
			"elements": []map[string]any{{"tag": "div", "text": map[string]string{"tag": "lark_md", "content": content}}},
		},
	}
	if f.secret != "" {
		ts := strconv.FormatInt(f.now().Unix(), 10)
		p["timestamp"] = ts
		p["sign"] = sign(ts, f.secret)
	}
	return p
}

// sign 飞书加签：HMAC-SHA256(key=timestamp+"\n"+secret, message="")
func sign(ts, secret string) string {
	h := hmac.New(sha256.New, []byte(ts+"\n"+secret))
	h.Write(nil)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
