package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/config"
)

const telegramAPI = "https://api.telegram.org"

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Parse  string `json:"parse_mode"`
}

// Alerter 运维告警（Telegram），未配置 token 时只写日志
type Alerter struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
	log     logrus.FieldLogger
}

func NewAlerter(c config.TelegramCfg, log logrus.FieldLogger) *Alerter {
	return &Alerter{
		baseURL: telegramAPI,
		token:   c.BotToken,
		chatID:  c.ChatID,
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

// WithBaseURL 测试用
func (a *Alerter) WithBaseURL(u string) *Alerter {
	a.baseURL = strings.TrimRight(u, "/")
	return a
}

func (a *Alerter) send(ctx context.Context, content string) error {
	if a.token == "" || a.chatID == "" {
		return fmt.Errorf("telegram not configured")
	}
	body, _ := json.Marshal(telegramMessage{ChatID: a.chatID, Text: content, Parse: "MarkdownV2"})
	url := fmt.Sprintf("%s/bot%s/sendMessage", a.baseURL, a.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// Alert 异步发送，title 加粗，fields 按顺序逐行展示
func (a *Alerter) Alert(title string, fields [][2]string) {
	if a == nil {
		return
	}
	text := formatAlert(title, fields)
	a.log.Warnf("[alert] %s %v", title, fields)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.send(ctx, text); err != nil {
			a.log.Errorf("Telegram 消息发送失败: %v", err)
		}
	}()
}

func formatAlert(title string, fields [][2]string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(title)))
	sb.WriteString(fmt.Sprintf("*时间:* %s\n", escapeMarkdown(time.Now().UTC().Format("2006-01-02 15:04:05"))))
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", escapeMarkdown(f[0]), escapeMarkdown(f[1])))
	}
	return sb.String()
}

// escapeMarkdown 转义 Telegram Markdown V2 特殊字符
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(s)
}
