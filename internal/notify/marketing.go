package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/config"
	"stella-settlement-api/internal/constant"
)

// MarketingClient 营销邮件平台（Klaviyo JSON:API）
type MarketingClient struct {
	baseURL  string
	apiKey   string
	revision string
	client   *http.Client
	log      logrus.FieldLogger
}

func NewMarketingClient(c config.MarketingCfg, log logrus.FieldLogger) *MarketingClient {
	return &MarketingClient{
		baseURL:  strings.TrimRight(c.ApiUrl, "/"),
		apiKey:   c.ApiKey,
		revision: c.Revision,
		client:   &http.Client{Timeout: time.Duration(c.TimeoutSec) * time.Second},
		log:      log,
	}
}

type resource struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type profileList struct {
	Data []resource `json:"data"`
}

type profileOne struct {
	Data resource `json:"data"`
}

// FindProfileByEmail 未找到返回空字符串
func (m *MarketingClient) FindProfileByEmail(ctx context.Context, email string) (string, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf(`equals(email,"%s")`, email))
	var out profileList
	if err := m.do(ctx, http.MethodGet, "/profiles/?"+q.Encode(), nil, &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 {
		return "", nil
	}
	return out.Data[0].ID, nil
}

// CreateProfile 新建档案，promo 写进自定义属性供邮件模板使用
func (m *MarketingClient) CreateProfile(ctx context.Context, name, email, promo string) (string, error) {
	attrs := map[string]interface{}{"email": email}
	if name != "" {
		attrs["first_name"] = name
	}
	if promo != "" {
		attrs["properties"] = map[string]string{"promo_code": promo}
	}
	var out profileOne
	if err := m.do(ctx, http.MethodPost, "/profiles/", profileOne{Data: resource{Type: "profile", Attributes: attrs}}, &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", constant.Errorf(constant.CodeUpstreamError, "marketing profile id missing")
	}
	return out.Data.ID, nil
}

func (m *MarketingClient) AddProfileToList(ctx context.Context, listID, profileID string) error {
	if listID == "" {
		return nil
	}
	body := profileList{Data: []resource{{Type: "profile", ID: profileID}}}
	return m.do(ctx, http.MethodPost, "/lists/"+url.PathEscape(listID)+"/relationships/profiles/", body, nil)
}

// SendTransactional 以事件触发对应模板的邮件流
func (m *MarketingClient) SendTransactional(ctx context.Context, template, email string, vars map[string]string) error {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "event",
			"attributes": map[string]interface{}{
				"properties": vars,
				"metric": map[string]interface{}{
					"data": resource{Type: "metric", Attributes: map[string]interface{}{"name": template}},
				},
				"profile": map[string]interface{}{
					"data": resource{Type: "profile", Attributes: map[string]interface{}{"email": email}},
				},
			},
		},
	}
	return m.do(ctx, http.MethodPost, "/events/", body, nil)
}

func (m *MarketingClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal json error: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request error: %w", err)
	}
	req.Header.Set("Authorization", "Klaviyo-API-Key "+m.apiKey)
	req.Header.Set("revision", m.revision)
	req.Header.Set("Accept", "application/vnd.api+json")
	if in != nil {
		req.Header.Set("Content-Type", "application/vnd.api+json")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return constant.Wrap(constant.CodeUpstreamError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return constant.Wrap(constant.CodeUpstreamError, err)
	}
	if resp.StatusCode >= 300 {
		m.log.Warnf("[marketing] %s %s status=%d body=%s", method, path, resp.StatusCode, string(body))
		return constant.Errorf(constant.CodeUpstreamRejected, "marketing api status %d", resp.StatusCode)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return constant.Wrapf(constant.CodeUpstreamError, err, "marketing api bad response")
		}
	}
	return nil
}
