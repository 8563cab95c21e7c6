package icinga

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
)

// ClientConfig holds the Icinga2 API connection settings.
type ClientConfig struct {
	BaseURL     string // e.g. "https://icinga.example.com:5665"
	Username    string
	Password    string
	Timeout     time.Duration
	InsecureTLS bool
}

// Client talks to the Icinga2 REST API. It implements
// repository.MonitoringGateway.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	retry  *RetryPolicy
	logger *slog.Logger
}

// NewClient creates a new Icinga2 API client with bounded request timeouts.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		retry:  DefaultRetryPolicy(),
		logger: logger,
	}
}

// listAttrs are the object attributes requested from the API.
var listAttrs = []string{"name", "state", "acknowledgement", "downtime_depth", "last_check_result", "last_state_change"}

// apiObject mirrors the wire format of one object result.
type apiObject struct {
	Attrs struct {
		Name            string  `json:"name"`
		HostName        string  `json:"host_name"`
		State           float64 `json:"state"`
		Acknowledgement float64 `json:"acknowledgement"`
		DowntimeDepth   float64 `json:"downtime_depth"`
		LastStateChange float64 `json:"last_state_change"`
		LastCheckResult struct {
			Output string `json:"output"`
		} `json:"last_check_result"`
	} `json:"attrs"`
}

type apiListResponse struct {
	Results []apiObject `json:"results"`
}

// ListObjects queries hosts or services. filterExprs are AND-combined with
// the wildcard name clause derived from nameFilters.
func (c *Client) ListObjects(ctx context.Context, typ entity.ObjectType, filterExprs, nameFilters []string) ([]*entity.MonitoredObject, error) {
	attrs := listAttrs
	if typ == entity.ObjectTypeService {
		attrs = append(append([]string{}, listAttrs...), "host_name")
	}

	body := map[string]any{"attrs": attrs}
	if expr := buildListFilter(typ, filterExprs, nameFilters); expr != "" {
		body["filter"] = expr
	}

	var objects []*entity.MonitoredObject
	err := c.retry.WithRetry(ctx, func(ctx context.Context) error {
		var resp apiListResponse
		if err := c.do(ctx, http.MethodGet, c.objectsPath(typ), body, &resp); err != nil {
			return err
		}

		objects = objects[:0]
		for _, raw := range resp.Results {
			objects = append(objects, &entity.MonitoredObject{
				Type:            typ,
				Name:            raw.Attrs.Name,
				HostName:        raw.Attrs.HostName,
				State:           int(raw.Attrs.State),
				Acknowledgement: int(raw.Attrs.Acknowledgement),
				DowntimeDepth:   int(raw.Attrs.DowntimeDepth),
				LastCheckOutput: raw.Attrs.LastCheckResult.Output,
				LastStateChange: time.Unix(int64(raw.Attrs.LastStateChange), 0),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// AcknowledgeProblem issues an acknowledge-problem action. Mutations are
// never retried automatically.
func (c *Client) AcknowledgeProblem(ctx context.Context, req repository.AcknowledgeRequest) error {
	body := map[string]any{
		"type":    req.ObjectType.String(),
		"filter":  req.FilterExpr,
		"author":  req.Author,
		"comment": req.Comment,
		"sticky":  req.Sticky,
	}
	if req.Expiry != nil {
		body["expiry"] = req.Expiry.Unix()
	}
	return c.do(ctx, http.MethodPost, "/v1/actions/acknowledge-problem", body, nil)
}

// ScheduleDowntime issues a schedule-downtime action.
func (c *Client) ScheduleDowntime(ctx context.Context, req repository.DowntimeRequest) error {
	body := map[string]any{
		"type":         req.ObjectType.String(),
		"filter":       req.FilterExpr,
		"author":       req.Author,
		"comment":      req.Comment,
		"start_time":   req.StartTime.Unix(),
		"end_time":     req.EndTime.Unix(),
		"duration":     int64(req.Duration.Seconds()),
		"fixed":        true,
		"all_services": req.AllServices,
	}
	return c.do(ctx, http.MethodPost, "/v1/actions/schedule-downtime", body, nil)
}

// do sends one API request. The Icinga2 API only accepts POST, so queries
// use the X-HTTP-Method-Override header.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("icinga: encoding request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("icinga: building request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodPost {
		req.Header.Set("X-HTTP-Method-Override", method)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("icinga: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("icinga api request",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("icinga: decoding response from %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) objectsPath(typ entity.ObjectType) string {
	if typ == entity.ObjectTypeService {
		return "/v1/objects/services"
	}
	return "/v1/objects/hosts"
}

// buildListFilter combines explicit filter expressions with the wildcard
// clause derived from user-supplied name tokens. A single token matches the
// object's own name (and, for services, the host name as well); a token pair
// is interpreted as host plus service name.
func buildListFilter(typ entity.ObjectType, filterExprs, nameFilters []string) string {
	exprs := append([]string{}, filterExprs...)

	switch {
	case len(nameFilters) == 1:
		pattern := "*" + nameFilters[0] + "*"
		if typ == entity.ObjectTypeHost {
			exprs = append(exprs, Match(pattern, "host.name"))
		} else {
			exprs = append(exprs, Or(Match(pattern, "service.name"), Match(pattern, "host.name")))
		}
	case len(nameFilters) >= 2:
		exprs = append(exprs, And(
			Match("*"+nameFilters[0]+"*", "host.name"),
			Match("*"+nameFilters[1]+"*", "service.name"),
		))
	}

	return And(exprs...)
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("icinga: %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("icinga: %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}
