package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/miniapp-telemetry/internal/adapters/transport"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const maxLoggedBodyBytes = 512

type Client struct {
	API       API
	Fetcher   transport.Fetcher
	Contract  Contract
	GameCode  string
	EndStatus string
	// Diagnostics headers are only sent when ForwardDiagnostics is set.
	Diagnostics        Diagnostics
	ForwardDiagnostics bool
	NewIdempotencyKey  func() string
	Logger             zerolog.Logger
}

var _ ports.Backend = Client{}

func (c Client) WithDiagnostics(d Diagnostics) Client {
	c.Diagnostics = d
	return c
}

func (c Client) RegisterPlayer(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResult, error) {
	if !req.Identity.UserID.Valid() {
		return domain.RegisterResult{}, domain.ErrIdentityUnavailable
	}

	body := []byte(`{}`)
	body, err := setFields(body,
		field{"telegram_id", int64(req.Identity.UserID)},
		optionalString("username", req.Identity.Username),
		optionalString("first_name", req.Identity.FirstName),
		optionalString("last_name", req.Identity.LastName),
	)
	if err != nil {
		return domain.RegisterResult{}, fmt.Errorf("encode register body: %w", err)
	}

	resp, err := c.post(ctx, c.API.RegisterPath, body)
	if err != nil {
		return domain.RegisterResult{}, fmt.Errorf("register player: %w", err)
	}

	return domain.RegisterResult{Raw: string(resp.Body)}, nil
}

func (c Client) StartSession(ctx context.Context, req domain.StartRequest) (domain.StartResult, error) {
	body := []byte(`{}`)
	body, err := setFields(body, userIDField(req.UserID))
	if err != nil {
		return domain.StartResult{}, fmt.Errorf("encode start body: %w", err)
	}

	switch c.Contract {
	case ContractIdempotency:
		startParam := field{"start_params", nil}
		if req.StartParam != "" {
			startParam.value = req.StartParam
		}
		body, err = setFields(body,
			field{"idempotency_key", c.idempotencyKey()},
			startParam,
			field{"game_code", c.GameCode},
		)
	default:
		body, err = setFields(body, field{"started_at", domain.FormatTimestamp(req.StartedAt)})
	}
	if err != nil {
		return domain.StartResult{}, fmt.Errorf("encode start body: %w", err)
	}

	resp, err := c.post(ctx, c.API.StartPath, body)
	if err != nil {
		return domain.StartResult{}, fmt.Errorf("start session: %w", err)
	}

	sessionID := gjson.GetBytes(resp.Body, "session_id")
	if !sessionID.Exists() || sessionID.Type == gjson.Null {
		sessionID = gjson.GetBytes(resp.Body, "id")
	}
	if id := strings.TrimSpace(sessionID.String()); id != "" {
		return domain.StartResult{SessionID: id}, nil
	}

	return domain.StartResult{}, fmt.Errorf("start session: %w", domain.ErrMissingSessionID)
}

func (c Client) EndSession(ctx context.Context, req domain.EndRequest) (domain.EndResponse, error) {
	sessionID := field{"session_id", nil}
	if req.SessionID != "" {
		sessionID.value = req.SessionID
	}

	fields := []field{
		sessionID,
		field{"ended_at", domain.FormatTimestamp(req.EndedAt)},
		field{"reason", req.Reason},
		userIDField(req.UserID),
	}
	if c.EndStatus != "" {
		fields = append(fields, field{"status", c.EndStatus})
	}

	body, err := setFields([]byte(`{}`), fields...)
	if err != nil {
		return domain.EndResponse{}, fmt.Errorf("encode end body: %w", err)
	}

	resp, err := c.post(ctx, c.API.EndPath, body)
	if err != nil {
		return domain.EndResponse{}, fmt.Errorf("end session: %w", err)
	}

	return domain.EndResponse{Status: gjson.GetBytes(resp.Body, "status").String()}, nil
}

func (c Client) post(ctx context.Context, path string, body []byte) (transport.Response, error) {
	endpoint, err := buildAPIURL(c.API.BaseURL, path)
	if err != nil {
		return transport.Response{}, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if c.ForwardDiagnostics {
		setIfPresent(header, headerUserAgent, c.Diagnostics.UserAgent)
		setIfPresent(header, headerLanguage, c.Diagnostics.Language)
		setIfPresent(header, headerScreen, c.Diagnostics.Screen)
		setIfPresent(header, headerInitData, c.Diagnostics.InitData)
		setIfPresent(header, headerSignature, c.Diagnostics.Signature)
	}

	resp, err := c.Fetcher.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    endpoint,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return transport.Response{}, err
	}

	c.Logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("body", truncate(string(resp.Body), maxLoggedBodyBytes)).
		Msg("backend response")

	if !resp.OK() {
		return resp, &transport.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(resp.Body))}
	}

	return resp, nil
}

func (c Client) idempotencyKey() string {
	if c.NewIdempotencyKey != nil {
		return c.NewIdempotencyKey()
	}
	return uuid.NewString()
}

type field struct {
	path  string
	value any
}

func optionalString(path, value string) field {
	if value == "" {
		return field{}
	}
	return field{path, value}
}

func userIDField(id domain.UserID) field {
	if !id.Valid() {
		return field{"telegram_id", nil}
	}
	return field{"telegram_id", int64(id)}
}

// setFields writes each field in order; a nil value becomes JSON null and a
// field without a path is skipped.
func setFields(body []byte, fields ...field) ([]byte, error) {
	var err error
	for _, f := range fields {
		if f.path == "" {
			continue
		}
		if f.value == nil {
			body, err = sjson.SetRawBytes(body, f.path, []byte("null"))
		} else {
			body, err = sjson.SetBytes(body, f.path, f.value)
		}
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func setIfPresent(header http.Header, key, value string) {
	if value != "" {
		header.Set(key, value)
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
