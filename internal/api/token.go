package api

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/alexanderramin/coach/internal/httpclient"
)

var jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

// TokenStrategy extracts a token candidate from a response, or "" if it finds none.
type TokenStrategy func(resp *httpclient.Response) string

// LoginStrategies is the order in which a login response is searched.
// Servers have shipped the token in all of these places.
var LoginStrategies = []TokenStrategy{
	AuthorizationHeader,
	BodyField("token"),
	BodyField("accessToken"),
	BodyField("access_token"),
	BodyField("jwt"),
	BodyString,
	JWTScan,
}

// OTPStrategies prefers the nested result.token the OTP endpoint documents,
// then falls back to everything a login response may use.
var OTPStrategies = append([]TokenStrategy{ResultField("token"), ResultString}, LoginStrategies...)

// ResolveToken runs strategies in order; the first non-empty candidate wins.
// A leading "Bearer " is stripped.
func ResolveToken(resp *httpclient.Response, strategies []TokenStrategy) string {
	for _, s := range strategies {
		if tok := strings.TrimSpace(s(resp)); tok != "" {
			return strings.TrimPrefix(tok, "Bearer ")
		}
	}
	return ""
}

func AuthorizationHeader(resp *httpclient.Response) string {
	if resp.Header == nil {
		return ""
	}
	return resp.Header.Get("Authorization")
}

// BodyField reads a top-level string field of an object body.
func BodyField(name string) TokenStrategy {
	return func(resp *httpclient.Response) string {
		return stringField(resp.Body, name)
	}
}

// ResultField reads a string field of the body's "result" object.
func ResultField(name string) TokenStrategy {
	return func(resp *httpclient.Response) string {
		return stringField(rawField(resp.Body, "result"), name)
	}
}

// ResultString accepts a "result" that is itself a string.
func ResultString(resp *httpclient.Response) string {
	return asString(rawField(resp.Body, "result"))
}

// BodyString accepts a body that is a bare JSON string or plain text.
func BodyString(resp *httpclient.Response) string {
	if s := asString(resp.Body); s != "" {
		return s
	}
	text := strings.TrimSpace(string(resp.Body))
	if text == "" || json.Valid(resp.Body) {
		return ""
	}
	return text
}

// JWTScan finds the first JWT-shaped substring anywhere in the body.
func JWTScan(resp *httpclient.Response) string {
	return jwtPattern.FindString(string(resp.Body))
}

func rawField(body []byte, name string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}
	return obj[name]
}

func stringField(body []byte, name string) string {
	return asString(rawField(body, name))
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
