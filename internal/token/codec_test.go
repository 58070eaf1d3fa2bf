package token

import (
	"encoding/base64"
	"testing"
)

// makeToken arma un token con forma de JWT a partir de un payload JSON.
// La firma es basura: el codec no la mira.
func makeToken(payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	header := enc([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + enc([]byte(payload)) + ".firma-invalida"
}

func TestExtractUserIDClaims(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"userId string", `{"userId":"u-123"}`, "u-123"},
		{"sub fallback", `{"sub":"abc"}`, "abc"},
		{"id fallback", `{"id":"xyz"}`, "xyz"},
		{"userId gana sobre sub", `{"sub":"perdedor","userId":"ganador"}`, "ganador"},
		{"id numérico sin decimales", `{"sub":42}`, "42"},
		{"sin claims de identidad", `{"email":"a@b.cl"}`, ""},
		{"claim presente pero inusable", `{"userId":{"nested":true}}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractUserID(makeToken(tc.payload))
			if got != tc.want {
				t.Errorf("ExtractUserID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractUserIDMalformed(t *testing.T) {
	// Ninguno de estos debe hacer panic, solo retornar ""
	bad := []string{
		"",
		"sin-puntos",
		"dos.partes",
		"cuatro.partes.de.token",
		"a.!!!no-es-base64!!!.c",
		makeToken(`[1,2,3]`),   // payload no es objeto
		makeToken(`no es json`),
	}
	for _, tok := range bad {
		if got := ExtractUserID(tok); got != "" {
			t.Errorf("ExtractUserID(%q) = %q, want \"\"", tok, got)
		}
	}
}
