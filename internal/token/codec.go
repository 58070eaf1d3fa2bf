package token

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================================
// TOKEN CODEC - EXTRACCIÓN DE CLAIMS SIN VERIFICAR FIRMA
// ============================================================================
// Decodifica el payload de un token tipo JWT para obtener el identificador
// del usuario. NUNCA verifica la firma: es una conveniencia del cliente,
// no una frontera de confianza. El backend es quien valida el token.

// ExtractUserID decodifica el segmento payload de un token JWT y retorna el
// primer claim presente entre userId, sub e id. Retorna "" si el token no
// tiene exactamente 3 segmentos, el payload no es base64url válido, no es
// un objeto JSON, o ningún claim de identidad está presente. Nunca hace panic.
func ExtractUserID(tok string) string {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return ""
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return ""
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}

	// Primer claim presente gana, aunque su valor no sea usable
	for _, key := range []string{"userId", "sub", "id"} {
		if v, ok := claims[key]; ok {
			return claimToString(v)
		}
	}
	return ""
}

// claimToString convierte un valor de claim a string. Los números JSON
// llegan como float64; los ids numéricos se formatean sin decimales.
func claimToString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
