package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Token is the typed session credential carried in the session cookie. The
// refresh token inside is opaque: the service never inspects it, only relays
// it to the directory.
type Token struct {
	RefreshToken string `json:"refreshToken"`
}

// Encode serializa el token como JSON en base64url, apto para valor de
// cookie.
func (t Token) Encode() string {
	raw, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeToken parsea el valor de la cookie de sesión. Entrada ausente o
// malformada se trata como "sin sesión" (ok=false), nunca como error: un
// cliente con una cookie rota simplemente no está autenticado.
func DecodeToken(raw string) (Token, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, false
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Token{}, false
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, false
	}
	if t.RefreshToken == "" {
		return Token{}, false
	}
	return t, true
}
