package directory

import (
	"encoding/json"
	"strings"
)

// identities llega serializado como texto JSON dentro del atributo
// "identities" de la cuenta. El directorio agrega campos que no nos
// interesan (providerType, issuer, primary, dateCreated); el decode es
// tolerante y sólo conserva provider y userId.

// ParseIdentities decodifica el atributo identities de una cuenta.
// Entrada vacía retorna nil sin error; JSON inválido retorna el error de
// decode para que el caller decida (los orchestrators lo tratan como
// "sin identidades").
func ParseIdentities(raw string) ([]Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []Identity
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if id.ProviderName != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// HasProvider reporta si alguna identidad pertenece al provider dado.
// La comparación es case-insensitive, igual que los nombres de provider
// del directorio.
func HasProvider(ids []Identity, provider string) bool {
	for _, id := range ids {
		if strings.EqualFold(id.ProviderName, provider) {
			return true
		}
	}
	return false
}
