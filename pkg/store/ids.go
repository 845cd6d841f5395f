package store

import "fmt"

// DefaultPrefix é usado para coleções sem prefixo próprio.
const DefaultPrefix = "GEN"

var prefixes = map[string]string{
	"customers": "CUST",
	"policies":  "POL",
	"claims":    "CLM",
	"agents":    "AGT",
	"payments":  "PAY",
}

// Prefix devolve o prefixo de id da coleção.
func Prefix(collection string) string {
	if p, ok := prefixes[collection]; ok {
		return p
	}
	return DefaultPrefix
}

// GenerateID monta {prefixo}-{tamanho+1 com 3 dígitos}.
//
// O número vem do tamanho atual da coleção, não de um contador: depois de um
// delete no meio da coleção o próximo create pode repetir um id existente.
// Fixtures e testes dependem dessa numeração.
func GenerateID(collection string, currentLen int) string {
	return fmt.Sprintf("%s-%03d", Prefix(collection), currentLen+1)
}
