package afip

import (
	"fmt"
	"strconv"
	"unicode"
)

// pesos del dígito verificador de CUIT/CUIL (módulo 11), aplicados a los 10 primeros dígitos.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// StripCUIT elimina guiones, puntos y espacios: "30-00000000-7" -> "30000000007".
func StripCUIT(cuit string) string {
	return string(extractDigits(cuit))
}

// ParseCUIT devuelve el CUIT como número (DocNro / Cuit_pais_cliente).
func ParseCUIT(cuit string) (int64, error) {
	digits := StripCUIT(cuit)
	if digits == "" {
		return 0, fmt.Errorf("afip: CUIT vacío")
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("afip: CUIT %q inválido: %w", cuit, err)
	}
	return n, nil
}

// ComputeCUITCheckDigit calcula el dígito verificador para los 10 primeros dígitos.
func ComputeCUITCheckDigit(cuit string) (byte, error) {
	digits := extractDigits(cuit)
	if len(digits) < 10 {
		return 0, fmt.Errorf("afip: se requieren 10 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:10] {
		sum += int(d-'0') * cuitWeights[i]
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0', nil
	case 10:
		return '9', nil
	default:
		return byte('0' + r), nil
	}
}

// ValidateCUIT valida longitud (11 dígitos) y dígito verificador.
func ValidateCUIT(cuit string) error {
	digits := extractDigits(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected, err := ComputeCUITCheckDigit(string(digits))
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
