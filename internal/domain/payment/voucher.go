package payment

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseVoucherDataURL validates a payment voucher submitted as a base64 data
// URI. Only images are accepted and the decoded payload must not exceed
// maxBytes. The original string is returned for storage so the stored value
// is exactly what was validated.
func ParseVoucherDataURL(dataURL string, maxBytes int) (string, error) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return "", fmt.Errorf("no se pudo leer el comprobante: vacío")
	}

	const prefix = "data:"
	if !strings.HasPrefix(dataURL, prefix) {
		return "", fmt.Errorf("no se pudo leer el comprobante: formato inválido")
	}

	comma := strings.Index(dataURL, ",")
	if comma < 0 {
		return "", fmt.Errorf("no se pudo leer el comprobante: formato inválido")
	}

	meta := dataURL[len(prefix):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("no se pudo leer el comprobante: se requiere codificación base64")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("no se pudo leer el comprobante: debe ser una imagen")
	}

	payload := dataURL[comma+1:]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("no se pudo leer el comprobante: %w", err)
	}
	if len(decoded) == 0 {
		return "", fmt.Errorf("no se pudo leer el comprobante: vacío")
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return "", fmt.Errorf("no se pudo leer el comprobante: supera el tamaño máximo de %d bytes", maxBytes)
	}

	return dataURL, nil
}
